package providers

import (
	"context"
	"testing"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(context.Context, string) ([]SongInfo, error) {
	return nil, nil
}

func (s *stubProvider) Resolve(context.Context, SongInfo) (*ResolvedSong, error) {
	return nil, ErrNoPlayableStream
}

func (s *stubProvider) IsAvailable(context.Context) (bool, error) {
	return true, nil
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(&stubProvider{name: "alpha"}, true, 2)
	r.Register(&stubProvider{name: "beta"}, true, 1)
	r.Register(&stubProvider{name: "gamma"}, false, 3)
	return r
}

func TestRegistry_EnabledPriorityOrder(t *testing.T) {
	r := newTestRegistry()

	enabled := r.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled providers, got %d", len(enabled))
	}
	if enabled[0].Name() != "beta" || enabled[1].Name() != "alpha" {
		t.Errorf("unexpected order: %s, %s", enabled[0].Name(), enabled[1].Name())
	}
}

func TestRegistry_SetPriorityResorts(t *testing.T) {
	r := newTestRegistry()

	if !r.SetPriority("alpha", 0) {
		t.Fatal("SetPriority returned false for known provider")
	}

	enabled := r.Enabled()
	if enabled[0].Name() != "alpha" {
		t.Errorf("expected alpha first after priority change, got %s", enabled[0].Name())
	}

	if r.SetPriority("nope", 5) {
		t.Error("SetPriority returned true for unknown provider")
	}
}

func TestRegistry_DisableIdempotent(t *testing.T) {
	r := newTestRegistry()

	if !r.Disable("alpha") {
		t.Error("first Disable returned false")
	}
	if !r.Disable("alpha") {
		t.Error("second Disable returned false; must be idempotent")
	}

	if _, ok := r.GetEnabled("alpha"); ok {
		t.Error("alpha still visible via GetEnabled after disable")
	}
	if _, ok := r.Get("alpha"); !ok {
		t.Error("alpha should still exist via Get after disable")
	}

	// Exactly one record for alpha, still disabled.
	count := 0
	for _, reg := range r.Snapshot() {
		if reg.Name == "alpha" {
			count++
			if reg.Enabled {
				t.Error("alpha still enabled in snapshot")
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one alpha record, got %d", count)
	}
}

func TestRegistry_EnableUnknown(t *testing.T) {
	r := newTestRegistry()
	if r.Enable("nope") {
		t.Error("Enable returned true for unknown provider")
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := newTestRegistry()
	r.Register(&stubProvider{name: "alpha"}, false, 9)

	if len(r.Snapshot()) != 3 {
		t.Fatalf("expected 3 records, got %d", len(r.Snapshot()))
	}
	if _, ok := r.GetEnabled("alpha"); ok {
		t.Error("re-registered alpha should be disabled")
	}
}
