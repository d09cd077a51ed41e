// Package source_resolver coordinates the configured audio providers.
// Queries fall through providers in priority order, broad searches fan
// out to every enabled provider at once, and queued songs resolve
// through the provider that produced them.
package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"musa/internal/logging"
	"musa/internal/music/providers"
	"musa/pkg/util"
)

// ErrServiceNotFound is returned by Resolve when the song's owning
// provider is unknown or currently disabled.
var ErrServiceNotFound = errors.New("service not found")

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusError   = "error"
)

// ServiceStatus describes one provider's registry record plus a live
// availability probe.
type ServiceStatus struct {
	Enabled   bool   `json:"enabled"`
	Priority  int    `json:"priority"`
	Available bool   `json:"available"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type SourceResolver struct {
	registry       *providers.Registry
	maxPerProvider int
	searchTimeout  time.Duration
}

func New(registry *providers.Registry, maxPerProvider int, searchTimeout time.Duration) *SourceResolver {
	if maxPerProvider <= 0 {
		maxPerProvider = 3
	}
	if searchTimeout <= 0 {
		searchTimeout = 10 * time.Second
	}
	return &SourceResolver{
		registry:       registry,
		maxPerProvider: maxPerProvider,
		searchTimeout:  searchTimeout,
	}
}

func (r *SourceResolver) Registry() *providers.Registry {
	return r.registry
}

// SearchWithFallback tries enabled providers in priority order and
// returns the first non-empty result set. Unavailable or failing
// providers are skipped, never surfaced to the caller; an exhausted
// chain yields an empty slice.
func (r *SourceResolver) SearchWithFallback(ctx context.Context, query string) []providers.SongInfo {
	enabled := r.registry.Enabled()
	logging.Event("search_with_fallback_start", "query", query, "services_count", len(enabled))

	for _, p := range enabled {
		logging.Event("trying_service", "service", p.Name())

		available, err := r.checkAvailable(ctx, p)
		if err != nil || !available {
			logging.Event("service_unavailable", "service", p.Name())
			continue
		}

		results, err := r.searchOne(ctx, p, query)
		if err != nil {
			logging.Warn("service search failed", "service", p.Name(), "query", query, "error", err)
			continue
		}
		if len(results) > 0 {
			logging.Event("search_with_fallback_success",
				"query", query, "service_used", p.Name(), "results_count", len(results))
			return results
		}
		logging.Event("service_no_results", "service", p.Name(), "query", query)
	}

	logging.Event("search_with_fallback_no_results", "query", query)
	return nil
}

// SearchAll queries every enabled provider concurrently and groups the
// results by provider name, each list truncated to the per-provider
// cap. A provider that fails or times out contributes an empty list,
// so the map always has one key per enabled provider.
func (r *SourceResolver) SearchAll(ctx context.Context, query string) map[string][]providers.SongInfo {
	enabled := r.registry.Enabled()
	logging.Event("search_all_sources_start", "query", query, "enabled_services", len(enabled))

	var mu sync.Mutex
	results := make(map[string][]providers.SongInfo, len(enabled))

	util.ForEach(ctx, enabled, len(enabled), func(ctx context.Context, p providers.Provider) {
		songs, err := r.searchOne(ctx, p, query)
		if err != nil {
			logging.Warn("service search failed", "service", p.Name(), "query", query, "error", err)
			songs = nil
		}
		if len(songs) > r.maxPerProvider {
			songs = songs[:r.maxPerProvider]
		}
		mu.Lock()
		results[p.Name()] = songs
		mu.Unlock()
	})

	total := 0
	for _, songs := range results {
		total += len(songs)
	}
	logging.Event("search_all_sources_completed", "query", query, "total_results", total)
	return results
}

// Resolve turns a queued song descriptor into a playable stream using
// the provider that produced it. Descriptors from a provider that has
// been disabled since they were queued fail with ErrServiceNotFound.
func (r *SourceResolver) Resolve(ctx context.Context, song providers.SongInfo) (*providers.ResolvedSong, error) {
	if song.Service == "" {
		return nil, fmt.Errorf("song %q: %w", song.Title, ErrServiceNotFound)
	}

	p, ok := r.registry.GetEnabled(song.Service)
	if !ok {
		logging.Event("resolve_song_service_not_found", "service", song.Service, "title", song.Title)
		return nil, fmt.Errorf("service %q: %w", song.Service, ErrServiceNotFound)
	}

	resolved, err := p.Resolve(ctx, song)
	if err != nil {
		logging.Event("resolve_song_error", "service", song.Service, "title", song.Title, "error", err.Error())
		return nil, err
	}
	logging.Event("resolve_song_success", "service", song.Service, "title", resolved.Title)
	return resolved, nil
}

// Status probes every registered provider. Disabled providers are
// reported offline without a network probe; an availability check
// that itself fails marks the provider as errored.
func (r *SourceResolver) Status(ctx context.Context) map[string]ServiceStatus {
	snapshot := r.registry.Snapshot()
	status := make(map[string]ServiceStatus, len(snapshot))

	for _, reg := range snapshot {
		st := ServiceStatus{
			Enabled:  reg.Enabled,
			Priority: reg.Priority,
			Status:   StatusOffline,
		}
		if reg.Enabled {
			p, _ := r.registry.Get(reg.Name)
			available, err := r.checkAvailable(ctx, p)
			switch {
			case err != nil:
				st.Status = StatusError
				st.Error = err.Error()
			case available:
				st.Available = true
				st.Status = StatusOnline
			}
		}
		status[reg.Name] = st
	}

	logging.Event("service_status_check_completed", "total_services", len(status))
	return status
}

func (r *SourceResolver) searchOne(ctx context.Context, p providers.Provider, query string) ([]providers.SongInfo, error) {
	searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	return p.Search(searchCtx, query)
}

func (r *SourceResolver) checkAvailable(ctx context.Context, p providers.Provider) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	return p.IsAvailable(probeCtx)
}
