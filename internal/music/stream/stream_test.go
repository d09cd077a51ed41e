package stream

import "testing"

func TestControlStopIsIdempotent(t *testing.T) {
	c := NewControl()
	c.Stop()
	c.Stop() // second call must not panic on a closed channel

	select {
	case <-c.stop:
	default:
		t.Fatal("stop channel should be closed")
	}
}

func TestControlPauseToggle(t *testing.T) {
	c := NewControl()
	if c.IsPaused() {
		t.Fatal("new control should not start paused")
	}
	c.Pause()
	if !c.IsPaused() {
		t.Fatal("expected paused")
	}
	c.Resume()
	if c.IsPaused() {
		t.Fatal("expected resumed")
	}
}
