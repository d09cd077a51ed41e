package jobmgr

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartRejectsDuplicate(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})

	if err := m.Start("job", func(ctx context.Context) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start("job", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("second Start with same name should fail")
	}

	close(release)
	waitUntil(t, func() bool { return !m.IsRunning("job") })
}

func TestRestartCancelsPrevious(t *testing.T) {
	m := NewManager(nil)
	var firstCancelled atomic.Bool
	started := make(chan struct{})

	_ = m.Restart("job", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		firstCancelled.Store(true)
		return ctx.Err()
	})
	<-started

	done := make(chan struct{})
	_ = m.Restart("job", func(ctx context.Context) error {
		close(done)
		return nil
	})

	waitUntil(t, firstCancelled.Load)
	<-done
	waitUntil(t, func() bool { return !m.IsRunning("job") })
}

func TestStopCancelsJob(t *testing.T) {
	m := NewManager(nil)
	var cancelled atomic.Bool
	started := make(chan struct{})

	_ = m.Start("job", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	<-started

	if err := m.Stop("job"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	waitUntil(t, cancelled.Load)

	if err := m.Stop("job"); err == nil {
		t.Fatal("stopping a stopped job should fail")
	}
}

func TestReporterSeesLifecycle(t *testing.T) {
	events := make(chan string, 4)
	m := NewManager(func(s string) { events <- s })

	_ = m.Start("ok", func(ctx context.Context) error { return nil })
	if got := <-events; got != "running:ok" {
		t.Errorf("got %q, want running:ok", got)
	}
	if got := <-events; got != "done:ok" {
		t.Errorf("got %q, want done:ok", got)
	}

	_ = m.Start("bad", func(ctx context.Context) error { return errors.New("nope") })
	<-events // running:bad
	if got := <-events; got != "error:bad:nope" {
		t.Errorf("got %q, want error:bad:nope", got)
	}
}

func TestCancelledJobReportsDone(t *testing.T) {
	events := make(chan string, 4)
	m := NewManager(func(s string) { events <- s })
	started := make(chan struct{})

	_ = m.Start("job", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	<-events // running:job

	_ = m.Stop("job")
	if got := <-events; got != "done:job" {
		t.Errorf("cancelled job reported %q, want done:job", got)
	}
}
