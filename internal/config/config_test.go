package config

import "testing"

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token-123")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "test-token-123" {
		t.Errorf("expected token %q, got %q", "test-token-123", cfg.DiscordToken)
	}
	if !cfg.EnableArchive || !cfg.EnableRadio {
		t.Error("expected archive and radio enabled by default")
	}
	if cfg.YouTubePriority != 1 || cfg.ArchivePriority != 2 || cfg.RadioPriority != 3 {
		t.Errorf("unexpected default priorities: %d %d %d",
			cfg.YouTubePriority, cfg.ArchivePriority, cfg.RadioPriority)
	}
	if cfg.MaxResultsPerSource != 3 {
		t.Errorf("expected MaxResultsPerSource 3, got %d", cfg.MaxResultsPerSource)
	}
	if cfg.IdleDisconnectSeconds != 30 {
		t.Errorf("expected IdleDisconnectSeconds 30, got %d", cfg.IdleDisconnectSeconds)
	}
}

func TestNew_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := New(); err == nil {
		t.Error("expected error for missing token, got nil")
	}
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("ENABLE_YOUTUBE", "false")
	t.Setenv("RADIO_PRIORITY", "1")
	t.Setenv("SEARCH_TIMEOUT_SECONDS", "5")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EnableYouTube {
		t.Error("expected youtube disabled")
	}
	if cfg.RadioPriority != 1 {
		t.Errorf("expected radio priority 1, got %d", cfg.RadioPriority)
	}
	if cfg.SearchTimeoutSeconds != 5 {
		t.Errorf("expected search timeout 5, got %d", cfg.SearchTimeoutSeconds)
	}
}
