package streamcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsNonMediaURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/audio.mp3", false},
		{"https://i9.googleusercontent.com/thumbnail?id=abc", true},
		{"https://example.com/storyboard_L2.jpg", true},
		{"https://streams.example.de/radio17.mp3", false},
	}
	for _, tc := range cases {
		if got := IsNonMediaURL(tc.url); got != tc.want {
			t.Errorf("IsNonMediaURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestResolveStreamURL_DirectAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	got, err := New().ResolveStreamURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != srv.URL {
		t.Errorf("expected %q, got %q", srv.URL, got)
	}
}

func TestResolveStreamURL_UnwrapsPlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/aac")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/list.m3u", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/x-mpegurl")
		_, _ = w.Write([]byte("#EXTM3U\n" + srv.URL + "/stream\n"))
	})

	got, err := New().ResolveStreamURL(context.Background(), srv.URL+"/list.m3u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != srv.URL+"/stream" {
		t.Errorf("expected unwrapped stream URL, got %q", got)
	}
}

func TestResolveStreamURL_UnwrapsPlaylistWithoutExtension(t *testing.T) {
	// mpegurl content types start with "audio/" and must still be
	// treated as playlists, even when the URL carries no hint.
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/listen", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpegurl")
		_, _ = w.Write([]byte(srv.URL + "/stream\n"))
	})

	got, err := New().ResolveStreamURL(context.Background(), srv.URL+"/listen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != srv.URL+"/stream" {
		t.Errorf("expected unwrapped stream URL, got %q", got)
	}
}

func TestResolveStreamURL_RejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>not a stream</body></html>"))
	}))
	defer srv.Close()

	if _, err := New().ResolveStreamURL(context.Background(), srv.URL); err == nil {
		t.Error("expected error for HTML response, got nil")
	}
}

func TestResolveStreamURL_RejectsNonMediaPattern(t *testing.T) {
	if _, err := New().ResolveStreamURL(context.Background(),
		"https://i9.googleusercontent.com/thumbnail?id=abc"); err == nil {
		t.Error("expected error for thumbnail URL, got nil")
	}
}

func TestPlaylistEntries(t *testing.T) {
	content := "#EXTM3U\n" +
		"#EXTINF:-1,Some Station\n" +
		"https://a.example.com/live\n" +
		"\n" +
		"[playlist]\n" +
		"File1=https://b.example.com/stream.aac\n" +
		"relative/path.mp3\n"

	got := PlaylistEntries(content, "https://host.example.com/radio/list.m3u")

	want := []string{
		"https://a.example.com/live",
		"https://b.example.com/stream.aac",
		"https://host.example.com/radio/relative/path.mp3",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
