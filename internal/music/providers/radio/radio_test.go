package radio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"musa/internal/music/streamcheck"
)

func newTestProvider(streamURL string) *Provider {
	client := &http.Client{Timeout: 5 * time.Second}
	return &Provider{
		stations: []station{
			{ID: "lofi", Name: "LoFi Hip Hop Radio 24/7", URL: streamURL, Genre: "lofi", Description: "Chill lofi hip hop beats"},
			{ID: "jazz", Name: "Smooth Jazz Radio", URL: streamURL, Genre: "jazz", Description: "Smooth jazz and contemporary instrumentals"},
			{ID: "rock", Name: "Classic Rock Radio", URL: streamURL, Genre: "rock", Description: "Classic rock hits from the 70s-90s"},
			{ID: "chill", Name: "Chillout Radio", URL: streamURL, Genre: "chill", Description: "Relaxing ambient and chillout music"},
		},
		client: client,
		check:  &streamcheck.Checker{Client: client},
	}
}

func audioServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchMatchesGenre(t *testing.T) {
	srv := audioServer(t)
	p := newTestProvider(srv.URL)

	results, err := p.Search(context.Background(), "jazz")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ID != "jazz" {
		t.Errorf("got station %q, want jazz", results[0].ID)
	}
	if !results[0].IsLiveStream {
		t.Error("radio result should be marked as a live stream")
	}
	if results[0].Duration != 0 {
		t.Errorf("live stream duration = %d, want 0", results[0].Duration)
	}
}

func TestSearchMatchesDescriptionWord(t *testing.T) {
	srv := audioServer(t)
	p := newTestProvider(srv.URL)

	results, err := p.Search(context.Background(), "ambient")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "chill" {
		t.Fatalf("got %v, want the chill station", results)
	}
}

func TestSearchFallsBackToPopularStations(t *testing.T) {
	srv := audioServer(t)
	p := newTestProvider(srv.URL)

	results, err := p.Search(context.Background(), "polka")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d fallback results, want 3", len(results))
	}
	for _, r := range results {
		if !strings.HasSuffix(r.Title, "(Suggested)") {
			t.Errorf("fallback title %q should be marked as suggested", r.Title)
		}
	}
	if results[0].ID != "lofi" || results[1].ID != "jazz" || results[2].ID != "chill" {
		t.Errorf("fallback order = %s, %s, %s", results[0].ID, results[1].ID, results[2].ID)
	}
}

func TestSearchSkipsUnreachableStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	p := newTestProvider(srv.URL)

	results, err := p.Search(context.Background(), "rock")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results from a dead station, want 0", len(results))
	}
}

func TestResolvePrefixesLiveTitle(t *testing.T) {
	srv := audioServer(t)
	p := newTestProvider(srv.URL)

	results, err := p.Search(context.Background(), "lofi")
	if err != nil || len(results) == 0 {
		t.Fatalf("Search: %v (%d results)", err, len(results))
	}

	resolved, err := p.Resolve(context.Background(), results[0])
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasPrefix(resolved.Title, "🔴 LIVE: ") {
		t.Errorf("title %q missing live prefix", resolved.Title)
	}
	if resolved.URL != srv.URL {
		t.Errorf("resolved URL = %q, want %q", resolved.URL, srv.URL)
	}
	if !resolved.IsLiveStream {
		t.Error("resolved radio song should be a live stream")
	}
}

func TestResolveUnwrapsPlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/station.m3u", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/x-mpegurl")
		w.Write([]byte("#EXTM3U\n" + srv.URL + "/stream\n"))
	})

	p := newTestProvider(srv.URL + "/station.m3u")
	results, err := p.Search(context.Background(), "jazz")
	if err != nil || len(results) == 0 {
		t.Fatalf("Search: %v (%d results)", err, len(results))
	}

	resolved, err := p.Resolve(context.Background(), results[0])
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.URL != srv.URL+"/stream" {
		t.Errorf("resolved URL = %q, want unwrapped %q", resolved.URL, srv.URL+"/stream")
	}
}

func TestResolveMissingStreamURL(t *testing.T) {
	p := New()
	song := p.songInfo(station{ID: "ghost", Name: "Ghost FM"}, "Ghost FM")
	song.MediaURL = ""
	if _, err := p.Resolve(context.Background(), song); err == nil {
		t.Fatal("expected error for station without a stream url")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := audioServer(t)
	p := newTestProvider(srv.URL)

	ok, err := p.IsAvailable(context.Background())
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if !ok {
		t.Error("service with reachable stations should be available")
	}

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()
	p = newTestProvider(dead.URL)

	ok, err = p.IsAvailable(context.Background())
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if ok {
		t.Error("service with no reachable stations should be unavailable")
	}
}
