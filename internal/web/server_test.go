package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"musa/internal/music/player"
	"musa/internal/music/providers"
	"musa/internal/music/source_resolver"
)

type stubProvider struct{ name string }

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Search(ctx context.Context, q string) ([]providers.SongInfo, error) {
	return nil, nil
}
func (s *stubProvider) Resolve(ctx context.Context, song providers.SongInfo) (*providers.ResolvedSong, error) {
	return &providers.ResolvedSong{URL: "https://cdn/x", Title: song.Title, Service: s.name, Info: song}, nil
}
func (s *stubProvider) IsAvailable(ctx context.Context) (bool, error) { return true, nil }

type nullTransport struct {
	connected bool
	channel   string
}

func (n *nullTransport) Connect(ctx context.Context, channelID string) error {
	n.connected = true
	n.channel = channelID
	return nil
}
func (n *nullTransport) Play(song *providers.ResolvedSong, onComplete func()) error { return nil }
func (n *nullTransport) Pause() error                                               { return nil }
func (n *nullTransport) Resume() error                                              { return nil }
func (n *nullTransport) Stop() error                                                { return nil }
func (n *nullTransport) Disconnect() error                                          { n.connected = false; return nil }
func (n *nullTransport) IsConnected() bool                                          { return n.connected }
func (n *nullTransport) ChannelID() string                                          { return n.channel }

func newTestServer(t *testing.T) (*Server, *player.Manager) {
	t.Helper()
	reg := providers.NewRegistry()
	reg.Register(&stubProvider{name: "youtube"}, true, 1)
	resolver := source_resolver.New(reg, 3, time.Second)

	players := player.NewManager(resolver, func(guildID string) player.Transport {
		return &nullTransport{}
	}, player.Options{})
	t.Cleanup(players.Shutdown)

	return NewServer(resolver, players), players
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	w := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if body["app"] == "" {
		t.Error("health should report the app name")
	}
}

func TestStatusEndpointReportsServices(t *testing.T) {
	s, _ := newTestServer(t)
	w := get(t, s, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Services map[string]source_resolver.ServiceStatus `json:"services"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	st, ok := body.Services["youtube"]
	if !ok {
		t.Fatal("missing youtube service in status")
	}
	if st.Status != source_resolver.StatusOnline {
		t.Errorf("youtube status = %q, want online", st.Status)
	}
}

func TestQueueEndpoint(t *testing.T) {
	s, players := newTestServer(t)

	w := get(t, s, "/queue/unknown-guild")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown guild status = %d, want 404", w.Code)
	}

	p := players.Get("g1")
	err := p.Play(context.Background(), "vc",
		providers.SongInfo{Service: "youtube", ID: "a", Title: "first"},
		providers.SongInfo{Service: "youtube", ID: "b", Title: "second"})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && p.State() != player.StatePlaying {
		time.Sleep(2 * time.Millisecond)
	}

	w = get(t, s, "/queue/g1")
	if w.Code != http.StatusOK {
		t.Fatalf("queue status = %d", w.Code)
	}
	var body struct {
		State      string `json:"state"`
		Queue      []struct{ Title string } `json:"queue"`
		NowPlaying *struct{ Title string }  `json:"now_playing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if body.State != string(player.StatePlaying) {
		t.Errorf("state = %q, want playing", body.State)
	}
	if body.NowPlaying == nil || body.NowPlaying.Title != "first" {
		t.Errorf("now_playing = %+v, want first", body.NowPlaying)
	}
	if len(body.Queue) != 1 || body.Queue[0].Title != "second" {
		t.Errorf("queue = %+v, want [second]", body.Queue)
	}
}
