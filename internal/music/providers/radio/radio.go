// Package radio serves a curated catalog of internet radio stations.
// Stations are continuous live streams, so results carry no duration
// and resolution goes through the shared stream checker to unwrap
// playlist URLs into direct media URLs.
package radio

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"musa/internal/music/providers"
	"musa/internal/music/streamcheck"
)

type Provider struct {
	stations []station
	client   *http.Client
	check    *streamcheck.Checker
}

func New() *Provider {
	client := &http.Client{Timeout: 10 * time.Second}
	return &Provider{
		stations: defaultStations,
		client:   client,
		check:    &streamcheck.Checker{Client: client},
	}
}

func (p *Provider) Name() string {
	return providers.ServiceRadio
}

// Search matches the query against station names, genres and
// descriptions. When nothing matches, a few popular stations are
// suggested instead so the caller never has to special-case radio.
func (p *Provider) Search(ctx context.Context, query string) ([]providers.SongInfo, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	var results []providers.SongInfo
	for _, st := range p.stations {
		if !stationMatches(q, st) {
			continue
		}
		if !p.stationReachable(ctx, st.URL) {
			continue
		}
		results = append(results, p.songInfo(st, st.Name))
	}

	if len(results) == 0 && q != "" {
		results = p.popularFallback(ctx)
	}
	return results, nil
}

func stationMatches(q string, st station) bool {
	if q == "" {
		return false
	}
	name := strings.ToLower(st.Name)
	genre := strings.ToLower(st.Genre)
	desc := strings.ToLower(st.Description)
	if strings.Contains(name, q) || strings.Contains(genre, q) || strings.Contains(desc, q) {
		return true
	}
	for _, word := range strings.Fields(q) {
		if strings.Contains(genre, word) {
			return true
		}
	}
	return false
}

func (p *Provider) popularFallback(ctx context.Context) []providers.SongInfo {
	var results []providers.SongInfo
	for _, id := range popularStations {
		st, ok := p.stationByID(id)
		if !ok {
			continue
		}
		if !p.stationReachable(ctx, st.URL) {
			continue
		}
		results = append(results, p.songInfo(st, st.Name+" (Suggested)"))
	}
	return results
}

func (p *Provider) stationByID(id string) (station, bool) {
	for _, st := range p.stations {
		if st.ID == id {
			return st, true
		}
	}
	return station{}, false
}

func (p *Provider) songInfo(st station, title string) providers.SongInfo {
	return providers.SongInfo{
		Service:      providers.ServiceRadio,
		ID:           st.ID,
		Title:        title,
		Creator:      st.Genre,
		Thumbnail:    fmt.Sprintf("https://via.placeholder.com/320x180/1e1e1e/ffffff?text=%s+Radio", capitalize(st.Genre)),
		MediaURL:     st.URL,
		IsLiveStream: true,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// stationReachable probes the stream URL with a short HEAD request.
// Streaming servers answer HEAD inconsistently, so several status
// codes count as alive.
func (p *Provider) stationReachable(ctx context.Context, url string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound, http.StatusPartialContent:
		return true
	}
	return false
}

func (p *Provider) Resolve(ctx context.Context, song providers.SongInfo) (*providers.ResolvedSong, error) {
	if song.MediaURL == "" {
		return nil, fmt.Errorf("radio: station %q has no stream url", song.ID)
	}

	finalURL, err := p.check.ResolveStreamURL(ctx, song.MediaURL)
	if err != nil {
		return nil, fmt.Errorf("radio: resolve %q: %w", song.ID, err)
	}

	return &providers.ResolvedSong{
		URL:          finalURL,
		Title:        "🔴 LIVE: " + song.Title,
		Service:      providers.ServiceRadio,
		Thumbnail:    song.Thumbnail,
		IsLiveStream: true,
		Info:         song,
	}, nil
}

// IsAvailable resolves a couple of key stations and reports the
// service alive when at least one of them works.
func (p *Provider) IsAvailable(ctx context.Context) (bool, error) {
	for _, id := range []string{"lofi", "jazz"} {
		st, ok := p.stationByID(id)
		if !ok {
			continue
		}
		if _, err := p.check.ResolveStreamURL(ctx, st.URL); err == nil {
			return true, nil
		}
	}
	return false, nil
}
