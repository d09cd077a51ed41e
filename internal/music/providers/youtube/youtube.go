// Package youtube implements the web-video provider: search through the
// public results endpoint, stream extraction through the kkdai client.
package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"
	"golang.org/x/time/rate"

	"musa/internal/logging"
	"musa/internal/music/providers"
	"musa/internal/music/streamcheck"
)

type Provider struct {
	search  *ytsearch.Client
	extract *ytdl.Client
	limiter *rate.Limiter
}

func New(proxyURL string) *Provider {
	httpClient := newHTTPClient(proxyURL)
	return &Provider{
		search:  ytsearch.NewClient(httpClient),
		extract: &ytdl.Client{HTTPClient: httpClient},
		// Scraping endpoint; keep request bursts polite.
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (p *Provider) Name() string { return providers.ServiceYouTube }

func (p *Provider) Search(ctx context.Context, query string) ([]providers.SongInfo, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := p.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	out := make([]providers.SongInfo, 0, len(res.Results))
	for _, v := range res.Results {
		if v.VideoID == "" {
			continue
		}
		out = append(out, providers.SongInfo{
			Service:   providers.ServiceYouTube,
			ID:        v.VideoID,
			Title:     v.Title,
			Thumbnail: "https://i.ytimg.com/vi/" + v.VideoID + "/hqdefault.jpg",
			PageURL:   "https://www.youtube.com/watch?v=" + v.VideoID,
		})
	}

	logging.Event("youtube_search", "query", query, "results", len(out))
	return out, nil
}

func (p *Provider) Resolve(ctx context.Context, song providers.SongInfo) (*providers.ResolvedSong, error) {
	video, err := p.extract.GetVideoContext(ctx, song.ID)
	if err != nil {
		return nil, fmt.Errorf("youtube extract %s: %w", song.ID, err)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return nil, fmt.Errorf("%w: no audio formats for %s", providers.ErrNoPlayableStream, song.ID)
	}

	streamURL, err := p.extract.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("youtube stream url %s: %w", song.ID, err)
	}
	if streamcheck.IsNonMediaURL(streamURL) {
		return nil, fmt.Errorf("%w: extractor returned a non-media asset for %s",
			providers.ErrNoPlayableStream, song.ID)
	}

	title := video.Title
	if title == "" {
		title = song.Title
	}

	resolved := &providers.ResolvedSong{
		URL:          streamURL,
		Title:        title,
		Service:      providers.ServiceYouTube,
		Duration:     video.Duration,
		Thumbnail:    song.Thumbnail,
		IsLiveStream: video.Duration == 0,
		Info:         song,
	}
	logging.Event("youtube_resolved", "id", song.ID, "itag", format.ItagNo, "live", resolved.IsLiveStream)
	return resolved, nil
}

func (p *Provider) IsAvailable(ctx context.Context) (bool, error) {
	// A cheap search for a known-popular term doubles as a liveness probe.
	if err := p.limiter.Wait(ctx); err != nil {
		return false, nil
	}
	res, err := p.search.Search(ctx, "music")
	if err != nil {
		logging.Warn("youtube_availability_failed", "error", err)
		return false, nil
	}
	return len(res.Results) > 0, nil
}

// CanExpand reports whether the input is a playlist URL.
func (p *Provider) CanExpand(input string) bool {
	return strings.Contains(input, "youtube.com") && strings.Contains(input, "list=")
}

// Expand resolves a playlist URL into its first descriptor plus a fetch
// function yielding the remainder. fetch honours ctx and stops as soon as
// emit refuses an item.
func (p *Provider) Expand(ctx context.Context, input string) (providers.SongInfo, providers.FetchRemaining, error) {
	playlist, err := p.extract.GetPlaylistContext(ctx, input)
	if err != nil {
		return providers.SongInfo{}, nil, fmt.Errorf("youtube playlist %s: %w", input, err)
	}
	if len(playlist.Videos) == 0 {
		return providers.SongInfo{}, nil, fmt.Errorf("youtube playlist %s is empty", input)
	}

	first := entryToSong(playlist.Videos[0])
	rest := playlist.Videos[1:]

	fetch := func(ctx context.Context, emit func(providers.SongInfo) bool) {
		for _, v := range rest {
			if ctx.Err() != nil {
				return
			}
			if !emit(entryToSong(v)) {
				return
			}
		}
	}

	logging.Event("youtube_playlist_expanded", "url", input, "entries", len(playlist.Videos))
	return first, fetch, nil
}

// VideoID extracts the video id from a watch or share link. Playlist
// links without a video component return false.
func VideoID(input string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, true
		}
		if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
			id := strings.Trim(rest, "/")
			return id, id != ""
		}
	}
	return "", false
}

func entryToSong(v *ytdl.PlaylistEntry) providers.SongInfo {
	return providers.SongInfo{
		Service:   providers.ServiceYouTube,
		ID:        v.ID,
		Title:     v.Title,
		Creator:   v.Author,
		Duration:  v.Duration,
		Thumbnail: "https://i.ytimg.com/vi/" + v.ID + "/hqdefault.jpg",
		PageURL:   "https://www.youtube.com/watch?v=" + v.ID,
	}
}
