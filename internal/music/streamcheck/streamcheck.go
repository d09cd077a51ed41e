// Package streamcheck validates and unwraps audio stream URLs. It handles
// direct media links, M3U/PLS style playlists and redirect chains, and
// rejects URLs that are known to point at image or placeholder assets.
package streamcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var mediaContentTypes = []string{
	"audio/",
	"video/",
	"application/ogg",
	"application/octet-stream", // risky but often used for streams
}

var playlistContentTypes = []string{
	"text/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"audio/x-mpegurl",
	"audio/mpegurl",
	"application/x-scpls",
	"application/xspf+xml",
}

// nonMediaMarkers flag URLs that are image/storyboard assets masquerading as
// media, a known failure mode of video extractors.
var nonMediaMarkers = []string{
	"googleusercontent.com/thumbnail",
	"storyboard",
}

var ErrNotAStream = errors.New("url does not point at a media stream")

// Checker probes stream URLs over HTTP.
type Checker struct {
	Client *http.Client
}

func New() *Checker {
	return &Checker{
		Client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// IsNonMediaURL reports whether the URL matches a known non-media pattern.
func IsNonMediaURL(raw string) bool {
	for _, marker := range nonMediaMarkers {
		if strings.Contains(raw, marker) {
			return true
		}
	}
	return false
}

// ResolveStreamURL turns a candidate URL into a directly playable stream
// URL: follows redirects, unwraps playlist formats and verifies the result
// looks like media. Returns ErrNotAStream when nothing playable was found.
func (c *Checker) ResolveStreamURL(ctx context.Context, raw string) (string, error) {
	if IsNonMediaURL(raw) {
		return "", ErrNotAStream
	}

	contentType, finalURL, err := c.fetchContentType(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("fetch content type: %w", err)
	}

	// Playlist first: mpegurl content types also carry the audio/ prefix
	// and must be unwrapped, not returned as-is.
	if isPlaylistType(contentType) || hasPlaylistExtension(finalURL) {
		return c.unwrapPlaylist(ctx, finalURL)
	}

	if isMediaType(contentType) {
		return finalURL, nil
	}

	return "", fmt.Errorf("%w: content-type %q, url %s", ErrNotAStream, contentType, finalURL)
}

// CheckURL reports whether the URL is reachable and serves media or a
// playlist that unwraps to media.
func (c *Checker) CheckURL(ctx context.Context, raw string) bool {
	_, err := c.ResolveStreamURL(ctx, raw)
	return err == nil
}

// fetchContentType issues a HEAD request, falling back to GET when the
// server rejects HEAD, and returns the content type and post-redirect URL.
func (c *Checker) fetchContentType(ctx context.Context, raw string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return "", "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.Client.Do(req)
	if err != nil || resp.StatusCode >= 400 {
		getReq, gerr := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
		if gerr != nil {
			return "", "", gerr
		}
		getReq.Header.Set("User-Agent", "Mozilla/5.0")
		resp, err = c.Client.Do(getReq)
		if err != nil {
			return "", "", fmt.Errorf("GET fallback failed: %w", err)
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	return resp.Header.Get("Content-Type"), resp.Request.URL.String(), nil
}

// unwrapPlaylist downloads playlist content and returns the first entry
// that serves media.
func (c *Checker) unwrapPlaylist(ctx context.Context, playlistURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}

	for _, candidate := range PlaylistEntries(string(body), playlistURL) {
		contentType, finalURL, err := c.fetchContentType(ctx, candidate)
		if err != nil {
			continue
		}
		if isMediaType(contentType) {
			return finalURL, nil
		}
	}

	return "", fmt.Errorf("%w: no playable entry in playlist %s", ErrNotAStream, playlistURL)
}

// PlaylistEntries extracts candidate stream URLs from M3U/PLS style playlist
// content, resolving relative entries against the playlist URL.
func PlaylistEntries(content, baseURL string) []string {
	base, baseErr := url.Parse(baseURL)

	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		// PLS entries look like File1=http://...
		if idx := strings.Index(line, "="); idx != -1 && strings.HasPrefix(strings.ToLower(line), "file") {
			line = line[idx+1:]
		}
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			out = append(out, line)
			continue
		}
		if baseErr == nil {
			if ref, err := url.Parse(line); err == nil {
				abs := base.ResolveReference(ref).String()
				if strings.HasPrefix(abs, "http") {
					out = append(out, abs)
				}
			}
		}
	}
	return out
}

func isMediaType(contentType string) bool {
	contentType = normalizeType(contentType)
	for _, allowed := range mediaContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func isPlaylistType(contentType string) bool {
	contentType = normalizeType(contentType)
	for _, allowed := range playlistContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func hasPlaylistExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}

// normalizeType strips parameters like "audio/mpeg; charset=utf-8".
func normalizeType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
