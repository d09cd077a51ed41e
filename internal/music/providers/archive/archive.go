// Package archive implements the public archive provider on top of the
// archive.org advanced search and metadata APIs.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"musa/internal/logging"
	"musa/internal/music/providers"
	"musa/pkg/util"
)

const (
	searchRows    = 20
	detailWorkers = 4
)

type Provider struct {
	BaseURL string
	Client  *http.Client
}

func New() *Provider {
	return &Provider{
		BaseURL: "https://archive.org",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Provider) Name() string { return providers.ServiceArchive }

type searchResponse struct {
	Response struct {
		Docs []struct {
			Identifier string `json:"identifier"`
		} `json:"docs"`
	} `json:"response"`
}

type metadataResponse struct {
	Files []struct {
		Name   string `json:"name"`
		Format string `json:"format"`
		Size   string `json:"size"`
		Length string `json:"length"`
	} `json:"files"`
	Metadata struct {
		Title       string `json:"title"`
		Creator     string `json:"creator"`
		Description string `json:"description"`
	} `json:"metadata"`
}

func (p *Provider) Search(ctx context.Context, query string) ([]providers.SongInfo, error) {
	q := fmt.Sprintf("title:(%s) AND mediatype:audio AND format:MP3 "+
		"AND NOT (ringtone OR sample OR preview OR loop OR instrumental)", query)

	params := url.Values{}
	params.Set("q", q)
	params.Set("fl", "identifier,title,creator,downloads")
	params.Set("rows", strconv.Itoa(searchRows))
	params.Set("page", "1")
	params.Set("output", "json")
	params.Set("sort[]", "downloads desc")

	var sr searchResponse
	if err := p.getJSON(ctx, p.BaseURL+"/advancedsearch.php?"+params.Encode(), &sr); err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}

	type ref struct {
		idx int
		id  string
	}
	var refs []ref
	for _, doc := range sr.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		refs = append(refs, ref{idx: len(refs), id: doc.Identifier})
	}

	// Metadata fetches dominate search latency, so they fan out. Each
	// worker writes its own slot; per-item failures are logged and
	// skipped, only a cancelled context aborts the whole search.
	found := make([]item, len(refs))
	ok := make([]bool, len(refs))
	err := util.Parallel(ctx, refs, detailWorkers, func(ctx context.Context, r ref) error {
		it, err := p.itemDetails(ctx, r.id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("archive_item_details_failed", "item", r.id, "error", err)
			return nil
		}
		if isQualityAudio(it) {
			found[r.idx] = it
			ok[r.idx] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}

	var items []item
	for i, it := range found {
		if ok[i] {
			items = append(items, it)
		}
	}

	sortByQuality(items)

	out := make([]providers.SongInfo, 0, len(items))
	for _, it := range items {
		out = append(out, it.songInfo())
	}
	logging.Event("archive_search", "query", query, "results", len(out))
	return out, nil
}

// item is one archive entry with its chosen best file.
type item struct {
	baseURL     string
	id          string
	title       string
	creator     string
	description string
	fileName    string
	fileSize    int64
	duration    time.Duration
}

func (it item) songInfo() providers.SongInfo {
	return providers.SongInfo{
		Service:   providers.ServiceArchive,
		ID:        it.id,
		Title:     it.title,
		Creator:   it.creator,
		Duration:  it.duration,
		Thumbnail: it.baseURL + "/services/img/" + it.id,
		PageURL:   it.baseURL + "/details/" + it.id,
		MediaURL:  it.baseURL + "/download/" + it.id + "/" + it.fileName,
	}
}

// itemDetails fetches item metadata and selects the largest MP3 file, which
// in practice is the full-length recording.
func (p *Provider) itemDetails(ctx context.Context, id string) (item, error) {
	var md metadataResponse
	if err := p.getJSON(ctx, p.BaseURL+"/metadata/"+id, &md); err != nil {
		return item{}, err
	}

	var bestName string
	var bestSize int64
	var bestLength string
	for _, f := range md.Files {
		if f.Format != "MP3" && !strings.HasSuffix(f.Name, ".mp3") {
			continue
		}
		size, _ := strconv.ParseInt(f.Size, 10, 64)
		if bestName == "" || size > bestSize {
			bestName, bestSize, bestLength = f.Name, size, f.Length
		}
	}
	if bestName == "" {
		return item{}, fmt.Errorf("item %s has no MP3 files", id)
	}

	title := md.Metadata.Title
	if title == "" {
		title = "Archive Item " + id
	}
	creator := md.Metadata.Creator
	if creator == "" {
		creator = "Unknown Artist"
	}

	return item{
		baseURL:     p.BaseURL,
		id:          id,
		title:       title,
		creator:     creator,
		description: md.Metadata.Description,
		fileName:    bestName,
		fileSize:    bestSize,
		duration:    parseLength(bestLength),
	}, nil
}

func (p *Provider) Resolve(ctx context.Context, song providers.SongInfo) (*providers.ResolvedSong, error) {
	if song.MediaURL == "" {
		return nil, fmt.Errorf("%w: descriptor has no download url", providers.ErrNoPlayableStream)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, song.MediaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive resolve %s: %w", song.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download url returned status %d",
			providers.ErrNoPlayableStream, resp.StatusCode)
	}

	finalURL := resp.Request.URL.String()
	logging.Event("archive_resolved", "item", song.ID, "url", finalURL)

	return &providers.ResolvedSong{
		URL:       finalURL,
		Title:     song.Title + " - " + song.Creator,
		Service:   providers.ServiceArchive,
		Duration:  song.Duration,
		Thumbnail: song.Thumbnail,
		Info:      song,
	}, nil
}

func (p *Provider) IsAvailable(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/", nil)
	if err != nil {
		return false, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		logging.Warn("archive_availability_failed", "error", err)
		return false, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (p *Provider) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// parseLength handles both "mm:ss" and plain seconds ("272.34") notations
// used across archive metadata.
func parseLength(s string) time.Duration {
	if s == "" {
		return 0
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		total := 0
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return 0
			}
			total = total*60 + n
		}
		return time.Duration(total) * time.Second
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return 0
}
