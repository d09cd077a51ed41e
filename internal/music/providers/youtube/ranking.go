package youtube

import (
	"context"
	"fmt"
	"sort"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// formatScore ranks a single format. Higher is better; negative means the
// format is unusable. The weights favour audio-only streams with modern
// codecs over muxed video, and add bitrate on top so quality breaks ties.
func formatScore(f *ytdl.Format) int {
	mime := strings.ToLower(f.MimeType)
	if f.AudioChannels == 0 && !strings.HasPrefix(mime, "audio/") {
		return -1
	}

	score := 0
	if strings.HasPrefix(mime, "audio/") {
		score += 10
	}

	switch {
	case strings.Contains(mime, "opus"), strings.Contains(mime, "vorbis"):
		score += 6
	case strings.Contains(mime, "mp4a"), strings.Contains(mime, "aac"):
		score += 5
	}

	if strings.HasPrefix(mime, "audio/webm") || strings.HasPrefix(mime, "audio/mp4") {
		score += 5
	}

	score += f.AverageBitrate / 1000

	return score
}

// FormatInfo is one extractor format with its ranking score.
type FormatInfo struct {
	Itag     int
	MimeType string
	Bitrate  int
	Channels int
	Score    int
}

// FormatReport lists every format of a video with its score, best
// first. Unusable formats carry a negative score. Used by the formats
// debug command.
func (p *Provider) FormatReport(ctx context.Context, videoID string) (string, []FormatInfo, error) {
	video, err := p.extract.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", nil, fmt.Errorf("youtube extract %s: %w", videoID, err)
	}

	out := make([]FormatInfo, 0, len(video.Formats))
	for i := range video.Formats {
		f := &video.Formats[i]
		out = append(out, FormatInfo{
			Itag:     f.ItagNo,
			MimeType: f.MimeType,
			Bitrate:  f.AverageBitrate,
			Channels: f.AudioChannels,
			Score:    formatScore(f),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Itag < out[j].Itag
	})
	return video.Title, out, nil
}

// bestAudioFormat returns the highest scoring usable format, or nil when
// none qualifies. Sorting is deterministic: score first, itag as tiebreaker.
func bestAudioFormat(formats ytdl.FormatList) *ytdl.Format {
	candidates := make([]*ytdl.Format, 0, len(formats))
	for i := range formats {
		if formatScore(&formats[i]) >= 0 {
			candidates = append(candidates, &formats[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := formatScore(candidates[i]), formatScore(candidates[j])
		if si != sj {
			return si > sj
		}
		return candidates[i].ItagNo < candidates[j].ItagNo
	})
	return candidates[0]
}
