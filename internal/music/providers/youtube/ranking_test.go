package youtube

import (
	"testing"

	ytdl "github.com/kkdai/youtube/v2"
)

func TestFormatScore_RejectsVideoOnly(t *testing.T) {
	f := ytdl.Format{MimeType: `video/mp4; codecs="avc1.4d401f"`, AudioChannels: 0}
	if got := formatScore(&f); got >= 0 {
		t.Errorf("expected negative score for video-only format, got %d", got)
	}
}

func TestFormatScore_PrefersOpusOverMuxed(t *testing.T) {
	opus := ytdl.Format{
		MimeType:       `audio/webm; codecs="opus"`,
		AudioChannels:  2,
		AverageBitrate: 128000,
	}
	muxed := ytdl.Format{
		MimeType:       `video/mp4; codecs="avc1.4d401f, mp4a.40.2"`,
		AudioChannels:  2,
		AverageBitrate: 512000,
	}

	if formatScore(&opus) <= formatScore(&muxed)-500 {
		// The bitrate term is additive, so a hugely higher muxed bitrate can
		// win; with realistic values the audio-only bonus must dominate.
		t.Errorf("opus score %d should beat muxed score %d at realistic bitrates",
			formatScore(&opus), formatScore(&muxed))
	}
}

func TestBestAudioFormat_Deterministic(t *testing.T) {
	formats := ytdl.FormatList{
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, AverageBitrate: 128000},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, AverageBitrate: 128000},
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1, mp4a.40.2"`, AudioChannels: 2, AverageBitrate: 96000},
	}

	first := bestAudioFormat(formats)
	if first == nil {
		t.Fatal("expected a format, got nil")
	}
	if first.ItagNo != 251 {
		t.Errorf("expected opus itag 251, got %d", first.ItagNo)
	}

	// Same input, same choice.
	for i := 0; i < 5; i++ {
		if got := bestAudioFormat(formats); got.ItagNo != first.ItagNo {
			t.Fatalf("ranking is not deterministic: got itag %d on run %d", got.ItagNo, i)
		}
	}
}

func TestBestAudioFormat_NoneUsable(t *testing.T) {
	formats := ytdl.FormatList{
		{ItagNo: 160, MimeType: `video/mp4; codecs="avc1"`, AudioChannels: 0},
	}
	if got := bestAudioFormat(formats); got != nil {
		t.Errorf("expected nil, got itag %d", got.ItagNo)
	}
}

func TestBestAudioFormat_TiebreakByItag(t *testing.T) {
	formats := ytdl.FormatList{
		{ItagNo: 250, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, AverageBitrate: 64000},
		{ItagNo: 249, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, AverageBitrate: 64000},
	}
	if got := bestAudioFormat(formats); got.ItagNo != 249 {
		t.Errorf("expected lower itag to win the tie, got %d", got.ItagNo)
	}
}
