// Package stream decodes a resolved media URL into 48kHz stereo PCM
// via ffmpeg and pushes it to a Discord voice connection as Opus.
package stream

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// PCMStream is a running ffmpeg decode of one media URL. Close kills
// the process; reading past the end of input returns io.EOF.
type PCMStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (s *PCMStream) Close() error {
	err := s.ReadCloser.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return err
}

// userAgent keeps CDNs that reject ffmpeg's default agent happy.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Open starts an ffmpeg decode of the URL. The reconnect flags make
// transient network hiccups resume instead of ending the track.
func Open(url string) (*PCMStream, error) {
	args := []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-headers", "User-Agent: " + userAgent + "\r\n",
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	}

	cmd := exec.Command("ffmpeg", args...)
	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &PCMStream{ReadCloser: reader, cmd: cmd}, nil
}
