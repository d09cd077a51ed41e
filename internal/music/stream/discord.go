package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// ErrStopped is returned by ToDiscord when playback was halted through
// the control rather than running to the end of the stream.
var ErrStopped = errors.New("playback stopped")

// Control steers one running playback. Stop is terminal; Pause and
// Resume toggle frame delivery without tearing the stream down.
type Control struct {
	stop   chan struct{}
	once   atomic.Bool
	paused atomic.Bool
}

func NewControl() *Control {
	return &Control{stop: make(chan struct{})}
}

func (c *Control) Stop() {
	if c.once.CompareAndSwap(false, true) {
		close(c.stop)
	}
}

func (c *Control) Pause()  { c.paused.Store(true) }
func (c *Control) Resume() { c.paused.Store(false) }

func (c *Control) IsPaused() bool { return c.paused.Load() }

// ToDiscord reads PCM frames, encodes them as Opus and feeds the voice
// connection until the stream ends or the control stops it. A clean end
// of input returns nil; a manual stop returns ErrStopped.
func ToDiscord(r io.Reader, ctrl *Control, vc *discordgo.VoiceConnection) error {
	encoder, err := gopus.NewEncoder(SampleRate, Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	_ = vc.Speaking(true)
	defer func() { _ = vc.Speaking(false) }()

	pcmBuf := make([]byte, FrameSize*Channels*2)
	intBuf := make([]int16, FrameSize*Channels)

	for {
		select {
		case <-ctrl.stop:
			return ErrStopped
		default:
		}

		if ctrl.IsPaused() {
			select {
			case <-ctrl.stop:
				return ErrStopped
			case <-time.After(20 * time.Millisecond):
			}
			continue
		}

		_, err := io.ReadFull(r, pcmBuf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, FrameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case vc.OpusSend <- opus:
		case <-ctrl.stop:
			return ErrStopped
		}
	}
}
