package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"musa/internal/logging"
	"musa/internal/music/providers"
	"musa/internal/music/stream"
)

// voiceTransport drives one guild's voice connection. It implements
// player.Transport: ffmpeg decodes the resolved URL to PCM, the stream
// package pushes Opus frames into the connection.
type voiceTransport struct {
	session *discordgo.Session
	guildID string

	mu     sync.Mutex
	vc     *discordgo.VoiceConnection
	ctrl   *stream.Control
	pcm    *stream.PCMStream
	onDone func()
}

func newVoiceTransport(session *discordgo.Session, guildID string) *voiceTransport {
	return &voiceTransport{session: session, guildID: guildID}
}

func (t *voiceTransport) Connect(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.vc != nil && t.vc.ChannelID == channelID {
		return nil
	}
	if t.vc != nil {
		// Stop any running stream before dropping the old connection, or
		// its goroutine would hang on a dead OpusSend. The interrupted
		// track counts as ended so the engine can move on.
		done := t.onDone
		t.stopLocked()
		_ = t.vc.Disconnect()
		t.vc = nil
		if done != nil {
			go done()
		}
	}

	vc, err := t.session.ChannelVoiceJoin(t.guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	t.vc = vc
	logging.Event("voice_connected", "guild", t.guildID, "channel", channelID)
	return nil
}

func (t *voiceTransport) Play(song *providers.ResolvedSong, onComplete func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.vc == nil {
		return errors.New("not connected to a voice channel")
	}
	t.stopLocked()

	pcm, err := stream.Open(song.URL)
	if err != nil {
		return fmt.Errorf("failed to open media stream: %w", err)
	}

	ctrl := stream.NewControl()
	t.ctrl = ctrl
	t.pcm = pcm
	t.onDone = onComplete
	vc := t.vc

	go func() {
		err := stream.ToDiscord(pcm, ctrl, vc)
		_ = pcm.Close()

		if errors.Is(err, stream.ErrStopped) {
			return
		}
		if err != nil {
			logging.Warn("playback ended with error", "guild", t.guildID, "title", song.Title, "error", err)
		}
		// Read errors count as the track ending; the player decides
		// what happens next.
		onComplete()
	}()

	return nil
}

func (t *voiceTransport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctrl == nil {
		return errors.New("no active playback")
	}
	t.ctrl.Pause()
	return nil
}

func (t *voiceTransport) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctrl == nil {
		return errors.New("no active playback")
	}
	t.ctrl.Resume()
	return nil
}

func (t *voiceTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	return nil
}

// stopLocked halts the running stream without reporting a track end.
// Caller holds t.mu.
func (t *voiceTransport) stopLocked() {
	if t.ctrl != nil {
		t.ctrl.Stop()
		t.ctrl = nil
	}
	if t.pcm != nil {
		_ = t.pcm.Close()
		t.pcm = nil
	}
	t.onDone = nil
}

func (t *voiceTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	if t.vc == nil {
		return nil
	}
	err := t.vc.Disconnect()
	t.vc = nil
	logging.Event("voice_disconnected", "guild", t.guildID)
	return err
}

func (t *voiceTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vc != nil
}

func (t *voiceTransport) ChannelID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.vc == nil {
		return ""
	}
	return t.vc.ChannelID
}
