package player

import (
	"context"

	"musa/internal/music/providers"
)

// Transport is the narrow voice backend a Player drives. One transport
// serves one guild. Play must not block for the duration of playback;
// it starts streaming and arranges for onComplete to be called exactly
// once when the stream ends on its own. onComplete may fire on any
// goroutine; the Player hands it back into its own loop.
type Transport interface {
	Connect(ctx context.Context, channelID string) error
	Play(song *providers.ResolvedSong, onComplete func()) error
	Pause() error
	Resume() error
	Stop() error
	Disconnect() error
	IsConnected() bool
	ChannelID() string
}

// Resolver turns a queued descriptor into a playable song. Satisfied by
// source_resolver.SourceResolver.
type Resolver interface {
	Resolve(ctx context.Context, song providers.SongInfo) (*providers.ResolvedSong, error)
}
