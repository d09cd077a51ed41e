// Package providers defines the capability contract every audio service
// implements and the registry that holds the configured set of them.
package providers

import (
	"context"
	"errors"
	"time"
)

const (
	ServiceYouTube = "youtube"
	ServiceArchive = "internet_archive"
	ServiceRadio   = "radio"
)

// ErrNoPlayableStream is returned by Resolve when a descriptor cannot be
// turned into a playable media URL. Callers treat it the same as a nil
// result: skip and move on.
var ErrNoPlayableStream = errors.New("no playable stream for descriptor")

// SongInfo is an unresolved, provider-tagged reference to a song.
// Immutable after creation; safe to sit in a queue long-term and later be
// passed back to its owning provider for resolution.
type SongInfo struct {
	Service   string // identifier of the provider that produced it
	ID        string // provider-specific key: video id, archive item, station id
	Title     string
	Creator   string
	Duration  time.Duration // 0 when unknown or continuous
	Thumbnail string
	PageURL   string

	// MediaURL is the provider-specific resolution key for providers that
	// already know a candidate stream location (archive file, station URL).
	MediaURL string

	IsLiveStream bool
}

// ResolvedSong is a short-lived, directly playable media reference produced
// immediately before playback. Its URL may be time-limited; it is never
// persisted or reused after playback ends.
type ResolvedSong struct {
	URL          string
	Title        string
	Service      string
	Duration     time.Duration
	Thumbnail    string
	IsLiveStream bool

	// Info is the descriptor this song was resolved from.
	Info SongInfo
}

// Provider is a pluggable content source. Implementations do their own
// ranking and filtering; results must be deterministic for a given input.
type Provider interface {
	// Name returns the provider identifier, unique within a registry.
	Name() string

	// Search returns candidate descriptors for a text query, best first.
	// Zero results with a nil error is a legitimate "no match".
	Search(ctx context.Context, query string) ([]SongInfo, error)

	// Resolve turns a descriptor this provider produced into a playable
	// song. Returns ErrNoPlayableStream (or any other error) when it cannot.
	Resolve(ctx context.Context, song SongInfo) (*ResolvedSong, error)

	// IsAvailable is a best-effort liveness probe. The error, when set,
	// describes why the probe itself failed; it is informational only.
	IsAvailable(ctx context.Context) (bool, error)
}

// FetchRemaining streams the rest of an expanded playlist. It must stop as
// soon as emit returns false or ctx is cancelled.
type FetchRemaining func(ctx context.Context, emit func(SongInfo) bool)

// PlaylistExpander is an optional capability for providers that can expand
// one input (e.g. a playlist URL) into many descriptors. Expand returns the
// first descriptor synchronously so playback can start immediately, plus a
// fetch function that emits the remainder.
type PlaylistExpander interface {
	CanExpand(input string) bool
	Expand(ctx context.Context, input string) (SongInfo, FetchRemaining, error)
}
