// Package player holds the per-guild playback engine: a FIFO queue of
// song descriptors and the state machine that resolves them one at a
// time and drives the voice transport.
//
// All state transitions triggered by the transport (track completion)
// go through the player's own loop goroutine; command-triggered
// transitions mutate state under the mutex directly. Timers re-check
// state before acting, so a stale timer firing after the player moved
// on is harmless.
package player

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"musa/internal/logging"
	"musa/internal/music/providers"
	"musa/pkg/jobmgr"
)

type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
)

var (
	ErrNothingPlaying = errors.New("no track is currently playing")
	ErrNotPaused      = errors.New("playback is not paused")
	ErrQueueEmpty     = errors.New("no tracks in queue")
)

// NoticeKind classifies player notifications for the front end.
type NoticeKind int

const (
	NoticeNowPlaying NoticeKind = iota
	NoticeQueueEnded
	NoticeStopped
	NoticeIdleDisconnect
	NoticeEmptyDisconnect
)

// Notice is a playback event the front end may render.
type Notice struct {
	Kind NoticeKind
	Song *providers.ResolvedSong
}

type eventKind int

const (
	evAdvance eventKind = iota
	evTrackEnd
)

type event struct {
	kind eventKind
	gen  uint64
}

// Options carries the tunables a Player needs beyond its collaborators.
type Options struct {
	IdleTimeout  time.Duration
	EmptyTimeout time.Duration

	// Jobs tracks background population tasks. Shared across players so
	// operators can list them in one place; nil gets a private manager.
	Jobs *jobmgr.Manager
}

// Player is the per-guild playback engine. Create with New, release
// with Close.
type Player struct {
	guildID   string
	resolver  Resolver
	transport Transport
	opts      Options

	mu      sync.Mutex
	state   State
	current *providers.ResolvedSong
	queue   []providers.SongInfo
	history []providers.SongInfo

	// playGen invalidates completion callbacks from playbacks that were
	// stopped or skipped before they finished.
	playGen uint64
	// popGen invalidates queue appends from population tasks that were
	// cancelled by Clear or Stop.
	popGen     uint64
	jobs       *jobmgr.Manager
	idleTimer  *time.Timer
	emptyTimer *time.Timer
	humans     int

	ctx    context.Context
	cancel context.CancelFunc
	events chan event

	// Notices delivers playback events to the front end. Buffered; a
	// full channel drops the notice rather than blocking playback.
	Notices chan Notice
}

func New(guildID string, resolver Resolver, transport Transport, opts Options) *Player {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Second
	}
	if opts.EmptyTimeout <= 0 {
		opts.EmptyTimeout = 60 * time.Second
	}
	if opts.Jobs == nil {
		opts.Jobs = jobmgr.NewManager(func(s string) {
			logging.Event("population_job", "status", s)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		guildID:   guildID,
		resolver:  resolver,
		transport: transport,
		opts:      opts,
		jobs:      opts.Jobs,
		state:     StateIdle,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan event, 16),
		Notices:   make(chan Notice, 10),
	}
	go p.loop()
	return p
}

func (p *Player) GuildID() string { return p.guildID }

// Play connects to the voice channel if needed, appends the songs to
// the queue and starts playback when the player is idle.
func (p *Player) Play(ctx context.Context, channelID string, songs ...providers.SongInfo) error {
	if len(songs) == 0 {
		return ErrQueueEmpty
	}

	if !p.transport.IsConnected() || p.transport.ChannelID() != channelID {
		if err := p.transport.Connect(ctx, channelID); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.queue = append(p.queue, songs...)
	p.cancelIdleLocked()
	idle := p.state == StateIdle
	p.mu.Unlock()

	logging.Event("tracks_enqueued", "guild", p.guildID, "count", len(songs))
	if idle {
		p.post(event{kind: evAdvance})
	}
	return nil
}

// Skip drops the current track and moves to the next queued one.
func (p *Player) Skip() error {
	p.mu.Lock()
	if p.state != StatePlaying && p.state != StatePaused {
		p.mu.Unlock()
		return ErrNothingPlaying
	}
	p.playGen++
	p.state = StateIdle
	p.current = nil
	p.mu.Unlock()

	if err := p.transport.Stop(); err != nil {
		logging.Warn("transport stop failed on skip", "guild", p.guildID, "error", err)
	}
	p.post(event{kind: evAdvance})
	return nil
}

// Pause suspends the current track without losing position.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying {
		return ErrNothingPlaying
	}
	if err := p.transport.Pause(); err != nil {
		return err
	}
	p.state = StatePaused
	return nil
}

// Resume continues a paused track.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePaused {
		return ErrNotPaused
	}
	if err := p.transport.Resume(); err != nil {
		return err
	}
	p.state = StatePlaying
	return nil
}

// Stop is the hard stop: it halts playback, clears the queue, cancels
// timers and any population task, and leaves the voice channel.
func (p *Player) Stop() error {
	p.mu.Lock()
	p.playGen++
	p.haltPopulationLocked()
	p.queue = nil
	p.cancelIdleLocked()
	p.cancelEmptyLocked()
	wasActive := p.state != StateIdle
	p.state = StateIdle
	p.current = nil
	p.mu.Unlock()

	if wasActive {
		if err := p.transport.Stop(); err != nil {
			logging.Warn("transport stop failed", "guild", p.guildID, "error", err)
		}
	}
	if err := p.transport.Disconnect(); err != nil {
		logging.Warn("voice disconnect failed", "guild", p.guildID, "error", err)
	}

	logging.Event("playback_stopped", "guild", p.guildID)
	p.notify(Notice{Kind: NoticeStopped})
	return nil
}

// Clear wipes the pending queue and halts any population task. The
// current track keeps playing.
func (p *Player) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.haltPopulationLocked()
	n := len(p.queue)
	p.queue = nil
	return n
}

// Shuffle randomizes the order of the pending queue.
func (p *Player) Shuffle() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	rand.Shuffle(len(p.queue), func(i, j int) {
		p.queue[i], p.queue[j] = p.queue[j], p.queue[i]
	})
	return len(p.queue)
}

// Queue returns a copy of the pending queue.
func (p *Player) Queue() []providers.SongInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.queue)
}

// QueueLen reports the number of pending descriptors.
func (p *Player) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// History returns a copy of the already-played descriptors.
func (p *Player) History() []providers.SongInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.history)
}

// NowPlaying returns the current track, or ErrNothingPlaying.
func (p *Player) NowPlaying() (*providers.ResolvedSong, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || (p.state != StatePlaying && p.state != StatePaused) {
		return nil, ErrNothingPlaying
	}
	return p.current, nil
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// VoiceChannelID returns the channel the transport is connected to,
// empty when disconnected.
func (p *Player) VoiceChannelID() string {
	if !p.transport.IsConnected() {
		return ""
	}
	return p.transport.ChannelID()
}

// Done is closed when the player is released with Close.
func (p *Player) Done() <-chan struct{} { return p.ctx.Done() }

// Close releases the player. It hard-stops playback and terminates the
// loop goroutine.
func (p *Player) Close() {
	_ = p.Stop()
	p.cancel()
}

// loop serializes every transport-originated transition.
func (p *Player) loop() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case ev := <-p.events:
			switch ev.kind {
			case evAdvance:
				p.advance()
			case evTrackEnd:
				if p.acceptTrackEnd(ev.gen) {
					p.advance()
				}
			}
		}
	}
}

// acceptTrackEnd filters completion callbacks: only the current
// playback generation, and only while something is actually playing.
// A completion arriving after a hard stop or skip is stale. Accepting
// parks the player idle so the following advance starts the next track.
func (p *Player) acceptTrackEnd(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.playGen {
		return false
	}
	if p.state != StatePlaying && p.state != StatePaused {
		return false
	}
	p.state = StateIdle
	return true
}

// advance pops descriptors off the queue until one resolves and starts
// playing. Descriptors that fail to resolve are dropped with a log
// line. An exhausted queue parks the player idle and arms the idle
// disconnect timer.
func (p *Player) advance() {
	for {
		p.mu.Lock()
		if p.state == StatePlaying || p.state == StatePaused {
			// A stale advance: something is already playing. Back-to-back
			// Play calls can both observe idle before the loop wakes up.
			p.mu.Unlock()
			return
		}
		if len(p.queue) == 0 {
			hadTrack := p.current != nil
			p.state = StateIdle
			p.current = nil
			p.armIdleLocked()
			p.mu.Unlock()
			if hadTrack {
				p.notify(Notice{Kind: NoticeQueueEnded})
			}
			return
		}

		song := p.queue[0]
		p.queue = p.queue[1:]
		p.state = StateResolving
		p.current = nil
		startGen := p.playGen
		p.mu.Unlock()

		resolved, err := p.resolver.Resolve(p.ctx, song)

		p.mu.Lock()
		if p.playGen != startGen {
			// Stop arrived while resolving; the descriptor was already
			// discarded with the rest of the queue.
			p.mu.Unlock()
			return
		}
		if err != nil {
			p.mu.Unlock()
			logging.Warn("track resolution failed, skipping",
				"guild", p.guildID, "service", song.Service, "title", song.Title, "error", err)
			continue
		}
		p.playGen++
		gen := p.playGen
		err = p.transport.Play(resolved, func() { p.trackEnded(gen) })
		if err != nil {
			p.mu.Unlock()
			logging.Warn("transport refused track, skipping",
				"guild", p.guildID, "title", resolved.Title, "error", err)
			continue
		}
		p.state = StatePlaying
		p.current = resolved
		p.history = append(p.history, song)
		p.mu.Unlock()

		logging.Event("now_playing", "guild", p.guildID, "service", resolved.Service, "title", resolved.Title)
		p.notify(Notice{Kind: NoticeNowPlaying, Song: resolved})
		return
	}
}

// trackEnded is the transport completion callback. It runs on the
// transport's goroutine and only posts back into the loop.
func (p *Player) trackEnded(gen uint64) {
	p.post(event{kind: evTrackEnd, gen: gen})
}

func (p *Player) post(ev event) {
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

// notify delivers a notice without ever blocking playback.
func (p *Player) notify(n Notice) {
	select {
	case p.Notices <- n:
	default:
		logging.Warn("player notice dropped", "guild", p.guildID, "kind", int(n.Kind))
	}
}
