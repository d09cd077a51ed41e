package player

import (
	"context"

	"musa/internal/music/providers"
)

// PlayPlaylist connects and starts the first descriptor immediately,
// then streams the rest of the playlist into the queue from a
// background task. At most one population task runs per guild; a new
// playlist replaces a still-running one.
func (p *Player) PlayPlaylist(ctx context.Context, channelID string, first providers.SongInfo, fetch providers.FetchRemaining) error {
	if err := p.Play(ctx, channelID, first); err != nil {
		return err
	}
	if fetch != nil {
		p.startPopulation(fetch)
	}
	return nil
}

func (p *Player) startPopulation(fetch providers.FetchRemaining) {
	p.mu.Lock()
	p.popGen++
	gen := p.popGen
	p.mu.Unlock()

	emit := func(song providers.SongInfo) bool {
		p.mu.Lock()
		if p.popGen != gen {
			p.mu.Unlock()
			return false
		}
		p.queue = append(p.queue, song)
		p.cancelIdleLocked()
		kick := p.state == StateIdle
		p.mu.Unlock()

		// Playback may have drained and parked while the fetch was
		// still running; wake it up for the fresh descriptor.
		if kick {
			p.post(event{kind: evAdvance})
		}
		return true
	}

	_ = p.jobs.Restart(p.populationJob(), func(jobCtx context.Context) error {
		fetch(jobCtx, emit)
		return nil
	})
}

// haltPopulationLocked permanently stops the guild's population task.
// The generation bump makes any in-flight emit a no-op even before the
// task observes its cancelled context. Caller holds p.mu.
func (p *Player) haltPopulationLocked() {
	p.popGen++
	_ = p.jobs.Stop(p.populationJob())
}

func (p *Player) populationJob() string {
	return "populate:" + p.guildID
}

// PopulationRunning reports whether a playlist is still being loaded.
func (p *Player) PopulationRunning() bool {
	return p.jobs.IsRunning(p.populationJob())
}
