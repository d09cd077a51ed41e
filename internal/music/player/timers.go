package player

import (
	"time"

	"musa/internal/logging"
)

// armIdleLocked schedules the idle disconnect. Caller holds p.mu.
// Replaces any previous idle timer so only one is ever pending.
func (p *Player) armIdleLocked() {
	p.cancelIdleLocked()
	if !p.transport.IsConnected() {
		return
	}
	p.idleTimer = time.AfterFunc(p.opts.IdleTimeout, p.idleFired)
}

func (p *Player) cancelIdleLocked() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
}

// idleFired re-checks state before acting: playback may have restarted
// between scheduling and firing.
func (p *Player) idleFired() {
	p.mu.Lock()
	if p.state != StateIdle || len(p.queue) > 0 || p.idleTimer == nil {
		p.mu.Unlock()
		return
	}
	p.idleTimer = nil
	p.cancelEmptyLocked()
	p.mu.Unlock()

	logging.Event("idle_disconnect", "guild", p.guildID, "after", p.opts.IdleTimeout.String())
	if err := p.transport.Disconnect(); err != nil {
		logging.Warn("idle disconnect failed", "guild", p.guildID, "error", err)
	}
	p.notify(Notice{Kind: NoticeIdleDisconnect})
}

// HumanCountChanged feeds voice channel occupancy into the player. The
// caller reports the number of non-bot members currently in the bot's
// channel. Zero arms the empty-channel timer; anyone rejoining cancels
// it.
func (p *Player) HumanCountChanged(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.humans = count
	if count > 0 {
		p.cancelEmptyLocked()
		return
	}
	if !p.transport.IsConnected() || p.emptyTimer != nil {
		return
	}
	p.emptyTimer = time.AfterFunc(p.opts.EmptyTimeout, p.emptyFired)
	logging.Event("empty_channel_timer_started", "guild", p.guildID, "after", p.opts.EmptyTimeout.String())
}

func (p *Player) cancelEmptyLocked() {
	if p.emptyTimer != nil {
		p.emptyTimer.Stop()
		p.emptyTimer = nil
		logging.Event("empty_channel_timer_cancelled", "guild", p.guildID)
	}
}

// emptyFired re-checks occupancy before acting, then hard-stops: there
// is nobody left to listen, so the queue is dropped too.
func (p *Player) emptyFired() {
	p.mu.Lock()
	if p.humans > 0 || p.emptyTimer == nil || !p.transport.IsConnected() {
		p.mu.Unlock()
		return
	}
	p.emptyTimer = nil
	p.mu.Unlock()

	logging.Event("empty_channel_disconnect", "guild", p.guildID)
	_ = p.Stop()
	p.notify(Notice{Kind: NoticeEmptyDisconnect})
}
