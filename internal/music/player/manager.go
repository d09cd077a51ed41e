package player

import (
	"sync"

	"musa/pkg/jobmgr"
)

// TransportFactory builds the voice backend for one guild.
type TransportFactory func(guildID string) Transport

// Manager lazily creates one Player per guild and tears them all down
// on shutdown.
type Manager struct {
	mu      sync.Mutex
	players map[string]*Player

	resolver     Resolver
	newTransport TransportFactory
	opts         Options

	// OnCreate, when set before first use, observes every newly created
	// player. The front end uses it to watch the player's notices.
	OnCreate func(*Player)
}

func NewManager(resolver Resolver, newTransport TransportFactory, opts Options) *Manager {
	if opts.Jobs == nil {
		opts.Jobs = jobmgr.NewManager(nil)
	}
	return &Manager{
		players:      make(map[string]*Player),
		resolver:     resolver,
		newTransport: newTransport,
		opts:         opts,
	}
}

// Get returns the guild's player, creating it on first use.
func (m *Manager) Get(guildID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[guildID]; ok {
		return p
	}
	p := New(guildID, m.resolver, m.newTransport(guildID), m.opts)
	m.players[guildID] = p
	if m.OnCreate != nil {
		m.OnCreate(p)
	}
	return p
}

// Peek returns the guild's player only if one already exists.
func (m *Manager) Peek(guildID string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	return p, ok
}

// Guilds lists the guilds with an active player.
func (m *Manager) Guilds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.players))
	for id := range m.players {
		out = append(out, id)
	}
	return out
}

// Shutdown closes every player. Used on process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.players = make(map[string]*Player)
	m.mu.Unlock()

	for _, p := range players {
		p.Close()
	}
}
