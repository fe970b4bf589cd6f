package httpapi

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/simulation"
)

// ErrMatchNotFound is returned for unknown match IDs.
var ErrMatchNotFound = errors.New("httpapi: match not found")

// session is one hosted match. mu serialises the combat model, which is
// not safe for concurrent use, with the commands that publish to it.
type session struct {
	mu      sync.Mutex
	id      string
	game    *game.Game
	harness *simulation.Harness
	created time.Time
}

// Manager holds the hosted matches keyed by UUID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	limit    int
}

// NewManager creates a manager holding at most limit matches; 0 means no
// limit.
func NewManager(limit int) *Manager {
	return &Manager{sessions: make(map[string]*session), limit: limit}
}

// ErrTooManyMatches is returned when the manager is full.
var ErrTooManyMatches = errors.New("httpapi: too many matches")

func (m *Manager) add(g *game.Game) (*session, error) {
	h, err := g.Harness(g.SimulationOptions())
	if err != nil {
		return nil, err
	}
	s := &session{id: uuid.NewString(), game: g, harness: h, created: time.Now()}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && len(m.sessions) >= m.limit {
		return nil, ErrTooManyMatches
	}
	m.sessions[s.id] = s
	return s, nil
}

func (m *Manager) get(id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrMatchNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return s, nil
}

func (m *Manager) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// IDs lists hosted matches, oldest first.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	list := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].created.Equal(list[j].created) {
			return list[i].created.Before(list[j].created)
		}
		return list[i].id < list[j].id
	})
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.id
	}
	return ids
}

// Len returns the number of hosted matches.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
