// Package combat is a deterministic stand-in for the real-time battle.
// It spawns the enemies of each started wave, walks them along the route,
// lets buildings in range shoot the leading enemy and reports who died
// and who leaked. Variance comes from a seeded RNG, so equal seeds give
// equal battles.
package combat

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/placement"
)

// Route is the path enemies follow.
type Route interface {
	PathLength() float64
	PointAt(d float64) core.Vec
}

// Outcome is how an enemy left the field.
type Outcome int

const (
	Defeated Outcome = iota
	Leaked
)

// Report is one resolved enemy.
type Report struct {
	Outcome   Outcome
	EnemyType string
}

// Enemy is a live enemy on the route.
type Enemy struct {
	Type      string
	Health    float64
	MaxHealth float64
	Distance  float64
	Position  core.Vec
	speed     float64
}

type spawn struct {
	at        float64 // seconds after the wave started
	enemyType string
}

// Config tunes the model.
type Config struct {
	Seed     int64
	Variance float64 // relative damage spread, 0.1 means ±10%
}

// Model implements the combat collaborator.
type Model struct {
	route     Route
	enemies   catalog.Enemies
	buildings catalog.Buildings
	cfg       Config
	rng       *rand.Rand

	clock    float64
	queue    []spawn
	live     []*Enemy
	cooldown map[int]float64 // building id -> seconds until next shot
}

// New creates a model.
func New(route Route, enemies catalog.Enemies, buildings catalog.Buildings, cfg Config) *Model {
	m := &Model{
		route:     route,
		enemies:   enemies,
		buildings: buildings,
		cfg:       cfg,
	}
	m.Reset()
	return m
}

// Reset clears the field and reseeds the RNG.
func (m *Model) Reset() {
	m.rng = rand.New(rand.NewSource(m.cfg.Seed))
	m.clock = 0
	m.queue = nil
	m.live = nil
	m.cooldown = make(map[int]float64)
}

// OnEvent queues spawns for started waves and clears the field when the
// match ends or restarts.
func (m *Model) OnEvent(e event.Event) {
	switch ev := e.(type) {
	case event.WaveStarted:
		m.enqueue(ev.Wave)
	case event.MatchEnded:
		m.queue = nil
		m.live = nil
	case event.MatchReset:
		m.Reset()
	case event.RoundStarted:
		// A forced restart abandons whatever was still walking.
		m.queue = nil
		m.live = nil
	}
}

func (m *Model) enqueue(w catalog.WaveDefinition) {
	at := m.clock
	for _, g := range w.EnemyGroups {
		for i := 0; i < g.Count; i++ {
			m.queue = append(m.queue, spawn{at: at, enemyType: g.EnemyType})
			at += g.SpawnInterval
		}
	}
}

// Pending returns the number of enemies queued or alive.
func (m *Model) Pending() int {
	return len(m.queue) + len(m.live)
}

// Enemies returns a copy of the live enemies, leader first.
func (m *Model) Enemies() []Enemy {
	out := make([]Enemy, len(m.live))
	for i, e := range m.live {
		out[i] = *e
	}
	return out
}

// Step advances the battle by dt seconds against the given towers and
// returns the enemies resolved during the step, in resolution order.
func (m *Model) Step(dt float64, towers []placement.Building) []Report {
	m.clock += dt
	m.releaseSpawns()

	var reports []Report
	length := m.route.PathLength()
	kept := m.live[:0]
	for _, e := range m.live {
		e.Distance += e.speed * dt
		if e.Distance >= length {
			reports = append(reports, Report{Outcome: Leaked, EnemyType: e.Type})
			continue
		}
		e.Position = m.route.PointAt(e.Distance)
		kept = append(kept, e)
	}
	m.live = kept

	for _, t := range towers {
		reports = append(reports, m.fire(t, dt)...)
	}
	return reports
}

func (m *Model) releaseSpawns() {
	n := 0
	for n < len(m.queue) && m.queue[n].at <= m.clock {
		s := m.queue[n]
		def, ok := m.enemies.Enemy(s.enemyType)
		if ok {
			m.live = append(m.live, &Enemy{
				Type:      def.Type,
				Health:    def.Health,
				MaxHealth: def.Health,
				Position:  m.route.PointAt(0),
				speed:     def.Speed,
			})
		}
		n++
	}
	m.queue = m.queue[n:]
}

// fire lets one tower shoot as often as its rate allows within dt.
func (m *Model) fire(t placement.Building, dt float64) []Report {
	def, ok := m.buildings.Building(t.Type)
	if !ok || def.FireRate <= 0 || def.Damage <= 0 {
		return nil
	}
	period := 1 / def.FireRate
	cd := m.cooldown[t.ID] - dt

	var reports []Report
	for cd <= 0 {
		target := m.target(t.Position, def.Range)
		if target < 0 {
			cd = 0
			break
		}
		e := m.live[target]
		e.Health -= m.roll(def.Damage)
		if e.Health <= 0 {
			reports = append(reports, Report{Outcome: Defeated, EnemyType: e.Type})
			m.live = append(m.live[:target], m.live[target+1:]...)
		}
		cd += period
	}
	m.cooldown[t.ID] = cd
	return reports
}

// target returns the index of the most advanced enemy in range, or -1.
func (m *Model) target(from core.Vec, rng float64) int {
	best := -1
	for i, e := range m.live {
		if math.Hypot(e.Position.X-from.X, e.Position.Y-from.Y) > rng {
			continue
		}
		if best < 0 || e.Distance > m.live[best].Distance {
			best = i
		}
	}
	return best
}

func (m *Model) roll(damage float64) float64 {
	if m.cfg.Variance <= 0 {
		return damage
	}
	return damage * (1 + m.cfg.Variance*(2*m.rng.Float64()-1))
}
