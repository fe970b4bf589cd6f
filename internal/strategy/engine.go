// Package strategy plays a match from a declarative placement plan.
package strategy

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// PlayerID tags buildings bought by the engine.
const PlayerID = "strategy"

type upgradeEntry struct {
	key   string
	round int
	Upgrade
}

// Engine turns a Config into placement commands. It remembers which
// planned purchases it already emitted so repeated calls on an unchanged
// state never repeat them.
type Engine struct {
	cfg         Config
	buildings   catalog.Buildings
	defaultType string
	upgrades    []upgradeEntry
	applied     map[string]bool
	initialDone bool
	logger      *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New validates cfg and prepares the upgrade order: ascending cost
// threshold, ties broken by key.
func New(cfg Config, buildings catalog.Buildings, defaultType string, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:         cfg,
		buildings:   buildings,
		defaultType: defaultType,
		applied:     make(map[string]bool),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	for key, u := range cfg.WaveUpgrades {
		round, _ := ParseUpgradeKey(key)
		e.upgrades = append(e.upgrades, upgradeEntry{key: key, round: round, Upgrade: u})
	}
	sort.Slice(e.upgrades, func(i, j int) bool {
		a, b := e.upgrades[i], e.upgrades[j]
		if a.CostThreshold != b.CostThreshold {
			return a.CostThreshold < b.CostThreshold
		}
		return a.key < b.key
	})
	return e, nil
}

// Reset forgets emitted purchases, for a match restart.
func (e *Engine) Reset() {
	e.applied = make(map[string]bool)
	e.initialDone = false
}

// NextActions returns the purchases to attempt now. The initial wave is
// emitted on the first call in round 1; later calls walk the upgrades.
// Commands may still be rejected by placement validation; the engine does
// not retry them.
func (e *Engine) NextActions(snap state.Snapshot, placed []placement.Building) []match.PlaceBuildingCommand {
	if !snap.IsGameActive {
		return nil
	}
	occupied := make(map[core.Cell]bool, len(placed))
	for _, b := range placed {
		occupied[b.Cell()] = true
	}

	if !e.initialDone && snap.CurrentRound == 1 {
		e.initialDone = true
		if cmds := e.initialActions(occupied); len(cmds) > 0 {
			return cmds
		}
	}
	return e.upgradeActions(snap, occupied)
}

func (e *Engine) initialActions(occupied map[core.Cell]bool) []match.PlaceBuildingCommand {
	iw := e.cfg.InitialWave
	if len(iw.Positions) == 0 {
		return nil
	}
	def, ok := catalog.Best(e.buildings, iw.Category, iw.MaxCostPerBuilding)
	if !ok {
		e.logger.Warn("no initial building fits", "category", iw.Category, "max_cost", iw.MaxCostPerBuilding)
		return nil
	}
	out := make([]match.PlaceBuildingCommand, 0, len(iw.Positions))
	for _, pos := range iw.Positions {
		if occupied[pos.Cell()] {
			continue
		}
		occupied[pos.Cell()] = true
		out = append(out, e.command(def.Type, pos))
	}
	e.logger.Debug("initial placement", "type", def.Type, "count", len(out))
	return out
}

func (e *Engine) upgradeActions(snap state.Snapshot, occupied map[core.Cell]bool) []match.PlaceBuildingCommand {
	var pending []upgradeEntry
	for _, u := range e.upgrades {
		if e.applied[u.key] || u.round > snap.CurrentRound || occupied[u.Position.Cell()] {
			continue
		}
		pending = append(pending, u)
	}
	if len(pending) == 0 {
		return nil
	}

	for _, u := range pending {
		if snap.Money < u.CostThreshold {
			continue
		}
		def, ok := catalog.Best(e.buildings, u.Category, snap.Money)
		if !ok {
			continue
		}
		e.applied[u.key] = true
		e.logger.Debug("upgrade", "key", u.key, "type", def.Type, "threshold", u.CostThreshold)
		return []match.PlaceBuildingCommand{e.command(def.Type, u.Position)}
	}

	// Fallback fills a spot whose planned round has passed before one
	// still waiting on this round's money.
	target := pending[0]
	for _, u := range pending {
		if u.round < snap.CurrentRound {
			target = u
			break
		}
	}
	if def, ok := e.fallback(snap); ok {
		e.applied[target.key] = true
		e.logger.Debug("fallback", "key", target.key, "type", def.Type, "money", snap.Money)
		return []match.PlaceBuildingCommand{e.command(def.Type, target.Position)}
	}
	return nil
}

// fallback walks default type, cheapest type, emergency in order.
func (e *Engine) fallback(snap state.Snapshot) (catalog.BuildingDef, bool) {
	fb := e.cfg.Fallback
	reserve := e.cfg.CostThresholds[ThresholdReserve]
	budget := snap.Money - reserve

	if fb.UseDefaultType && e.defaultType != "" {
		if def, ok := e.buildings.Building(e.defaultType); ok && def.Cost <= budget {
			return def, true
		}
	}
	cheapest, ok := catalog.Cheapest(e.buildings, "")
	if !ok {
		return catalog.BuildingDef{}, false
	}
	if fb.UseCheapestType && cheapest.Cost <= budget {
		return cheapest, true
	}
	if lives, set := e.cfg.CostThresholds[ThresholdEmergencyLives]; fb.EmergencyFallback && set &&
		snap.Lives <= lives && cheapest.Cost <= snap.Money {
		e.logger.Warn("emergency placement", "lives", snap.Lives, "type", cheapest.Type)
		return cheapest, true
	}
	return catalog.BuildingDef{}, false
}

func (e *Engine) command(buildingType string, pos core.Vec) match.PlaceBuildingCommand {
	return match.PlaceBuildingCommand{BuildingType: buildingType, Position: pos, PlayerID: PlayerID}
}
