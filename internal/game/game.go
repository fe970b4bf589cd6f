// Package game assembles a playable match from a scenario: catalog,
// board, match core, combat model and optional placement strategy, all
// sharing one event bus.
package game

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/board"
	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/combat"
	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/simulation"
	"github.com/vovakirdan/towerdefense/internal/strategy"
)

// Options tune how a Game is built.
type Options struct {
	Seed     *int64           // nil keeps the scenario seed
	Plan     *strategy.Config // nil plays without a strategy
	Logger   *log.Logger
	TickRate int // 0 keeps the scenario tick rate
}

// Game is one assembled match.
type Game struct {
	Scenario config.Scenario
	Runtime  core.RuntimeConfig
	Catalog  *catalog.Catalog
	Board    *board.Grid
	Match    *match.Match
	Combat   *combat.Model
	Strategy *strategy.Engine

	logger *log.Logger
}

// New builds a game from sc.
func New(sc config.Scenario, opts Options) (*Game, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rc := sc.Runtime()
	if opts.Seed != nil {
		rc.Seed = *opts.Seed
	}
	if opts.TickRate > 0 {
		rc.TickRate = opts.TickRate
	}

	cat, err := catalog.New(sc.Buildings, sc.Enemies, sc.Rounds)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	grid, err := board.New(board.Config{
		Width:       sc.Map.Width,
		Height:      sc.Map.Height,
		AbyssBuffer: sc.Map.AbyssBuffer,
		Path:        sc.Map.Path,
		Blocked:     sc.Map.Blocked,
	})
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	bus := event.NewBus()
	m, err := match.New(match.Deps{
		Catalog: cat,
		Board:   grid,
		Bus:     bus,
		Logger:  logger,
		Rules: match.Rules{
			StartingMoney:     sc.Rules.StartingMoney,
			StartingLives:     sc.Rules.StartingLives,
			PreparationTime:   sc.Rules.PreparationTime,
			AutoStartRounds:   sc.Rules.AutoStartRounds,
			SellRefundPercent: sc.Rules.SellRefundPercent,
			WaveClearScore:    sc.Rules.WaveClearScore,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	fight := combat.New(grid, cat, cat, combat.Config{Seed: rc.Seed, Variance: sc.Combat.Variance})
	bus.Subscribe(fight)

	g := &Game{
		Scenario: sc,
		Runtime:  rc,
		Catalog:  cat,
		Board:    grid,
		Match:    m,
		Combat:   fight,
		logger:   logger,
	}
	if opts.Plan != nil {
		engine, err := strategy.New(*opts.Plan, cat, sc.DefaultBuilding, strategy.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
		g.Strategy = engine
	}
	return g, nil
}

// SimulationOptions returns harness options stepping at the game's tick rate.
func (g *Game) SimulationOptions() simulation.Options {
	opts := simulation.DefaultOptions()
	opts.TickDuration = g.Runtime.TickDuration()
	opts.MaxTicks = int(math.Round(3600 / opts.TickDuration))
	return opts
}

// Harness returns a headless driver for the game.
func (g *Game) Harness(opts simulation.Options) (*simulation.Harness, error) {
	var s simulation.Strategy
	if g.Strategy != nil {
		s = g.Strategy
	}
	return simulation.New(g.Match, s, g.Combat, opts, g.logger)
}

// Reset restarts the match. The combat model resets itself on the
// MatchReset event.
func (g *Game) Reset(ctx context.Context) error {
	if r := g.Match.Reset(ctx); !r.Success {
		return r.Err()
	}
	if g.Strategy != nil {
		g.Strategy.Reset()
	}
	return nil
}

// Simulate builds a game and runs it to completion.
func Simulate(ctx context.Context, sc config.Scenario, opts Options, simOpts func(*simulation.Options)) (simulation.Result, error) {
	g, err := New(sc, opts)
	if err != nil {
		return simulation.Result{}, err
	}
	so := g.SimulationOptions()
	if simOpts != nil {
		simOpts(&so)
	}
	h, err := g.Harness(so)
	if err != nil {
		return simulation.Result{}, err
	}
	return h.Run(ctx)
}
