// Package simulation runs a match end to end without rendering: a fixed
// step loop that advances the clock, lets the placement strategy act,
// advances combat and samples progress until the match resolves.
package simulation

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/combat"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// Strategy decides purchases.
type Strategy interface {
	NextActions(snap state.Snapshot, placed []placement.Building) []match.PlaceBuildingCommand
}

// Combat advances the battle and reports resolved enemies.
type Combat interface {
	Step(dt float64, towers []placement.Building) []combat.Report
}

// Options control a run.
type Options struct {
	MaxTicks      int
	TickDuration  float64 // simulated seconds per tick
	ProgressEvery int     // sample every N ticks; 0 disables sampling
	OnProgress    func(Progress)
}

// DefaultOptions returns ten ticks per second for at most an hour of
// simulated time.
func DefaultOptions() Options {
	return Options{
		MaxTicks:      36000,
		TickDuration:  0.1,
		ProgressEvery: 10,
	}
}

// Harness drives one match.
type Harness struct {
	match    *match.Match
	strategy Strategy
	combat   Combat
	opts     Options
	logger   *log.Logger
}

// New creates a harness. strategy and combat may be nil for a match that
// is driven only by its timers.
func New(m *match.Match, s Strategy, c Combat, opts Options, logger *log.Logger) (*Harness, error) {
	if m == nil {
		return nil, errors.New("simulation: match is required")
	}
	if opts.MaxTicks <= 0 {
		return nil, errors.New("simulation: max ticks must be positive")
	}
	if opts.TickDuration <= 0 {
		return nil, errors.New("simulation: tick duration must be positive")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Harness{match: m, strategy: s, combat: c, opts: opts, logger: logger}, nil
}

// Run ticks the match until it ends, MaxTicks is reached or ctx is done.
// The context is checked only between ticks. A cancelled run returns its
// partial result together with a SIMULATION_ABORTED error.
func (h *Harness) Run(ctx context.Context) (Result, error) {
	placed, failed := 0, 0

	for tick := 1; tick <= h.opts.MaxTicks; tick++ {
		if err := ctx.Err(); err != nil {
			snap := h.snapshot(ctx)
			res := Aborted(OutcomeCancelled, "cancelled").withState(snap)
			res.BuildingsPlaced, res.FailedPlacements = placed, failed
			return res, apperrors.Wrap(apperrors.CodeSimulationAborted, "simulation cancelled", err)
		}

		p, f := h.step(ctx)
		placed += p
		failed += f

		snap := h.snapshot(ctx)
		if h.opts.OnProgress != nil && h.opts.ProgressEvery > 0 && tick%h.opts.ProgressEvery == 0 {
			h.opts.OnProgress(progressOf(snap))
		}

		res, done := FromSnapshot(snap)
		if !done {
			continue
		}
		res.BuildingsPlaced, res.FailedPlacements = placed, failed
		h.logger.Info("simulation finished", "outcome", res.Outcome, "ticks", res.Ticks, "money", res.FinalMoney, "lives", res.FinalLives)
		return res, nil
	}

	snap := h.snapshot(ctx)
	res := Aborted(OutcomeMaxTicks, "max_ticks").withState(snap)
	res.BuildingsPlaced, res.FailedPlacements = placed, failed
	h.logger.Warn("simulation hit tick limit", "ticks", h.opts.MaxTicks, "round", snap.CurrentRound)
	return res, nil
}

// Step runs a single tick for callers that drive the clock themselves,
// such as interactive sessions, and returns the resulting state.
func (h *Harness) Step(ctx context.Context) state.Snapshot {
	h.step(ctx)
	return h.snapshot(ctx)
}

// step runs one tick and returns the successful and failed placements.
func (h *Harness) step(ctx context.Context) (placed, failed int) {
	dt := h.opts.TickDuration

	if r := h.match.AdvanceTime(ctx, match.AdvanceTimeCommand{Delta: dt}); !r.Success {
		h.logger.Debug("advance rejected", "code", r.Code, "err", r.Error)
		return 0, 0
	}
	snap := h.snapshot(ctx)
	if snap.Phase.IsTerminal() {
		return 0, 0
	}

	if h.strategy != nil {
		for _, cmd := range h.strategy.NextActions(snap, h.buildings(ctx)) {
			r := h.match.PlaceBuilding(ctx, cmd)
			if !r.Success {
				failed++
				h.logger.Debug("placement skipped", "type", cmd.BuildingType, "pos", cmd.Position, "code", r.Code)
				continue
			}
			placed++
		}
	}

	// Rounds wait in Preparation until someone starts them.
	if snap.Phase == state.Preparation && snap.PhaseTimeRemaining == 0 {
		if r := h.match.StartRound(ctx, match.StartRoundCommand{RoundNumber: snap.CurrentRound}); !r.Success {
			h.logger.Debug("start round rejected", "round", snap.CurrentRound, "code", r.Code)
		}
	}

	if h.combat != nil {
		for _, rep := range h.combat.Step(dt, h.buildings(ctx)) {
			var r match.EnemyReportResult
			if rep.Outcome == combat.Defeated {
				r = h.match.ReportEnemyDefeated(ctx, match.ReportEnemyDefeatedCommand{EnemyType: rep.EnemyType})
			} else {
				r = h.match.ReportEnemyLeaked(ctx, match.ReportEnemyLeakedCommand{EnemyType: rep.EnemyType})
			}
			if !r.Success {
				h.logger.Debug("enemy report rejected", "enemy", rep.EnemyType, "code", r.Code)
			}
		}
	}
	return placed, failed
}

func (h *Harness) snapshot(ctx context.Context) state.Snapshot {
	return h.match.GameState(ctx).Data
}

func (h *Harness) buildings(ctx context.Context) []placement.Building {
	return h.match.Buildings(ctx).Data
}

func progressOf(s state.Snapshot) Progress {
	return Progress{
		Tick:             s.Tick,
		Round:            s.CurrentRound,
		CurrentWave:      s.WaveIndex,
		Phase:            s.Phase,
		CurrentGold:      s.Money,
		RemainingLives:   s.Lives,
		EnemiesRemaining: s.EnemiesRemaining,
	}
}
