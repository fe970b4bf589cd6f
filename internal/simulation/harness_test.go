package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/vovakirdan/towerdefense/internal/board"
	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/combat"
	"github.com/vovakirdan/towerdefense/internal/core"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/state"
	"github.com/vovakirdan/towerdefense/internal/strategy"
)

type setup struct {
	lives     int
	positions []core.Vec
	seed      int64
	variance  float64
}

func newHarness(t *testing.T, s setup, opts Options) (*Harness, *match.Match) {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.BuildingDef{{Type: "basic_tower", Category: "damage", Cost: 100, Damage: 10, FireRate: 2, Range: 2.5}},
		[]catalog.EnemyDef{{Type: "grunt", Health: 20, Speed: 2, Bounty: 10, Points: 5, Damage: 1}},
		[]catalog.RoundDefinition{
			{Number: 1, Waves: []catalog.WaveDefinition{{
				Name: "scouts", PreWaveDelay: 0.5, PostWaveDelay: 0.5, BonusMoney: 20,
				EnemyGroups: []catalog.EnemyGroup{{EnemyType: "grunt", Count: 3, SpawnInterval: 0.5}},
			}}},
			{Number: 2, Waves: []catalog.WaveDefinition{{
				Name: "pack", BonusMoney: 40,
				EnemyGroups: []catalog.EnemyGroup{{EnemyType: "grunt", Count: 4, SpawnInterval: 0.5}},
			}}},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	grid, err := board.New(board.Config{
		Width: 12, Height: 7, AbyssBuffer: 1,
		Path: []core.Cell{{X: 0, Y: 3}, {X: 11, Y: 3}},
	})
	if err != nil {
		t.Fatalf("board.New failed: %v", err)
	}
	m, err := match.New(match.Deps{
		Catalog: cat,
		Board:   grid,
		Rules: match.Rules{
			StartingMoney:   300,
			StartingLives:   s.lives,
			PreparationTime: 1,
			WaveClearScore:  50,
		},
	})
	if err != nil {
		t.Fatalf("match.New failed: %v", err)
	}

	fight := combat.New(grid, cat, cat, combat.Config{Seed: s.seed, Variance: s.variance})
	m.Bus().Subscribe(fight)

	var strat Strategy
	if len(s.positions) > 0 {
		e, err := strategy.New(strategy.Config{InitialWave: strategy.InitialWave{
			Category:           "damage",
			Positions:          s.positions,
			MaxCostPerBuilding: 100,
		}}, cat, "basic_tower")
		if err != nil {
			t.Fatalf("strategy.New failed: %v", err)
		}
		strat = e
	}

	h, err := New(m, strat, fight, opts, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return h, m
}

var defence = []core.Vec{core.V(3.5, 2.5), core.V(6.5, 4.5), core.V(9.5, 2.5)}

func TestRunVictory(t *testing.T) {
	h, _ := newHarness(t, setup{lives: 10, positions: defence, seed: 1}, DefaultOptions())

	res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Success || !res.IsVictory || res.Outcome != OutcomeVictory {
		t.Fatalf("Expected victory, got %+v", res)
	}
	if res.FinalLives <= 0 || res.Duration <= 0 || res.FinalRound != 2 {
		t.Errorf("Expected lives left after 2 rounds, got %+v", res)
	}
	if res.BuildingsPlaced != 3 || res.FailedPlacements != 0 {
		t.Errorf("Expected 3 buildings placed, got %d (%d failed)", res.BuildingsPlaced, res.FailedPlacements)
	}
	want := CreateSuccess(res.FinalMoney, res.FinalLives, res.Duration)
	if res.Success != want.Success || res.Outcome != want.Outcome || res.Code != "" {
		t.Errorf("Expected CreateSuccess shape, got %+v", res)
	}
}

func TestRunGameOver(t *testing.T) {
	h, m := newHarness(t, setup{lives: 2, seed: 1}, DefaultOptions())

	res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Success || res.Outcome != OutcomeGameOver || res.FinalLives != 0 {
		t.Fatalf("Expected game over with no lives, got %+v", res)
	}
	s := m.GameState(context.Background()).Data
	if s.Phase != state.GameOver || s.IsGameActive {
		t.Errorf("Expected inactive GameOver state, got %+v", s)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	encode := func() []byte {
		h, _ := newHarness(t, setup{lives: 10, positions: defence[:2], seed: 99, variance: 0.4}, DefaultOptions())
		res, err := h.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		b, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return b
	}

	first, second := encode(), encode()
	if !bytes.Equal(first, second) {
		t.Errorf("Expected identical results:\n%s\n%s", first, second)
	}
}

func TestRunMaxTicks(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTicks = 5
	h, _ := newHarness(t, setup{lives: 10, seed: 1}, opts)

	res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Success || res.Outcome != OutcomeMaxTicks || res.Code != apperrors.CodeSimulationAborted {
		t.Fatalf("Expected max_ticks abort, got %+v", res)
	}
	if res.Ticks != 5 || res.Reason != "max_ticks" {
		t.Errorf("Expected 5 ticks with reason max_ticks, got %+v", res)
	}
}

func TestRunCancelled(t *testing.T) {
	h, _ := newHarness(t, setup{lives: 10, seed: 1}, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := h.Run(ctx)
	if !apperrors.IsCode(err, apperrors.CodeSimulationAborted) {
		t.Fatalf("Expected SIMULATION_ABORTED error, got %v", err)
	}
	if res.Outcome != OutcomeCancelled || res.Success {
		t.Errorf("Expected cancelled outcome, got %+v", res)
	}
}

func TestRunSamplesProgress(t *testing.T) {
	var samples []Progress
	opts := DefaultOptions()
	opts.MaxTicks = 10
	opts.ProgressEvery = 2
	opts.OnProgress = func(p Progress) { samples = append(samples, p) }
	h, _ := newHarness(t, setup{lives: 10, seed: 1}, opts)

	if _, err := h.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("Expected 5 samples, got %d", len(samples))
	}
	for i, p := range samples {
		if p.Tick != 2*(i+1) {
			t.Errorf("Expected sample %d at tick %d, got %d", i, 2*(i+1), p.Tick)
		}
		if p.CurrentGold != 300 || p.RemainingLives != 10 {
			t.Errorf("Expected untouched economy early on, got %+v", p)
		}
	}
}

func TestRunCountsRejectedPlacements(t *testing.T) {
	onPath := []core.Vec{core.V(4.5, 3.5), core.V(3.5, 2.5)}
	h, _ := newHarness(t, setup{lives: 10, positions: onPath, seed: 1}, DefaultOptions())

	res, _ := h.Run(context.Background())
	if res.FailedPlacements != 1 || res.BuildingsPlaced != 1 {
		t.Errorf("Expected 1 placed and 1 rejected, got %d and %d", res.BuildingsPlaced, res.FailedPlacements)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(nil, nil, nil, DefaultOptions(), nil); err == nil {
		t.Error("Expected error without match")
	}
	_, m := newHarness(t, setup{lives: 1}, DefaultOptions())
	if _, err := New(m, nil, nil, Options{TickDuration: 0.1}, nil); err == nil {
		t.Error("Expected error without max ticks")
	}
	if _, err := New(m, nil, nil, Options{MaxTicks: 1}, nil); err == nil {
		t.Error("Expected error without tick duration")
	}
}

func TestStepAdvancesOneTick(t *testing.T) {
	h, m := newHarness(t, setup{lives: 10, positions: defence[:1], seed: 1}, DefaultOptions())
	ctx := context.Background()

	s := h.Step(ctx)
	if s.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", s.Tick)
	}
	if s.Money != 200 {
		t.Errorf("Expected one purchase on the first step, got money %d", s.Money)
	}
	if n := len(m.Buildings(ctx).Data); n != 1 {
		t.Errorf("Expected 1 building, got %d", n)
	}
}

func TestFromSnapshot(t *testing.T) {
	if _, done := FromSnapshot(state.Snapshot{Phase: state.WaveActive}); done {
		t.Error("Expected a running match to have no result")
	}

	res, done := FromSnapshot(state.Snapshot{Phase: state.Victory, Money: 120, Lives: 4, Score: 300, CurrentRound: 2, Tick: 50, Elapsed: 5})
	if !done || !res.IsVictory || res.Outcome != OutcomeVictory {
		t.Fatalf("Expected victory, got %+v", res)
	}
	if res.FinalMoney != 120 || res.FinalLives != 4 || res.Score != 300 || res.FinalRound != 2 || res.Ticks != 50 || res.Duration != 5 {
		t.Errorf("Expected totals copied from the snapshot, got %+v", res)
	}

	res, done = FromSnapshot(state.Snapshot{Phase: state.GameOver})
	if !done || res.Success || res.Outcome != OutcomeGameOver {
		t.Errorf("Expected game over, got %+v", res)
	}
}
