package game

import (
	"context"
	"testing"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/simulation"
	"github.com/vovakirdan/towerdefense/internal/state"
	"github.com/vovakirdan/towerdefense/internal/strategy"
)

func loadDefaults(t *testing.T) (config.Scenario, strategy.Config) {
	t.Helper()
	sc, err := config.LoadScenario("")
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	plan, err := config.LoadStrategy("")
	if err != nil {
		t.Fatalf("LoadStrategy failed: %v", err)
	}
	return sc, plan
}

func TestNewWiresComponents(t *testing.T) {
	sc, plan := loadDefaults(t)

	seed := int64(42)
	g, err := New(sc, Options{Plan: &plan, Seed: &seed})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Runtime.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", g.Runtime.Seed)
	}
	if g.Strategy == nil || g.Combat == nil || g.Match == nil {
		t.Fatal("Expected all components to be built")
	}
	s := g.Match.GameState(context.Background()).Data
	if s.Money != sc.Rules.StartingMoney || s.TotalRounds != len(sc.Rounds) {
		t.Errorf("Expected scenario rules in state, got %+v", s)
	}
}

func TestNewRejectsBrokenScenario(t *testing.T) {
	sc, _ := loadDefaults(t)
	sc.Map.Path = sc.Map.Path[:1]

	if _, err := New(sc, Options{}); err == nil {
		t.Error("Expected error for a one-waypoint path")
	}
}

func TestCombatFollowsMatchEvents(t *testing.T) {
	sc, _ := loadDefaults(t)
	g, err := New(sc, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if r := g.Match.StartRound(ctx, match.StartRoundCommand{RoundNumber: 1}); !r.Success {
		t.Fatalf("StartRound failed: %v", r.Error)
	}
	// First wave starts after its pre-wave delay.
	for i := 0; i < 20 && g.Combat.Pending() == 0; i++ {
		g.Match.AdvanceTime(ctx, match.AdvanceTimeCommand{Delta: 0.1})
	}
	if g.Combat.Pending() != sc.Rounds[0].Waves[0].TotalEnemies() {
		t.Fatalf("Expected %d pending spawns, got %d", sc.Rounds[0].Waves[0].TotalEnemies(), g.Combat.Pending())
	}

	if err := g.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if g.Combat.Pending() != 0 || len(g.Combat.Enemies()) != 0 {
		t.Error("Expected reset to clear the battlefield")
	}
	if s := g.Match.GameState(ctx).Data; s.Phase != state.Preparation || s.CurrentRound != 1 {
		t.Errorf("Expected fresh preparation, got %+v", s)
	}
}

func TestSimulateReachesTerminalOutcome(t *testing.T) {
	sc, plan := loadDefaults(t)

	res, err := Simulate(context.Background(), sc, Options{Plan: &plan}, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if res.Outcome != simulation.OutcomeVictory && res.Outcome != simulation.OutcomeGameOver {
		t.Fatalf("Expected the match to resolve, got %+v", res)
	}
	if res.BuildingsPlaced < len(plan.InitialWave.Positions) {
		t.Errorf("Expected at least the initial wave to be placed, got %d", res.BuildingsPlaced)
	}
}

func TestZeroSeedOverridesScenario(t *testing.T) {
	sc, _ := loadDefaults(t)
	sc.Seed = 11

	g, err := New(sc, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Runtime.Seed != 11 {
		t.Errorf("Expected scenario seed 11 without a seed option, got %d", g.Runtime.Seed)
	}

	zero := int64(0)
	g, err = New(sc, Options{Seed: &zero})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Runtime.Seed != 0 {
		t.Errorf("Expected seed 0, got %d", g.Runtime.Seed)
	}
}

func TestSimulateSameSeedSameResult(t *testing.T) {
	sc, plan := loadDefaults(t)
	seed := int64(5)
	run := func() simulation.Result {
		res, err := Simulate(context.Background(), sc, Options{Plan: &plan, Seed: &seed}, nil)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("Expected equal results:\n%+v\n%+v", a, b)
	}
}

func TestSimulateAppliesOptions(t *testing.T) {
	sc, _ := loadDefaults(t)

	res, err := Simulate(context.Background(), sc, Options{}, func(o *simulation.Options) { o.MaxTicks = 3 })
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if res.Outcome != simulation.OutcomeMaxTicks || res.Ticks != 3 {
		t.Errorf("Expected abort after 3 ticks, got %+v", res)
	}
}

func TestSimulationOptionsUseTickRate(t *testing.T) {
	sc, _ := loadDefaults(t)
	g, err := New(sc, Options{TickRate: 20})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	opts := g.SimulationOptions()
	if opts.TickDuration != 0.05 {
		t.Errorf("Expected tick 0.05, got %v", opts.TickDuration)
	}
	if opts.MaxTicks != 72000 {
		t.Errorf("Expected 72000 ticks, got %d", opts.MaxTicks)
	}
}

func TestPlacementUsesBoard(t *testing.T) {
	sc, _ := loadDefaults(t)
	g, err := New(sc, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	onPath := g.Board.Waypoints()[1]
	r := g.Match.PlaceBuilding(ctx, match.PlaceBuildingCommand{BuildingType: "arrow_tower", Position: onPath})
	if r.Success {
		t.Error("Expected placement on the path to fail")
	}
	r = g.Match.PlaceBuilding(ctx, match.PlaceBuildingCommand{BuildingType: "arrow_tower", Position: core.V(5.5, 5.5)})
	if !r.Success {
		t.Errorf("Expected placement next to the path to succeed, got %v", r.Error)
	}
}
