package strategy

import (
	"testing"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/state"
)

func testBuildings(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.BuildingDef{
			{Type: "dart", Category: "damage", Cost: 50},
			{Type: "basic_tower", Category: "damage", Cost: 100},
			{Type: "cannon", Category: "damage", Cost: 250},
			{Type: "frost", Category: "control", Cost: 120},
		},
		[]catalog.EnemyDef{{Type: "e", Health: 1}},
		[]catalog.RoundDefinition{{Number: 1, Waves: []catalog.WaveDefinition{{
			EnemyGroups: []catalog.EnemyGroup{{EnemyType: "e", Count: 1}},
		}}}},
	)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	return c
}

func snap(round, money, lives int, phase state.Phase) state.Snapshot {
	return state.Snapshot{CurrentRound: round, Money: money, Lives: lives, Phase: phase, IsGameActive: true}
}

func types(cmds []match.PlaceBuildingCommand) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.BuildingType
	}
	return out
}

func TestInitialWave(t *testing.T) {
	e, err := New(Config{InitialWave: InitialWave{
		Category:           "damage",
		Positions:          []core.Vec{core.V(1.5, 1.5), core.V(2.5, 1.5), core.V(1.2, 1.8)},
		MaxCostPerBuilding: 200,
	}}, testBuildings(t), "basic_tower")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cmds := e.NextActions(snap(1, 500, 10, state.Preparation), nil)
	// The third position shares a cell with the first.
	if len(cmds) != 2 {
		t.Fatalf("Expected 2 commands, got %+v", cmds)
	}
	for _, c := range cmds {
		if c.BuildingType != "basic_tower" || c.PlayerID != PlayerID {
			t.Errorf("Expected basic_tower by %s, got %+v", PlayerID, c)
		}
	}
	if again := e.NextActions(snap(1, 500, 10, state.Preparation), nil); len(again) != 0 {
		t.Errorf("Expected initial wave emitted once, got %+v", again)
	}
}

func TestUpgradesInThresholdOrder(t *testing.T) {
	cfg := Config{WaveUpgrades: map[string]Upgrade{
		"round_2":   {Category: "damage", CostThreshold: 300, Position: core.V(4.5, 1.5)},
		"wave_2":    {Category: "control", CostThreshold: 120, Position: core.V(5.5, 1.5)},
		"3":         {Category: "damage", CostThreshold: 10, Position: core.V(6.5, 1.5)},
		"round_2_b": {Category: "damage", CostThreshold: 120, Position: core.V(7.5, 1.5)},
	}}
	e, err := New(cfg, testBuildings(t), "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cmds := e.NextActions(snap(1, 1000, 10, state.Preparation), nil); len(cmds) != 0 {
		t.Fatalf("Expected nothing unlocked in round 1, got %+v", cmds)
	}

	s := snap(2, 130, 10, state.Preparation)
	first := e.NextActions(s, nil)
	// round_2_b and wave_2 tie at 120; keys order round_2_b first.
	if len(first) != 1 || first[0].Position != core.V(7.5, 1.5) || first[0].BuildingType != "basic_tower" {
		t.Fatalf("Expected basic_tower at round_2_b, got %+v", first)
	}
	second := e.NextActions(s, nil)
	if len(second) != 1 || second[0].BuildingType != "frost" {
		t.Fatalf("Expected frost for wave_2, got %+v", second)
	}
	if third := e.NextActions(s, nil); len(third) != 0 {
		t.Errorf("Expected round_2 to wait for 300, got %+v", third)
	}
	if rich := e.NextActions(snap(2, 300, 10, state.WaveActive), nil); len(rich) != 1 || rich[0].BuildingType != "cannon" {
		t.Errorf("Expected cannon once 300 is available, got %+v", rich)
	}
}

func TestUpgradeSkipsOccupiedPosition(t *testing.T) {
	cfg := Config{WaveUpgrades: map[string]Upgrade{
		"round_1": {Category: "damage", CostThreshold: 0, Position: core.V(3.5, 3.5)},
	}}
	e, _ := New(cfg, testBuildings(t), "")
	placed := []placement.Building{{ID: 1, Position: core.V(3.1, 3.9)}}

	if cmds := e.NextActions(snap(1, 500, 10, state.WaveActive), placed); len(cmds) != 0 {
		t.Errorf("Expected occupied position to be skipped, got %+v", cmds)
	}
}

func TestFallbackChain(t *testing.T) {
	pending := map[string]Upgrade{
		"round_1": {Category: "damage", CostThreshold: 1000, Position: core.V(2.5, 2.5)},
	}
	tests := []struct {
		name     string
		fallback Fallback
		money    int
		lives    int
		want     []string
	}{
		{"default type", Fallback{UseDefaultType: true, UseCheapestType: true}, 150, 10, []string{"basic_tower"}},
		{"cheapest when default unaffordable", Fallback{UseDefaultType: true, UseCheapestType: true}, 90, 10, []string{"dart"}},
		{"reserve blocks cheapest", Fallback{UseCheapestType: true}, 70, 10, []string{}},
		{"emergency ignores reserve", Fallback{UseCheapestType: true, EmergencyFallback: true}, 70, 2, []string{"dart"}},
		{"emergency needs low lives", Fallback{EmergencyFallback: true}, 70, 5, []string{}},
		{"nothing enabled", Fallback{}, 1000 - 1, 1, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(Config{
				WaveUpgrades: pending,
				Fallback:     tt.fallback,
				CostThresholds: map[string]int{
					ThresholdReserve:        30,
					ThresholdEmergencyLives: 3,
				},
			}, testBuildings(t), "basic_tower")
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			got := types(e.NextActions(snap(1, tt.money, tt.lives, state.WaveActive), nil))
			if len(got) != len(tt.want) || (len(got) == 1 && got[0] != tt.want[0]) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFallbackPrefersOverduePosition(t *testing.T) {
	overdue, planned := core.V(2.5, 2.5), core.V(3.5, 3.5)
	e, err := New(Config{
		WaveUpgrades: map[string]Upgrade{
			"round_1": {Category: "damage", CostThreshold: 1000, Position: overdue},
			"round_2": {Category: "damage", CostThreshold: 900, Position: planned},
		},
		Fallback: Fallback{UseDefaultType: true},
	}, testBuildings(t), "basic_tower")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cmds := e.NextActions(snap(2, 150, 10, state.WaveActive), nil)
	if len(cmds) != 1 || cmds[0].BuildingType != "basic_tower" || cmds[0].Position != overdue {
		t.Fatalf("Expected basic_tower at %v, got %+v", overdue, cmds)
	}

	cmds = e.NextActions(snap(2, 1000, 10, state.WaveActive), nil)
	if len(cmds) != 1 || cmds[0].BuildingType != "cannon" || cmds[0].Position != planned {
		t.Fatalf("Expected cannon at %v, got %+v", planned, cmds)
	}

	// Both keys are applied now.
	if cmds := e.NextActions(snap(2, 1000, 10, state.WaveActive), nil); len(cmds) != 0 {
		t.Errorf("Expected no further commands, got %+v", cmds)
	}
}

func TestInactiveMatchEmitsNothing(t *testing.T) {
	e, _ := New(Config{InitialWave: InitialWave{Positions: []core.Vec{core.V(1, 1)}, MaxCostPerBuilding: 500}}, testBuildings(t), "")
	s := snap(1, 500, 0, state.Preparation)
	s.IsGameActive = false
	if cmds := e.NextActions(s, nil); len(cmds) != 0 {
		t.Errorf("Expected no commands after the match ended, got %+v", cmds)
	}
}

func TestResetReplaysPlan(t *testing.T) {
	e, _ := New(Config{InitialWave: InitialWave{Positions: []core.Vec{core.V(1, 1)}, MaxCostPerBuilding: 500}}, testBuildings(t), "")
	s := snap(1, 500, 10, state.Preparation)
	e.NextActions(s, nil)
	e.Reset()
	if cmds := e.NextActions(s, nil); len(cmds) != 1 {
		t.Errorf("Expected initial wave again after reset, got %+v", cmds)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := Config{
		InitialWave:    InitialWave{MaxCostPerBuilding: -1},
		WaveUpgrades:   map[string]Upgrade{"later": {}},
		CostThresholds: map[string]int{ThresholdReserve: -5},
	}
	if err := bad.Validate(); err == nil {
		t.Error("Expected validation error")
	}
}

func TestParseUpgradeKey(t *testing.T) {
	tests := map[string]int{"round_3": 3, "wave_2": 2, "4": 4, "round_5_left": 5}
	for key, want := range tests {
		got, err := ParseUpgradeKey(key)
		if err != nil || got != want {
			t.Errorf("Expected %s -> %d, got %d (%v)", key, want, got, err)
		}
	}
	for _, key := range []string{"", "round_", "round_0", "boss"} {
		if _, err := ParseUpgradeKey(key); err == nil {
			t.Errorf("Expected error for %q", key)
		}
	}
}
