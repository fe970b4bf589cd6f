package catalog

import (
	"strings"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]BuildingDef{
			{Type: "cannon", Category: "damage", Cost: 250, Damage: 40, FireRate: 0.5, Range: 2},
			{Type: "basic_tower", Category: "damage", Cost: 100, Damage: 10, FireRate: 1, Range: 3},
			{Type: "slow_tower", Category: "control", Cost: 80, Damage: 2, FireRate: 2, Range: 2},
		},
		[]EnemyDef{{Type: "basic_enemy", Health: 20, Speed: 1, Bounty: 5, Points: 10, Damage: 1}},
		[]RoundDefinition{{Number: 1, Waves: []WaveDefinition{{
			Name:        "opening",
			EnemyGroups: []EnemyGroup{{EnemyType: "basic_enemy", Count: 3}, {EnemyType: "basic_enemy", Count: 2}},
		}}}},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestBuildingTypesSortedByCost(t *testing.T) {
	c := testCatalog(t)
	got := c.BuildingTypes()
	want := []string{"slow_tower", "basic_tower", "cannon"}
	for i, b := range got {
		if b.Type != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestCheapestAndBest(t *testing.T) {
	c := testCatalog(t)

	if b, _ := Cheapest(c, ""); b.Type != "slow_tower" {
		t.Errorf("Expected cheapest slow_tower, got %s", b.Type)
	}
	if b, _ := Cheapest(c, "damage"); b.Type != "basic_tower" {
		t.Errorf("Expected cheapest damage basic_tower, got %s", b.Type)
	}
	if b, _ := Best(c, "damage", 200); b.Type != "basic_tower" {
		t.Errorf("Expected best damage under 200 basic_tower, got %s", b.Type)
	}
	if b, _ := Best(c, "damage", 300); b.Type != "cannon" {
		t.Errorf("Expected best damage under 300 cannon, got %s", b.Type)
	}
	if _, ok := Best(c, "damage", 50); ok {
		t.Error("Expected no damage building under 50")
	}
	if _, ok := Cheapest(c, "support"); ok {
		t.Error("Expected no support building")
	}
}

func TestRoundLookup(t *testing.T) {
	c := testCatalog(t)
	r, ok := c.Round(1)
	if !ok {
		t.Fatal("Expected round 1")
	}
	if r.Waves[0].TotalEnemies() != 5 {
		t.Errorf("Expected 5 enemies, got %d", r.Waves[0].TotalEnemies())
	}
	if _, ok := c.Round(0); ok {
		t.Error("Expected no round 0")
	}
	if _, ok := c.Round(2); ok {
		t.Error("Expected no round 2")
	}
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	_, err := New(
		[]BuildingDef{{Type: "a", Cost: -1}, {Type: "a", Cost: 1}},
		[]EnemyDef{{Type: "e", Health: 0}},
		[]RoundDefinition{{Number: 2, Waves: []WaveDefinition{{
			EnemyGroups: []EnemyGroup{{EnemyType: "ghost", Count: 1}},
		}}}},
	)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"negative cost", "defined twice", "health must be positive", "expected number 1", "unknown enemy"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got %v", want, err)
		}
	}
}

func TestRoundsAreCopied(t *testing.T) {
	rounds := []RoundDefinition{{Number: 1, Waves: []WaveDefinition{{
		EnemyGroups: []EnemyGroup{{EnemyType: "basic_enemy", Count: 1}},
	}}}}
	c, err := New(nil, []EnemyDef{{Type: "basic_enemy", Health: 1}}, rounds)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rounds[0].Waves[0].EnemyGroups[0].Count = 50
	r, _ := c.Round(1)
	if got := r.Waves[0].TotalEnemies(); got != 1 {
		t.Fatalf("Expected 1 enemy after changing the input, got %d", got)
	}

	r.Waves[0].EnemyGroups[0].Count = 99
	r.Waves = append(r.Waves, WaveDefinition{})
	again, _ := c.Round(1)
	if len(again.Waves) != 1 || again.Waves[0].TotalEnemies() != 1 {
		t.Errorf("Expected the stored round unchanged, got %+v", again)
	}
}
