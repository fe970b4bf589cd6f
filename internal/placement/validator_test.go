package placement

import (
	"context"
	"testing"

	"github.com/vovakirdan/towerdefense/internal/board"
	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/economy"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/state"
)

type fixture struct {
	v        *Validator
	st       *state.GameState
	registry *Registry
	events   *event.Recorder
}

func newFixture(t *testing.T, money int) fixture {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.BuildingDef{{Type: "basic_tower", Category: "damage", Cost: 100, Damage: 5, FireRate: 1, Range: 2}},
		[]catalog.EnemyDef{{Type: "basic_enemy", Health: 10}},
		[]catalog.RoundDefinition{{Number: 1, Waves: []catalog.WaveDefinition{{
			EnemyGroups: []catalog.EnemyGroup{{EnemyType: "basic_enemy", Count: 1}},
		}}}},
	)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	grid, err := board.New(board.Config{
		Width: 10, Height: 8, AbyssBuffer: 1,
		Path: []core.Cell{{X: 0, Y: 4}, {X: 9, Y: 4}},
	})
	if err != nil {
		t.Fatalf("board.New failed: %v", err)
	}

	st := state.New(money, 10, 1, 0)
	bus := event.NewBus()
	rec := &event.Recorder{}
	bus.Subscribe(rec)
	reg := NewRegistry()
	v := NewValidator(Deps{
		Buildings: cat,
		Bounds:    grid,
		Ledger:    economy.NewLedger(st, bus, nil),
		Registry:  reg,
		State:     st,
		Publisher: bus,
	})
	return fixture{v: v, st: st, registry: reg, events: rec}
}

var validPos = core.V(3.5, 2.5)

func TestPlaceBuildingSuccess(t *testing.T) {
	f := newFixture(t, 500)

	r, err := f.v.PlaceBuilding(context.Background(), "basic_tower", validPos, "p1")
	if err != nil {
		t.Fatalf("PlaceBuilding failed: %v", err)
	}
	if !r.Success || r.Data.CostPaid != 100 || r.Data.BuildingID != 1 {
		t.Fatalf("Expected success costing 100 with id 1, got %+v", r)
	}
	if f.st.Money != 400 {
		t.Errorf("Expected money 400, got %d", f.st.Money)
	}
	b, ok := f.registry.Get(1)
	if !ok || b.PlayerID != "p1" || b.Round != 1 {
		t.Errorf("Expected registered building for p1 in round 1, got %+v", b)
	}
	types := f.events.Types()
	if len(types) != 2 || types[0] != event.TypeMoneyChanged || types[1] != event.TypeBuildingPlaced {
		t.Errorf("Expected MoneyChanged then BuildingPlaced, got %v", types)
	}
}

func TestPlaceBuildingFailuresLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		money int
		btype string
		pos   core.Vec
		code  apperrors.Code
	}{
		{"insufficient funds", 50, "basic_tower", validPos, apperrors.CodeInsufficientFunds},
		{"unknown type", 500, "laser", validPos, apperrors.CodeUnknownBuildingType},
		{"unknown type wins over position", 0, "laser", core.V(-1, -1), apperrors.CodeUnknownBuildingType},
		{"outside map", 500, "basic_tower", core.V(20, 2), apperrors.CodeInvalidPosition},
		{"abyss", 500, "basic_tower", core.V(0.5, 2.5), apperrors.CodeInvalidPosition},
		{"on path", 500, "basic_tower", core.V(4.5, 4.5), apperrors.CodeInvalidPosition},
		{"position wins over funds", 0, "basic_tower", core.V(4.5, 4.5), apperrors.CodeInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.money)
			before := f.st.Snapshot()

			r, err := f.v.PlaceBuilding(context.Background(), tt.btype, tt.pos, "")
			if err != nil {
				t.Fatalf("PlaceBuilding failed: %v", err)
			}
			if r.Success || r.Code != tt.code {
				t.Fatalf("Expected %s, got %+v", tt.code, r)
			}
			if f.st.Snapshot() != before {
				t.Errorf("Expected state unchanged, got %+v", f.st.Snapshot())
			}
			if f.registry.Len() != 0 || len(f.events.Events) != 0 {
				t.Errorf("Expected no buildings and no events, got %d and %v", f.registry.Len(), f.events.Types())
			}
		})
	}
}

func TestPlaceBuildingOccupied(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()

	if r, _ := f.v.PlaceBuilding(ctx, "basic_tower", validPos, ""); !r.Success {
		t.Fatalf("First placement failed: %+v", r)
	}
	// Same cell, different point.
	r, _ := f.v.PlaceBuilding(ctx, "basic_tower", core.V(3.1, 2.9), "")
	if r.Code != apperrors.CodeInvalidPosition {
		t.Errorf("Expected INVALID_POSITION for occupied cell, got %+v", r)
	}
	if f.st.Money != 400 {
		t.Errorf("Expected money 400, got %d", f.st.Money)
	}
}

func TestPlaceBuildingCancelledContext(t *testing.T) {
	f := newFixture(t, 500)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.v.PlaceBuilding(ctx, "basic_tower", validPos, ""); err == nil {
		t.Error("Expected context error")
	}
	if f.st.Money != 500 {
		t.Errorf("Expected money 500, got %d", f.st.Money)
	}
}

func TestRemoveBuildingRefund(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	placed, _ := f.v.PlaceBuilding(ctx, "basic_tower", validPos, "")

	r, err := f.v.RemoveBuilding(ctx, placed.Data.BuildingID, 75)
	if err != nil {
		t.Fatalf("RemoveBuilding failed: %v", err)
	}
	if !r.Success || r.Data.Refund != 75 {
		t.Fatalf("Expected refund 75, got %+v", r)
	}
	if f.st.Money != 475 {
		t.Errorf("Expected money 475, got %d", f.st.Money)
	}
	if f.registry.IsOccupied(validPos) {
		t.Error("Expected cell to be free after removal")
	}

	again, _ := f.v.RemoveBuilding(ctx, placed.Data.BuildingID, 75)
	if again.Code != apperrors.CodeBuildingNotFound {
		t.Errorf("Expected BUILDING_NOT_FOUND, got %+v", again)
	}
}

func TestRegistryIDsAreMonotonic(t *testing.T) {
	r := NewRegistry()
	a := r.Add(Building{Position: core.V(1, 1)})
	b := r.Add(Building{Position: core.V(2, 2)})
	r.Remove(a.ID)
	c := r.Add(Building{Position: core.V(1, 1)})

	if a.ID != 1 || b.ID != 2 || c.ID != 3 {
		t.Errorf("Expected ids 1,2,3, got %d,%d,%d", a.ID, b.ID, c.ID)
	}
	all := r.All()
	if len(all) != 2 || all[0].ID != 2 || all[1].ID != 3 {
		t.Errorf("Expected ids [2 3], got %+v", all)
	}

	r.Reset()
	if d := r.Add(Building{}); d.ID != 1 {
		t.Errorf("Expected id 1 after reset, got %d", d.ID)
	}
}
