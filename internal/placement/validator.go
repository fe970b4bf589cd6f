// Package placement validates and commits building placements.
package placement

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/economy"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/mediator"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// MapBounds answers map-legality questions for a position.
type MapBounds interface {
	IsWithinMapBounds(pos core.Vec) bool
	CanBuildAtPosition(pos core.Vec) bool
	IsInAbyssBufferZone(pos core.Vec) bool
	ClampToValidPosition(pos core.Vec) core.Vec
}

// PlacedBuilding is the payload of a successful placement.
type PlacedBuilding struct {
	BuildingID int      `json:"building_id"`
	CostPaid   int      `json:"cost_paid"`
	Type       string   `json:"type"`
	Position   core.Vec `json:"position"`
}

// Placed builds the success result of a placement.
func Placed(buildingID, costPaid int) mediator.Result[PlacedBuilding] {
	return mediator.OK(PlacedBuilding{BuildingID: buildingID, CostPaid: costPaid})
}

// RemovedBuilding is the payload of a successful removal.
type RemovedBuilding struct {
	BuildingID int `json:"building_id"`
	Refund     int `json:"refund"`
}

// Validator checks placements against the catalog, the map and the ledger
// and commits them to the registry.
type Validator struct {
	buildings catalog.Buildings
	bounds    MapBounds
	ledger    *economy.Ledger
	registry  *Registry
	st        *state.GameState
	pub       event.Publisher
	logger    *log.Logger
}

// Deps are the collaborators of a Validator.
type Deps struct {
	Buildings catalog.Buildings
	Bounds    MapBounds
	Ledger    *economy.Ledger
	Registry  *Registry
	State     *state.GameState
	Publisher event.Publisher
	Logger    *log.Logger
}

// NewValidator creates a validator.
func NewValidator(d Deps) *Validator {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	return &Validator{
		buildings: d.Buildings,
		bounds:    d.Bounds,
		ledger:    d.Ledger,
		registry:  d.Registry,
		st:        d.State,
		pub:       d.Publisher,
		logger:    d.Logger,
	}
}

// Check runs the catalog and position checks without spending.
// It returns the resolved definition on success.
func (v *Validator) Check(buildingType string, pos core.Vec) (catalog.BuildingDef, error) {
	def, ok := v.buildings.Building(buildingType)
	if !ok {
		return def, apperrors.Newf(apperrors.CodeUnknownBuildingType, "unknown building type %q", buildingType)
	}
	switch {
	case !v.bounds.IsWithinMapBounds(pos):
		return def, apperrors.Newf(apperrors.CodeInvalidPosition, "%v is outside the map", pos)
	case v.bounds.IsInAbyssBufferZone(pos):
		return def, apperrors.Newf(apperrors.CodeInvalidPosition, "%v is in the abyss buffer", pos)
	case !v.bounds.CanBuildAtPosition(pos):
		return def, apperrors.Newf(apperrors.CodeInvalidPosition, "cannot build at %v", pos)
	case v.registry.IsOccupied(pos):
		return def, apperrors.Newf(apperrors.CodeInvalidPosition, "%v is occupied", pos)
	}
	return def, nil
}

// PlaceBuilding validates and commits a placement. Checks run in order
// type, position, funds; the first failure is returned and nothing changes.
// The returned error is non-nil only when ctx is done.
func (v *Validator) PlaceBuilding(ctx context.Context, buildingType string, pos core.Vec, playerID string) (mediator.Result[PlacedBuilding], error) {
	if err := ctx.Err(); err != nil {
		return mediator.Result[PlacedBuilding]{}, err
	}

	def, err := v.Check(buildingType, pos)
	if err != nil {
		v.logger.Debug("placement rejected", "type", buildingType, "pos", pos, "code", apperrors.GetCode(err))
		return mediator.FromError[PlacedBuilding](err), nil
	}

	spent := v.ledger.Spend(def.Cost, "build "+def.Type)
	if !spent.Success {
		v.logger.Debug("placement unaffordable", "type", buildingType, "cost", def.Cost, "money", spent.RemainingMoney)
		return mediator.FromError[PlacedBuilding](economy.InsufficientFunds(def.Cost, spent.RemainingMoney)), nil
	}

	b := v.registry.Add(Building{
		Type:     def.Type,
		Position: pos,
		CostPaid: def.Cost,
		PlayerID: playerID,
		Round:    v.st.CurrentRound,
	})
	v.logger.Debug("building placed", "id", b.ID, "type", b.Type, "pos", pos, "cost", def.Cost)
	if v.pub != nil {
		v.pub.Publish(event.BuildingPlaced{BuildingID: b.ID, BuildingType: b.Type, Position: pos, Cost: def.Cost})
	}

	res := Placed(b.ID, def.Cost)
	res.Data.Type = b.Type
	res.Data.Position = pos
	return res, nil
}

// RemoveBuilding deletes a building and refunds refundPercent of its price.
func (v *Validator) RemoveBuilding(ctx context.Context, id, refundPercent int) (mediator.Result[RemovedBuilding], error) {
	if err := ctx.Err(); err != nil {
		return mediator.Result[RemovedBuilding]{}, err
	}
	b, ok := v.registry.Remove(id)
	if !ok {
		return mediator.Fail[RemovedBuilding](apperrors.CodeBuildingNotFound, fmt.Sprintf("building %d not found", id)), nil
	}
	refund := b.CostPaid * core.Clamp(refundPercent, 0, 100) / 100
	if err := v.ledger.Credit(refund, "sell "+b.Type); err != nil {
		return mediator.Result[RemovedBuilding]{}, err
	}
	if v.pub != nil {
		v.pub.Publish(event.BuildingRemoved{BuildingID: b.ID, BuildingType: b.Type, Position: b.Position, Refund: refund})
	}
	return mediator.OK(RemovedBuilding{BuildingID: b.ID, Refund: refund}), nil
}
