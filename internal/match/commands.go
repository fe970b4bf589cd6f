package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/towerdefense/internal/core"
)

// PlaceBuildingCommand buys a building at a position.
type PlaceBuildingCommand struct {
	BuildingType string   `json:"building_type"`
	Position     core.Vec `json:"position"`
	PlayerID     string   `json:"player_id,omitempty"`
}

// NewPlaceBuildingCommand returns a validated command.
func NewPlaceBuildingCommand(buildingType string, pos core.Vec, playerID string) (PlaceBuildingCommand, error) {
	c := PlaceBuildingCommand{BuildingType: buildingType, Position: pos, PlayerID: playerID}
	return c, c.Validate()
}

func (c PlaceBuildingCommand) Validate() error {
	if c.BuildingType == "" {
		return errors.New("building type is required")
	}
	if !c.Position.IsFinite() {
		return fmt.Errorf("position %v is not finite", c.Position)
	}
	return nil
}

// StartRoundCommand starts a round. ForceStart allows it outside
// Preparation.
type StartRoundCommand struct {
	RoundNumber int  `json:"round_number"`
	ForceStart  bool `json:"force_start"`
}

func NewStartRoundCommand(roundNumber int, forceStart bool) (StartRoundCommand, error) {
	c := StartRoundCommand{RoundNumber: roundNumber, ForceStart: forceStart}
	return c, c.Validate()
}

func (c StartRoundCommand) Validate() error {
	if c.RoundNumber < 1 {
		return fmt.Errorf("round number must be at least 1, got %d", c.RoundNumber)
	}
	return nil
}

// StartWaveCommand starts the next wave of the current round.
type StartWaveCommand struct {
	WaveIndex    int  `json:"wave_index"`
	IsRoundBased bool `json:"is_round_based"`
}

func NewStartWaveCommand(waveIndex int, isRoundBased bool) (StartWaveCommand, error) {
	c := StartWaveCommand{WaveIndex: waveIndex, IsRoundBased: isRoundBased}
	return c, c.Validate()
}

func (c StartWaveCommand) Validate() error {
	if c.WaveIndex < 0 {
		return fmt.Errorf("wave index must be non-negative, got %d", c.WaveIndex)
	}
	return nil
}

// SpendMoneyCommand debits the ledger. Negative amounts reach the ledger,
// which rejects them as insufficient funds.
type SpendMoneyCommand struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// EarnMoneyCommand credits the ledger. Negative amounts fail with
// INVALID_AMOUNT.
type EarnMoneyCommand struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// RemoveBuildingCommand sells a building during Preparation.
type RemoveBuildingCommand struct {
	BuildingID int `json:"building_id"`
}

func (c RemoveBuildingCommand) Validate() error {
	if c.BuildingID < 1 {
		return fmt.Errorf("building id must be positive, got %d", c.BuildingID)
	}
	return nil
}

// AdvanceTimeCommand moves the match clock by one tick of Delta seconds.
type AdvanceTimeCommand struct {
	Delta float64 `json:"delta"`
}

func (c AdvanceTimeCommand) Validate() error {
	if math.IsNaN(c.Delta) || math.IsInf(c.Delta, 0) || c.Delta < 0 {
		return fmt.Errorf("delta must be a non-negative number, got %v", c.Delta)
	}
	return nil
}

// ReportEnemyDefeatedCommand is sent by the combat model for each kill.
type ReportEnemyDefeatedCommand struct {
	EnemyType string `json:"enemy_type"`
}

func (c ReportEnemyDefeatedCommand) Validate() error {
	if c.EnemyType == "" {
		return errors.New("enemy type is required")
	}
	return nil
}

// ReportEnemyLeakedCommand is sent by the combat model for each enemy that
// reached the exit.
type ReportEnemyLeakedCommand struct {
	EnemyType string `json:"enemy_type"`
}

func (c ReportEnemyLeakedCommand) Validate() error {
	if c.EnemyType == "" {
		return errors.New("enemy type is required")
	}
	return nil
}

// ResetMatchCommand restores the match to its initial state.
type ResetMatchCommand struct{}

// GetGameStateQuery returns the canonical state projection.
type GetGameStateQuery struct{}

// GetBuildingsQuery lists placed buildings.
type GetBuildingsQuery struct{}

// GetWaveInfoQuery describes the current round's waves.
type GetWaveInfoQuery struct{}
