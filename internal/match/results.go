package match

import (
	"github.com/vovakirdan/towerdefense/internal/mediator"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/progression"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// Balance is the payload of money commands.
type Balance struct {
	Money int `json:"money"`
}

type (
	PlaceBuildingResult  = mediator.Result[placement.PlacedBuilding]
	StartRoundResult     = mediator.Result[progression.RoundStarted]
	StartWaveResult      = mediator.Result[progression.WaveStarted]
	MoneyResult          = mediator.Result[Balance]
	RemoveBuildingResult = mediator.Result[placement.RemovedBuilding]
	AdvanceTimeResult    = mediator.Result[progression.TickReport]
	EnemyReportResult    = mediator.Result[progression.EnemyResolved]
	GameStateResult      = mediator.Result[state.Snapshot]
	BuildingsResult      = mediator.Result[[]placement.Building]
	WaveInfoResult       = mediator.Result[progression.WaveInfo]
)
