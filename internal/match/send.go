package match

import (
	"context"

	"github.com/vovakirdan/towerdefense/internal/mediator"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/progression"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// The methods below are typed shorthands for mediator.Send.

func (m *Match) PlaceBuilding(ctx context.Context, c PlaceBuildingCommand) PlaceBuildingResult {
	return mediator.Send[PlaceBuildingCommand, placement.PlacedBuilding](ctx, m.med, c)
}

func (m *Match) StartRound(ctx context.Context, c StartRoundCommand) StartRoundResult {
	return mediator.Send[StartRoundCommand, progression.RoundStarted](ctx, m.med, c)
}

func (m *Match) StartWave(ctx context.Context, c StartWaveCommand) StartWaveResult {
	return mediator.Send[StartWaveCommand, progression.WaveStarted](ctx, m.med, c)
}

func (m *Match) SpendMoney(ctx context.Context, c SpendMoneyCommand) MoneyResult {
	return mediator.Send[SpendMoneyCommand, Balance](ctx, m.med, c)
}

func (m *Match) EarnMoney(ctx context.Context, c EarnMoneyCommand) MoneyResult {
	return mediator.Send[EarnMoneyCommand, Balance](ctx, m.med, c)
}

func (m *Match) RemoveBuilding(ctx context.Context, c RemoveBuildingCommand) RemoveBuildingResult {
	return mediator.Send[RemoveBuildingCommand, placement.RemovedBuilding](ctx, m.med, c)
}

func (m *Match) AdvanceTime(ctx context.Context, c AdvanceTimeCommand) AdvanceTimeResult {
	return mediator.Send[AdvanceTimeCommand, progression.TickReport](ctx, m.med, c)
}

func (m *Match) ReportEnemyDefeated(ctx context.Context, c ReportEnemyDefeatedCommand) EnemyReportResult {
	return mediator.Send[ReportEnemyDefeatedCommand, progression.EnemyResolved](ctx, m.med, c)
}

func (m *Match) ReportEnemyLeaked(ctx context.Context, c ReportEnemyLeakedCommand) EnemyReportResult {
	return mediator.Send[ReportEnemyLeakedCommand, progression.EnemyResolved](ctx, m.med, c)
}

func (m *Match) Reset(ctx context.Context) GameStateResult {
	return mediator.Send[ResetMatchCommand, state.Snapshot](ctx, m.med, ResetMatchCommand{})
}

func (m *Match) GameState(ctx context.Context) GameStateResult {
	return mediator.Send[GetGameStateQuery, state.Snapshot](ctx, m.med, GetGameStateQuery{})
}

func (m *Match) Buildings(ctx context.Context) BuildingsResult {
	return mediator.Send[GetBuildingsQuery, []placement.Building](ctx, m.med, GetBuildingsQuery{})
}

func (m *Match) WaveInfo(ctx context.Context) WaveInfoResult {
	return mediator.Send[GetWaveInfoQuery, progression.WaveInfo](ctx, m.med, GetWaveInfoQuery{})
}
