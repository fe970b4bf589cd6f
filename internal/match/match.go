// Package match assembles the headless simulation core: game state,
// ledger, building registry, placement validator and round/wave state
// machine, all reachable only through a mediator.
package match

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/economy"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/mediator"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/progression"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// Rules are the scalar settings of a match.
type Rules struct {
	StartingMoney     int
	StartingLives     int
	PreparationTime   float64
	AutoStartRounds   bool
	SellRefundPercent int
	WaveClearScore    int
}

// Catalog is everything a match looks up by key.
type Catalog interface {
	catalog.Buildings
	catalog.Enemies
	catalog.Waves
}

// Deps are the injected collaborators of a match.
type Deps struct {
	Catalog Catalog
	Board   placement.MapBounds
	Bus     *event.Bus // optional; a private bus is created when nil
	Logger  *log.Logger
	Rules   Rules
}

// Match owns one game and its mediator.
type Match struct {
	med       *mediator.Mediator
	bus       *event.Bus
	st        *state.GameState
	ledger    *economy.Ledger
	registry  *placement.Registry
	validator *placement.Validator
	machine   *progression.Machine
	rules     Rules
	logger    *log.Logger
}

// New validates the dependencies and builds a match at round 1.
func New(d Deps) (*Match, error) {
	switch {
	case d.Catalog == nil:
		return nil, errors.New("match: catalog is required")
	case d.Board == nil:
		return nil, errors.New("match: board is required")
	case d.Rules.StartingMoney < 0:
		return nil, fmt.Errorf("match: starting money %d is negative", d.Rules.StartingMoney)
	case d.Rules.StartingLives < 1:
		return nil, fmt.Errorf("match: starting lives must be at least 1, got %d", d.Rules.StartingLives)
	case d.Rules.PreparationTime < 0:
		return nil, errors.New("match: preparation time is negative")
	case d.Catalog.RoundCount() == 0:
		return nil, errors.New("match: catalog has no rounds")
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Bus == nil {
		d.Bus = event.NewBus()
	}

	st := state.New(d.Rules.StartingMoney, d.Rules.StartingLives, d.Catalog.RoundCount(), d.Rules.PreparationTime)
	ledger := economy.NewLedger(st, d.Bus, d.Logger)
	registry := placement.NewRegistry()

	m := &Match{
		bus:      d.Bus,
		st:       st,
		ledger:   ledger,
		registry: registry,
		rules:    d.Rules,
		logger:   d.Logger,
		validator: placement.NewValidator(placement.Deps{
			Buildings: d.Catalog,
			Bounds:    d.Board,
			Ledger:    ledger,
			Registry:  registry,
			State:     st,
			Publisher: d.Bus,
			Logger:    d.Logger,
		}),
		machine: progression.New(progression.Deps{
			State:     st,
			Waves:     d.Catalog,
			Enemies:   d.Catalog,
			Ledger:    ledger,
			Publisher: d.Bus,
			Logger:    d.Logger,
		}, progression.Config{
			PreparationTime: d.Rules.PreparationTime,
			AutoStartRounds: d.Rules.AutoStartRounds,
			WaveClearScore:  d.Rules.WaveClearScore,
		}),
	}

	b := mediator.NewBuilder()
	m.register(b)
	m.med = b.Build(mediator.WithLogger(d.Logger))
	return m, nil
}

// Mediator returns the dispatcher every caller goes through.
func (m *Match) Mediator() *mediator.Mediator {
	return m.med
}

// Bus returns the event bus listeners subscribe to.
func (m *Match) Bus() *event.Bus {
	return m.bus
}

// Rules returns the scalar settings of the match.
func (m *Match) Rules() Rules {
	return m.rules
}

func (m *Match) register(b *mediator.Builder) {
	mediator.MustRegister(b, mediator.Command, m.handlePlaceBuilding)
	mediator.MustRegister(b, mediator.Command, m.handleStartRound)
	mediator.MustRegister(b, mediator.Command, m.handleStartWave)
	mediator.MustRegister(b, mediator.Command, m.handleSpendMoney)
	mediator.MustRegister(b, mediator.Command, m.handleEarnMoney)
	mediator.MustRegister(b, mediator.Command, m.handleRemoveBuilding)
	mediator.MustRegister(b, mediator.Command, m.handleAdvanceTime)
	mediator.MustRegister(b, mediator.Command, m.handleEnemyDefeated)
	mediator.MustRegister(b, mediator.Command, m.handleEnemyLeaked)
	mediator.MustRegister(b, mediator.Command, m.handleReset)
	mediator.MustRegister(b, mediator.Query, m.handleGetGameState)
	mediator.MustRegister(b, mediator.Query, m.handleGetBuildings)
	mediator.MustRegister(b, mediator.Query, m.handleGetWaveInfo)
}

// ended returns a MATCH_ALREADY_ENDED failure once the match is over.
func ended[T any](st *state.GameState) (mediator.Result[T], bool) {
	if st.CurrentPhase.IsTerminal() {
		return mediator.Fail[T](apperrors.CodeMatchAlreadyEnded,
			fmt.Sprintf("match ended in %s", st.CurrentPhase)), true
	}
	return mediator.Result[T]{}, false
}

func (m *Match) handlePlaceBuilding(ctx context.Context, c PlaceBuildingCommand) (PlaceBuildingResult, error) {
	if r, done := ended[placement.PlacedBuilding](m.st); done {
		return r, nil
	}
	return m.validator.PlaceBuilding(ctx, c.BuildingType, c.Position, c.PlayerID)
}

func (m *Match) handleStartRound(_ context.Context, c StartRoundCommand) (StartRoundResult, error) {
	return m.machine.StartRound(c.RoundNumber, c.ForceStart), nil
}

func (m *Match) handleStartWave(_ context.Context, c StartWaveCommand) (StartWaveResult, error) {
	return m.machine.StartWave(c.WaveIndex, c.IsRoundBased), nil
}

func (m *Match) handleSpendMoney(_ context.Context, c SpendMoneyCommand) (MoneyResult, error) {
	if r, done := ended[Balance](m.st); done {
		return r, nil
	}
	res := m.ledger.Spend(c.Amount, c.Reason)
	if !res.Success {
		return mediator.FailWith(res.Code, economy.InsufficientFunds(c.Amount, res.RemainingMoney).Error(),
			Balance{Money: res.RemainingMoney}), nil
	}
	return mediator.OK(Balance{Money: res.RemainingMoney}), nil
}

func (m *Match) handleEarnMoney(_ context.Context, c EarnMoneyCommand) (MoneyResult, error) {
	if r, done := ended[Balance](m.st); done {
		return r, nil
	}
	if err := m.ledger.Credit(c.Amount, c.Reason); err != nil {
		return mediator.FromError[Balance](err), nil
	}
	return mediator.OK(Balance{Money: m.ledger.Balance()}), nil
}

func (m *Match) handleRemoveBuilding(ctx context.Context, c RemoveBuildingCommand) (RemoveBuildingResult, error) {
	if r, done := ended[placement.RemovedBuilding](m.st); done {
		return r, nil
	}
	if m.st.CurrentPhase != state.Preparation {
		return mediator.Fail[placement.RemovedBuilding](apperrors.CodeInvalidPhase,
			fmt.Sprintf("buildings can only be removed during Preparation, not %s", m.st.CurrentPhase)), nil
	}
	return m.validator.RemoveBuilding(ctx, c.BuildingID, m.rules.SellRefundPercent)
}

func (m *Match) handleAdvanceTime(_ context.Context, c AdvanceTimeCommand) (AdvanceTimeResult, error) {
	return m.machine.Advance(c.Delta), nil
}

func (m *Match) handleEnemyDefeated(_ context.Context, c ReportEnemyDefeatedCommand) (EnemyReportResult, error) {
	return m.machine.EnemyDefeated(c.EnemyType), nil
}

func (m *Match) handleEnemyLeaked(_ context.Context, c ReportEnemyLeakedCommand) (EnemyReportResult, error) {
	return m.machine.EnemyLeaked(c.EnemyType), nil
}

func (m *Match) handleReset(_ context.Context, _ ResetMatchCommand) (GameStateResult, error) {
	m.st.Reset(m.rules.PreparationTime)
	m.ledger.Reset()
	m.registry.Reset()
	m.bus.Publish(event.MatchReset{})
	m.logger.Info("match reset")
	return mediator.OK(m.st.Snapshot()), nil
}

func (m *Match) handleGetGameState(_ context.Context, _ GetGameStateQuery) (GameStateResult, error) {
	return mediator.OK(m.st.Snapshot()), nil
}

func (m *Match) handleGetBuildings(_ context.Context, _ GetBuildingsQuery) (BuildingsResult, error) {
	return mediator.OK(m.registry.All()), nil
}

func (m *Match) handleGetWaveInfo(_ context.Context, _ GetWaveInfoQuery) (WaveInfoResult, error) {
	return mediator.OK(m.machine.WaveInfo()), nil
}
