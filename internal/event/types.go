package event

import (
	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/state"
)

const (
	TypePhaseChanged    Type = "PhaseChanged"
	TypeRoundStarted    Type = "RoundStarted"
	TypeWaveStarted     Type = "WaveStarted"
	TypeWaveCleared     Type = "WaveCleared"
	TypeEnemyDefeated   Type = "EnemyDefeated"
	TypeLivesLost       Type = "LivesLost"
	TypeBuildingPlaced  Type = "BuildingPlaced"
	TypeBuildingRemoved Type = "BuildingRemoved"
	TypeMoneyChanged    Type = "MoneyChanged"
	TypeMatchEnded      Type = "MatchEnded"
	TypeMatchReset      Type = "MatchReset"
)

// PhaseChanged is published on every phase transition.
type PhaseChanged struct {
	From  state.Phase
	To    state.Phase
	Round int
}

func (PhaseChanged) Type() Type { return TypePhaseChanged }

// RoundStarted is published when a round enters WaveActive.
type RoundStarted struct {
	Round int
	Waves int
}

func (RoundStarted) Type() Type { return TypeRoundStarted }

// WaveStarted carries the definition so spawners know what to release.
type WaveStarted struct {
	Round     int
	WaveIndex int
	Wave      catalog.WaveDefinition
}

func (WaveStarted) Type() Type { return TypeWaveStarted }

// WaveCleared is published once the last enemy of a wave is resolved.
type WaveCleared struct {
	Round     int
	WaveIndex int
	Bonus     int
}

func (WaveCleared) Type() Type { return TypeWaveCleared }

type EnemyDefeated struct {
	EnemyType string
	Bounty    int
	Points    int
}

func (EnemyDefeated) Type() Type { return TypeEnemyDefeated }

type LivesLost struct {
	EnemyType string
	Amount    int
	Remaining int
}

func (LivesLost) Type() Type { return TypeLivesLost }

type BuildingPlaced struct {
	BuildingID   int
	BuildingType string
	Position     core.Vec
	Cost         int
}

func (BuildingPlaced) Type() Type { return TypeBuildingPlaced }

type BuildingRemoved struct {
	BuildingID   int
	BuildingType string
	Position     core.Vec
	Refund       int
}

func (BuildingRemoved) Type() Type { return TypeBuildingRemoved }

// MoneyChanged reports a ledger movement; Delta is negative for spends.
type MoneyChanged struct {
	Delta   int
	Balance int
	Reason  string
}

func (MoneyChanged) Type() Type { return TypeMoneyChanged }

// MatchEnded is published when the match enters GameOver or Victory.
type MatchEnded struct {
	Victory bool
	Round   int
	Score   int
}

func (MatchEnded) Type() Type { return TypeMatchEnded }

// MatchReset is published after the match was restored to its start.
type MatchReset struct{}

func (MatchReset) Type() Type { return TypeMatchReset }
