// Package state holds the authoritative match state.
//
// GameState is single-writer: only handlers dispatched through the mediator
// mutate it. Everything outside the core sees Snapshot copies.
package state

// GameState is the mutable match record.
type GameState struct {
	Money              int
	Lives              int
	Score              int
	CurrentRound       int
	TotalRounds        int
	CurrentPhase       Phase
	PhaseTimeRemaining float64
	EnemiesRemaining   int
	IsGameActive       bool

	// WaveIndex is the next wave expected in the current round.
	WaveIndex      int
	WaveInProgress bool

	StartingMoney int
	StartingLives int
	Tick          int
	Elapsed       float64
}

// New creates a match at round 1 in Preparation.
func New(money, lives, totalRounds int, preparationTime float64) *GameState {
	s := &GameState{
		StartingMoney: money,
		StartingLives: lives,
		TotalRounds:   totalRounds,
	}
	s.Reset(preparationTime)
	return s
}

// Reset restores the initial values.
func (s *GameState) Reset(preparationTime float64) {
	*s = GameState{
		Money:              s.StartingMoney,
		Lives:              s.StartingLives,
		CurrentRound:       1,
		TotalRounds:        s.TotalRounds,
		CurrentPhase:       Preparation,
		PhaseTimeRemaining: max(preparationTime, 0),
		IsGameActive:       true,
		StartingMoney:      s.StartingMoney,
		StartingLives:      s.StartingLives,
	}
}

// IsFinalRound reports whether the current round is the last one.
func (s *GameState) IsFinalRound() bool {
	return s.CurrentRound >= s.TotalRounds
}

// Snapshot is a read-only copy of GameState.
type Snapshot struct {
	Money              int     `json:"money"`
	Lives              int     `json:"lives"`
	Score              int     `json:"score"`
	CurrentRound       int     `json:"current_round"`
	TotalRounds        int     `json:"total_rounds"`
	Phase              Phase   `json:"phase"`
	PhaseTimeRemaining float64 `json:"phase_time_remaining"`
	EnemiesRemaining   int     `json:"enemies_remaining"`
	WaveIndex          int     `json:"wave_index"`
	WaveInProgress     bool    `json:"wave_in_progress"`
	IsGameActive       bool    `json:"is_game_active"`
	IsGameWon          bool    `json:"is_game_won"`
	Tick               int     `json:"tick"`
	Elapsed            float64 `json:"elapsed"`
}

// Snapshot copies the current state.
func (s *GameState) Snapshot() Snapshot {
	return Snapshot{
		Money:              s.Money,
		Lives:              s.Lives,
		Score:              s.Score,
		CurrentRound:       s.CurrentRound,
		TotalRounds:        s.TotalRounds,
		Phase:              s.CurrentPhase,
		PhaseTimeRemaining: s.PhaseTimeRemaining,
		EnemiesRemaining:   s.EnemiesRemaining,
		WaveIndex:          s.WaveIndex,
		WaveInProgress:     s.WaveInProgress,
		IsGameActive:       s.IsGameActive,
		IsGameWon:          s.CurrentPhase == Victory,
		Tick:               s.Tick,
		Elapsed:            s.Elapsed,
	}
}
