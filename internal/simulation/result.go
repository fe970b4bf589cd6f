package simulation

import (
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// Outcome names how a run ended.
type Outcome string

const (
	OutcomeVictory   Outcome = "victory"
	OutcomeGameOver  Outcome = "game_over"
	OutcomeMaxTicks  Outcome = "max_ticks"
	OutcomeCancelled Outcome = "cancelled"
)

// Progress is a sampled view of a running simulation.
type Progress struct {
	Tick             int         `json:"tick"`
	Round            int         `json:"round"`
	CurrentWave      int         `json:"current_wave"`
	Phase            state.Phase `json:"phase"`
	CurrentGold      int         `json:"current_gold"`
	RemainingLives   int         `json:"remaining_lives"`
	EnemiesRemaining int         `json:"enemies_remaining"`
}

// Result is the terminal summary of a run. Duration is simulated seconds,
// never wall time, so equal runs encode to equal bytes.
type Result struct {
	Success          bool           `json:"success"`
	IsVictory        bool           `json:"is_victory"`
	FinalMoney       int            `json:"final_money"`
	FinalLives       int            `json:"final_lives"`
	Duration         float64        `json:"duration"`
	Outcome          Outcome        `json:"outcome"`
	Code             apperrors.Code `json:"code,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	Ticks            int            `json:"ticks"`
	FinalRound       int            `json:"final_round"`
	Score            int            `json:"score"`
	BuildingsPlaced  int            `json:"buildings_placed"`
	FailedPlacements int            `json:"failed_placements"`
}

// CreateSuccess builds the result of a won match.
func CreateSuccess(finalMoney, finalLives int, duration float64) Result {
	return Result{
		Success:    true,
		IsVictory:  true,
		FinalMoney: finalMoney,
		FinalLives: finalLives,
		Duration:   duration,
		Outcome:    OutcomeVictory,
	}
}

// Failure builds the result of a lost match.
func Failure() Result {
	return Result{Outcome: OutcomeGameOver, Reason: "lives exhausted"}
}

// Aborted builds the result of a run that stopped before the match ended.
func Aborted(outcome Outcome, reason string) Result {
	return Result{Outcome: outcome, Code: apperrors.CodeSimulationAborted, Reason: reason}
}

// FromSnapshot summarises a finished match. It reports false while the
// match is still running.
func FromSnapshot(s state.Snapshot) (Result, bool) {
	switch s.Phase {
	case state.Victory:
		return CreateSuccess(s.Money, s.Lives, s.Elapsed).withState(s), true
	case state.GameOver:
		return Failure().withState(s), true
	}
	return Result{}, false
}

// withState fills the match totals from the final snapshot.
func (r Result) withState(s state.Snapshot) Result {
	r.FinalMoney = s.Money
	r.FinalLives = s.Lives
	r.Duration = s.Elapsed
	r.Ticks = s.Tick
	r.FinalRound = s.CurrentRound
	r.Score = s.Score
	return r
}
