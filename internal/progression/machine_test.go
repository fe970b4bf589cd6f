package progression

import (
	"testing"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/economy"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/state"
)

var testEnemies = []catalog.EnemyDef{
	{Type: "basic_enemy", Health: 10, Speed: 1, Bounty: 5, Points: 10, Damage: 1},
	{Type: "boss", Health: 100, Speed: 0.5, Bounty: 50, Points: 100, Damage: 5},
}

func twoRounds() []catalog.RoundDefinition {
	return []catalog.RoundDefinition{
		{Number: 1, Waves: []catalog.WaveDefinition{
			{Name: "first", PreWaveDelay: 1, PostWaveDelay: 0.5, BonusMoney: 20,
				EnemyGroups: []catalog.EnemyGroup{{EnemyType: "basic_enemy", Count: 2}}},
			{Name: "second", PostWaveDelay: 1, BonusMoney: 30,
				EnemyGroups: []catalog.EnemyGroup{{EnemyType: "basic_enemy", Count: 1}}},
		}},
		{Number: 2, Waves: []catalog.WaveDefinition{
			{Name: "boss", BonusMoney: 50,
				EnemyGroups: []catalog.EnemyGroup{{EnemyType: "boss", Count: 1}}},
		}},
	}
}

type harness struct {
	m   *Machine
	st  *state.GameState
	rec *event.Recorder
}

func newMachine(t *testing.T, cfg Config, lives int, rounds []catalog.RoundDefinition) harness {
	t.Helper()
	cat, err := catalog.New(nil, testEnemies, rounds)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	st := state.New(100, lives, cat.RoundCount(), cfg.PreparationTime)
	bus := event.NewBus()
	rec := &event.Recorder{}
	bus.Subscribe(rec)
	m := New(Deps{
		State:     st,
		Waves:     cat,
		Enemies:   cat,
		Ledger:    economy.NewLedger(st, bus, nil),
		Publisher: bus,
	}, cfg)
	return harness{m: m, st: st, rec: rec}
}

func expectCode(t *testing.T, r interface{ Err() error }, code apperrors.Code) {
	t.Helper()
	if !apperrors.IsCode(r.Err(), code) {
		t.Fatalf("Expected %s, got %v", code, r.Err())
	}
}

func TestStartRoundEntersWaveActive(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())

	r := h.m.StartRound(1, false)
	if !r.Success || r.Data.Waves != 2 {
		t.Fatalf("Expected round 1 with 2 waves, got %+v", r)
	}
	if h.st.CurrentPhase != state.WaveActive || h.st.WaveInProgress {
		t.Fatalf("Expected WaveActive awaiting wave 0, got %s in progress=%v", h.st.CurrentPhase, h.st.WaveInProgress)
	}
	if h.st.PhaseTimeRemaining != 1 {
		t.Errorf("Expected pre-wave delay 1, got %v", h.st.PhaseTimeRemaining)
	}

	expectCode(t, h.m.StartRound(2, true), apperrors.CodeRoundOutOfSequence)
	expectCode(t, h.m.StartRound(1, false), apperrors.CodeInvalidPhase)
}

func TestStartWaveSequence(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())

	expectCode(t, h.m.StartWave(0, true), apperrors.CodeWaveOutOfSequence)
	h.m.StartRound(1, false)
	expectCode(t, h.m.StartWave(1, true), apperrors.CodeWaveOutOfSequence)

	w := h.m.StartWave(0, true)
	if !w.Success || w.Data.TotalEnemies != 2 || w.Data.WaveName != "first" {
		t.Fatalf("Expected wave 0 with 2 enemies, got %+v", w)
	}
	if h.st.EnemiesRemaining != 2 {
		t.Errorf("Expected 2 enemies remaining, got %d", h.st.EnemiesRemaining)
	}
	expectCode(t, h.m.StartWave(0, true), apperrors.CodeWaveOutOfSequence)

	h.m.EnemyDefeated("basic_enemy")
	res := h.m.EnemyDefeated("basic_enemy")
	if !res.Data.WaveCleared {
		t.Fatalf("Expected wave cleared, got %+v", res)
	}

	// Only wave 0 has completed: 2 skips ahead.
	expectCode(t, h.m.StartWave(2, true), apperrors.CodeWaveOutOfSequence)
	expectCode(t, h.m.StartWave(0, true), apperrors.CodeWaveOutOfSequence)
	if r := h.m.StartWave(1, false); !r.Success {
		t.Errorf("Expected standalone wave 1 to start, got %+v", r)
	}
}

func TestWaveStartsWhenTimerExpires(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())
	h.m.StartRound(1, false)

	h.m.Advance(0.5)
	if h.st.WaveInProgress {
		t.Fatal("Expected wave to wait for its pre-wave delay")
	}
	r := h.m.Advance(0.5)
	if !h.st.WaveInProgress || h.st.EnemiesRemaining != 2 {
		t.Fatalf("Expected wave 0 in progress with 2 enemies, got %+v", h.st.Snapshot())
	}
	if r.Data.Tick != 2 || r.Data.Elapsed != 1 {
		t.Errorf("Expected tick 2 at 1s, got %+v", r.Data)
	}
}

func TestWaveClearCreditsBonusAndScore(t *testing.T) {
	h := newMachine(t, Config{WaveClearScore: 7}, 10, twoRounds())
	h.m.StartRound(1, false)
	h.m.StartWave(0, true)

	h.m.EnemyDefeated("basic_enemy")
	h.m.EnemyDefeated("basic_enemy")

	// 100 + 2*5 bounty + 20 bonus
	if h.st.Money != 130 {
		t.Errorf("Expected money 130, got %d", h.st.Money)
	}
	// 2*10 points + 7 wave score
	if h.st.Score != 27 {
		t.Errorf("Expected score 27, got %d", h.st.Score)
	}
	if h.st.WaveIndex != 1 || h.st.PhaseTimeRemaining != 0.5 {
		t.Errorf("Expected wave 1 scheduled in 0.5s, got index %d timer %v", h.st.WaveIndex, h.st.PhaseTimeRemaining)
	}
}

func TestRoundEndThenPreparation(t *testing.T) {
	h := newMachine(t, Config{PreparationTime: 3}, 10, twoRounds())
	h.m.StartRound(1, false)
	h.m.StartWave(0, true)
	h.m.EnemyDefeated("basic_enemy")
	h.m.EnemyDefeated("basic_enemy")
	h.m.StartWave(1, true)
	h.m.EnemyDefeated("basic_enemy")

	if h.st.CurrentPhase != state.RoundEnd || h.st.PhaseTimeRemaining != 1 {
		t.Fatalf("Expected RoundEnd with 1s left, got %s %v", h.st.CurrentPhase, h.st.PhaseTimeRemaining)
	}
	expectCode(t, h.m.StartRound(1, true), apperrors.CodeRoundOutOfSequence)
	expectCode(t, h.m.StartRound(2, false), apperrors.CodeInvalidPhase)

	h.m.Advance(1)
	if h.st.CurrentPhase != state.Preparation || h.st.CurrentRound != 2 {
		t.Fatalf("Expected Preparation of round 2, got %s round %d", h.st.CurrentPhase, h.st.CurrentRound)
	}
	if h.st.PhaseTimeRemaining != 3 {
		t.Errorf("Expected preparation timer 3, got %v", h.st.PhaseTimeRemaining)
	}
	expectCode(t, h.m.StartRound(1, false), apperrors.CodeRoundOutOfSequence)
}

func TestForceStartRoundRestartsWaves(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())
	h.m.StartRound(1, false)
	h.m.StartWave(0, true)

	r := h.m.StartRound(1, true)
	if !r.Success {
		t.Fatalf("Expected forced restart, got %+v", r)
	}
	if h.st.EnemiesRemaining != 0 || h.st.WaveInProgress || h.st.WaveIndex != 0 {
		t.Errorf("Expected wave bookkeeping reset, got %+v", h.st.Snapshot())
	}
	if h.st.PhaseTimeRemaining != 1 {
		t.Errorf("Expected pre-wave timer 1, got %v", h.st.PhaseTimeRemaining)
	}
}

func TestAutoStartRounds(t *testing.T) {
	h := newMachine(t, Config{PreparationTime: 2, AutoStartRounds: true}, 10, twoRounds())

	h.m.Advance(1)
	if h.st.CurrentPhase != state.Preparation {
		t.Fatalf("Expected Preparation after 1s, got %s", h.st.CurrentPhase)
	}
	h.m.Advance(1)
	if h.st.CurrentPhase != state.WaveActive {
		t.Fatalf("Expected WaveActive after 2s, got %s", h.st.CurrentPhase)
	}
}

func TestLivesZeroIsGameOver(t *testing.T) {
	h := newMachine(t, Config{}, 3, twoRounds())
	h.m.StartRound(1, false)
	h.m.StartWave(0, true)
	h.m.StartRound(1, true)
	h.m.StartWave(0, true)

	h.m.EnemyLeaked("basic_enemy")
	if h.st.Lives != 2 || h.st.EnemiesRemaining != 1 {
		t.Fatalf("Expected 2 lives and 1 enemy, got %+v", h.st.Snapshot())
	}

	// Jump to the boss round to leak more than the remaining lives.
	h.st.CurrentRound = 2
	h.st.WaveIndex = 0
	h.st.WaveInProgress = true
	h.st.EnemiesRemaining = 1
	r := h.m.EnemyLeaked("boss")

	if r.Data.Phase != state.GameOver || h.st.Lives != 0 || h.st.IsGameActive {
		t.Fatalf("Expected GameOver with 0 lives, got %+v", h.st.Snapshot())
	}
	last := h.rec.Events[len(h.rec.Events)-1]
	if ended, ok := last.(event.MatchEnded); !ok || ended.Victory {
		t.Errorf("Expected MatchEnded defeat as last event, got %#v", last)
	}

	expectCode(t, h.m.StartWave(0, true), apperrors.CodeMatchAlreadyEnded)
	expectCode(t, h.m.Advance(0.1), apperrors.CodeMatchAlreadyEnded)
	expectCode(t, h.m.EnemyDefeated("boss"), apperrors.CodeMatchAlreadyEnded)
}

func TestAdvanceEndsMatchWithNoLives(t *testing.T) {
	h := newMachine(t, Config{}, 1, twoRounds())
	h.st.Lives = 0

	h.m.Advance(0.1)
	if h.st.CurrentPhase != state.GameOver {
		t.Errorf("Expected GameOver, got %s", h.st.CurrentPhase)
	}
}

func TestFinalRoundClearedIsVictory(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())
	var rounds []int
	var phases []state.Phase

	h.m.StartRound(1, false)
	for !h.st.CurrentPhase.IsTerminal() && h.st.Tick < 1000 {
		if h.st.CurrentPhase == state.Preparation {
			h.m.StartRound(h.st.CurrentRound, false)
		}
		if h.st.WaveInProgress {
			wave := h.m.WaveInfo().Waves[h.st.WaveIndex]
			h.m.EnemyDefeated(wave.EnemyGroups[0].EnemyType)
		} else {
			h.m.Advance(0.25)
		}
		rounds = append(rounds, h.st.CurrentRound)
	}
	for _, e := range h.rec.Events {
		if pc, ok := e.(event.PhaseChanged); ok {
			phases = append(phases, pc.To)
		}
	}

	if h.st.CurrentPhase != state.Victory || !h.st.Snapshot().IsGameWon || h.st.IsGameActive {
		t.Fatalf("Expected Victory, got %+v", h.st.Snapshot())
	}
	if n := len(phases); n < 2 || phases[n-2] != state.RoundEnd || phases[n-1] != state.Victory {
		t.Errorf("Expected RoundEnd then Victory at the end, got %v", phases)
	}
	for i := 1; i < len(rounds); i++ {
		if rounds[i] < rounds[i-1] {
			t.Fatalf("Round went backwards: %v", rounds)
		}
	}
	prep := 0
	for _, p := range phases {
		if p == state.Preparation {
			prep++
		}
	}
	if prep != 1 {
		t.Errorf("Expected exactly one Preparation re-entry, got %d", prep)
	}
}

func TestEnemyReportsNeedAWave(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())
	expectCode(t, h.m.EnemyDefeated("basic_enemy"), apperrors.CodeInvalidPhase)

	h.m.StartRound(1, false)
	h.m.StartWave(0, true)
	expectCode(t, h.m.EnemyLeaked("dragon"), apperrors.CodeValidation)
}

func TestWaveInfo(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())
	h.m.StartRound(1, false)

	info := h.m.WaveInfo()
	if info.Round != 1 || len(info.Waves) != 2 || info.NextWaveIndex != 0 || info.TimeUntilNextWave != 1 {
		t.Errorf("Unexpected wave info %+v", info)
	}
}

func TestWaveInfoCannotRewriteCatalog(t *testing.T) {
	h := newMachine(t, Config{}, 10, twoRounds())

	info := h.m.WaveInfo()
	info.Waves[0].EnemyGroups[0].Count = 99
	info.Waves[0].Name = "changed"

	h.m.StartRound(1, false)
	w := h.m.StartWave(0, true)
	if w.Data.TotalEnemies != 2 || w.Data.WaveName != "first" {
		t.Fatalf("Expected wave \"first\" with 2 enemies, got %+v", w.Data)
	}
	if h.st.EnemiesRemaining != 2 {
		t.Errorf("Expected 2 enemies remaining, got %d", h.st.EnemiesRemaining)
	}
}
