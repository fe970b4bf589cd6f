// Package progression implements the round and wave state machine.
//
//	Preparation -> WaveActive -> RoundEnd -> Preparation (next round)
//	WaveActive  -> GameOver   (lives reach 0, from any phase)
//	RoundEnd    -> Victory    (final round cleared)
//
// GameOver and Victory are terminal. Every operation returns a
// mediator.Result; nothing here is safe for concurrent use without the
// mediator lock.
package progression

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/economy"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/mediator"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// Config holds the timing and scoring rules of progression.
type Config struct {
	PreparationTime float64 // seconds of Preparation before each round
	AutoStartRounds bool    // start the round when the Preparation timer expires
	WaveClearScore  int     // score for each cleared wave
}

// Machine drives phase transitions over a GameState.
type Machine struct {
	st      *state.GameState
	waves   catalog.Waves
	enemies catalog.Enemies
	ledger  *economy.Ledger
	pub     event.Publisher
	cfg     Config
	logger  *log.Logger
}

// Deps are the collaborators of a Machine.
type Deps struct {
	State     *state.GameState
	Waves     catalog.Waves
	Enemies   catalog.Enemies
	Ledger    *economy.Ledger
	Publisher event.Publisher
	Logger    *log.Logger
}

// New creates a machine. The GameState must already be at its initial
// values.
func New(d Deps, cfg Config) *Machine {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Publisher == nil {
		d.Publisher = event.NewBus()
	}
	return &Machine{
		st:      d.State,
		waves:   d.Waves,
		enemies: d.Enemies,
		ledger:  d.Ledger,
		pub:     d.Publisher,
		cfg:     cfg,
		logger:  d.Logger,
	}
}

// Config returns the rules the machine runs with.
func (m *Machine) Config() Config {
	return m.cfg
}

// RoundStarted is the payload of StartRound.
type RoundStarted struct {
	Round int `json:"round"`
	Waves int `json:"waves"`
}

// WaveStarted is the payload of StartWave.
type WaveStarted struct {
	WaveIndex    int    `json:"wave_index"`
	TotalEnemies int    `json:"total_enemies"`
	WaveName     string `json:"wave_name"`
}

// EnemyResolved is the payload of EnemyDefeated and EnemyLeaked.
type EnemyResolved struct {
	EnemiesRemaining int         `json:"enemies_remaining"`
	Money            int         `json:"money"`
	Lives            int         `json:"lives"`
	WaveCleared      bool        `json:"wave_cleared"`
	Phase            state.Phase `json:"phase"`
}

// TickReport is the payload of Advance.
type TickReport struct {
	Tick               int         `json:"tick"`
	Elapsed            float64     `json:"elapsed"`
	Phase              state.Phase `json:"phase"`
	PhaseTimeRemaining float64     `json:"phase_time_remaining"`
}

// WaveInfo describes the waves of the current round.
type WaveInfo struct {
	Round             int                      `json:"round"`
	Waves             []catalog.WaveDefinition `json:"waves"`
	NextWaveIndex     int                      `json:"next_wave_index"`
	WaveInProgress    bool                     `json:"wave_in_progress"`
	TimeUntilNextWave float64                  `json:"time_until_next_wave"`
}

func alreadyEnded[T any](p state.Phase) mediator.Result[T] {
	return mediator.Fail[T](apperrors.CodeMatchAlreadyEnded, fmt.Sprintf("match ended in %s", p))
}

func (m *Machine) round() catalog.RoundDefinition {
	r, _ := m.waves.Round(m.st.CurrentRound)
	return r
}

// StartRound begins roundNumber. It must be the current round (or the next
// one while in RoundEnd). Outside Preparation it requires force, which
// discards any wave in progress and restarts the round from wave 0.
func (m *Machine) StartRound(roundNumber int, force bool) mediator.Result[RoundStarted] {
	phase := m.st.CurrentPhase
	if phase.IsTerminal() {
		return alreadyEnded[RoundStarted](phase)
	}

	expected := m.st.CurrentRound
	if phase == state.RoundEnd {
		expected++
	}
	if roundNumber != expected {
		return mediator.Fail[RoundStarted](apperrors.CodeRoundOutOfSequence,
			fmt.Sprintf("expected round %d, got %d", expected, roundNumber))
	}
	def, ok := m.waves.Round(roundNumber)
	if !ok {
		return mediator.Fail[RoundStarted](apperrors.CodeRoundOutOfSequence,
			fmt.Sprintf("round %d is not defined", roundNumber))
	}
	if phase != state.Preparation && !force {
		return mediator.Fail[RoundStarted](apperrors.CodeInvalidPhase,
			fmt.Sprintf("cannot start a round during %s", phase))
	}

	if force {
		m.st.EnemiesRemaining = 0
		m.st.PhaseTimeRemaining = 0
	}
	m.st.CurrentRound = roundNumber
	m.st.WaveIndex = 0
	m.st.WaveInProgress = false
	m.setPhase(state.WaveActive)
	m.pub.Publish(event.RoundStarted{Round: roundNumber, Waves: len(def.Waves)})
	m.logger.Info("round started", "round", roundNumber, "waves", len(def.Waves), "forced", force)

	m.scheduleWave(def.Waves[0].PreWaveDelay)
	return mediator.OK(RoundStarted{Round: roundNumber, Waves: len(def.Waves)})
}

// StartWave starts wave waveIndex of the current round. Waves start in
// order from 0 with no skipping and one at a time. A standalone wave
// (isRoundBased false) follows the same sequence rules.
func (m *Machine) StartWave(waveIndex int, isRoundBased bool) mediator.Result[WaveStarted] {
	phase := m.st.CurrentPhase
	if phase.IsTerminal() {
		return alreadyEnded[WaveStarted](phase)
	}
	outOfSequence := func(msg string) mediator.Result[WaveStarted] {
		return mediator.Fail[WaveStarted](apperrors.CodeWaveOutOfSequence, msg)
	}
	switch {
	case phase != state.WaveActive:
		return outOfSequence(fmt.Sprintf("no round in progress (%s)", phase))
	case m.st.WaveInProgress:
		return outOfSequence(fmt.Sprintf("wave %d still in progress", m.st.WaveIndex))
	case waveIndex != m.st.WaveIndex:
		return outOfSequence(fmt.Sprintf("expected wave %d, got %d", m.st.WaveIndex, waveIndex))
	case waveIndex >= len(m.round().Waves):
		return outOfSequence(fmt.Sprintf("round %d has no wave %d", m.st.CurrentRound, waveIndex))
	}
	if !isRoundBased {
		m.logger.Debug("standalone wave", "round", m.st.CurrentRound, "wave", waveIndex)
	}
	return mediator.OK(m.beginWave())
}

// EnemyDefeated records a kill: bounty, score and the remaining count.
func (m *Machine) EnemyDefeated(enemyType string) mediator.Result[EnemyResolved] {
	def, fail, ok := m.resolveEnemy(enemyType)
	if !ok {
		return fail
	}
	if err := m.ledger.Credit(def.Bounty, "bounty "+def.Type); err != nil {
		return mediator.FromError[EnemyResolved](err)
	}
	m.st.Score += def.Points
	m.st.EnemiesRemaining--
	m.pub.Publish(event.EnemyDefeated{EnemyType: def.Type, Bounty: def.Bounty, Points: def.Points})

	cleared := false
	if m.st.EnemiesRemaining == 0 {
		m.waveCleared()
		cleared = true
	}
	return mediator.OK(m.resolved(cleared))
}

// EnemyLeaked records an enemy reaching the exit: it costs lives and may
// end the match.
func (m *Machine) EnemyLeaked(enemyType string) mediator.Result[EnemyResolved] {
	def, fail, ok := m.resolveEnemy(enemyType)
	if !ok {
		return fail
	}
	lost := min(def.Damage, m.st.Lives)
	m.st.Lives -= lost
	m.st.EnemiesRemaining--
	m.pub.Publish(event.LivesLost{EnemyType: def.Type, Amount: lost, Remaining: m.st.Lives})

	cleared := false
	switch {
	case m.st.Lives == 0:
		m.endMatch(false)
	case m.st.EnemiesRemaining == 0:
		m.waveCleared()
		cleared = true
	}
	return mediator.OK(m.resolved(cleared))
}

func (m *Machine) resolveEnemy(enemyType string) (catalog.EnemyDef, mediator.Result[EnemyResolved], bool) {
	phase := m.st.CurrentPhase
	if phase.IsTerminal() {
		return catalog.EnemyDef{}, alreadyEnded[EnemyResolved](phase), false
	}
	if !m.st.WaveInProgress || m.st.EnemiesRemaining == 0 {
		return catalog.EnemyDef{}, mediator.Fail[EnemyResolved](apperrors.CodeInvalidPhase, "no enemies in play"), false
	}
	def, ok := m.enemies.Enemy(enemyType)
	if !ok {
		return def, mediator.Fail[EnemyResolved](apperrors.CodeValidation,
			fmt.Sprintf("unknown enemy type %q", enemyType)), false
	}
	return def, mediator.Result[EnemyResolved]{}, true
}

func (m *Machine) resolved(cleared bool) EnemyResolved {
	return EnemyResolved{
		EnemiesRemaining: m.st.EnemiesRemaining,
		Money:            m.st.Money,
		Lives:            m.st.Lives,
		WaveCleared:      cleared,
		Phase:            m.st.CurrentPhase,
	}
}

// Advance moves the clock by delta seconds and fires whatever transition
// an expired phase timer schedules.
func (m *Machine) Advance(delta float64) mediator.Result[TickReport] {
	if phase := m.st.CurrentPhase; phase.IsTerminal() {
		return alreadyEnded[TickReport](phase)
	}
	m.st.Tick++
	m.st.Elapsed += delta

	if m.st.Lives <= 0 {
		m.endMatch(false)
		return mediator.OK(m.report())
	}

	m.st.PhaseTimeRemaining = max(m.st.PhaseTimeRemaining-delta, 0)
	if m.st.PhaseTimeRemaining > 0 {
		return mediator.OK(m.report())
	}

	switch m.st.CurrentPhase {
	case state.Preparation:
		if m.cfg.AutoStartRounds {
			m.StartRound(m.st.CurrentRound, false)
		}
	case state.WaveActive:
		if !m.st.WaveInProgress && m.st.WaveIndex < len(m.round().Waves) {
			m.beginWave()
		}
	case state.RoundEnd:
		m.enterPreparation(m.st.CurrentRound + 1)
	}
	return mediator.OK(m.report())
}

func (m *Machine) report() TickReport {
	return TickReport{
		Tick:               m.st.Tick,
		Elapsed:            m.st.Elapsed,
		Phase:              m.st.CurrentPhase,
		PhaseTimeRemaining: m.st.PhaseTimeRemaining,
	}
}

// WaveInfo describes the current round's waves.
func (m *Machine) WaveInfo() WaveInfo {
	info := WaveInfo{
		Round:          m.st.CurrentRound,
		Waves:          m.round().Clone().Waves,
		NextWaveIndex:  m.st.WaveIndex,
		WaveInProgress: m.st.WaveInProgress,
	}
	if m.st.CurrentPhase == state.WaveActive && !m.st.WaveInProgress {
		info.TimeUntilNextWave = m.st.PhaseTimeRemaining
	}
	return info
}

func (m *Machine) scheduleWave(delay float64) {
	m.st.PhaseTimeRemaining = max(delay, 0)
	if m.st.PhaseTimeRemaining == 0 {
		m.beginWave()
	}
}

func (m *Machine) beginWave() WaveStarted {
	wave := m.round().Waves[m.st.WaveIndex]
	m.st.EnemiesRemaining = wave.TotalEnemies()
	m.st.WaveInProgress = true
	m.st.PhaseTimeRemaining = 0

	m.pub.Publish(event.WaveStarted{Round: m.st.CurrentRound, WaveIndex: m.st.WaveIndex, Wave: wave.Clone()})
	m.logger.Debug("wave started", "round", m.st.CurrentRound, "wave", m.st.WaveIndex, "enemies", m.st.EnemiesRemaining)
	return WaveStarted{
		WaveIndex:    m.st.WaveIndex,
		TotalEnemies: m.st.EnemiesRemaining,
		WaveName:     wave.Name,
	}
}

func (m *Machine) waveCleared() {
	waves := m.round().Waves
	wave := waves[m.st.WaveIndex]

	// Credit of a non-negative catalog value cannot fail.
	_ = m.ledger.Credit(wave.BonusMoney, "wave bonus")
	m.st.Score += m.cfg.WaveClearScore
	m.st.WaveInProgress = false
	m.pub.Publish(event.WaveCleared{Round: m.st.CurrentRound, WaveIndex: m.st.WaveIndex, Bonus: wave.BonusMoney})
	m.logger.Debug("wave cleared", "round", m.st.CurrentRound, "wave", m.st.WaveIndex, "bonus", wave.BonusMoney)

	m.st.WaveIndex++
	if m.st.WaveIndex < len(waves) {
		m.scheduleWave(wave.PostWaveDelay + waves[m.st.WaveIndex].PreWaveDelay)
		return
	}

	m.setPhase(state.RoundEnd)
	m.st.PhaseTimeRemaining = wave.PostWaveDelay
	switch {
	case m.st.IsFinalRound():
		m.endMatch(true)
	case m.st.PhaseTimeRemaining == 0:
		m.enterPreparation(m.st.CurrentRound + 1)
	}
}

func (m *Machine) enterPreparation(round int) {
	m.st.CurrentRound = round
	m.st.WaveIndex = 0
	m.st.WaveInProgress = false
	m.st.EnemiesRemaining = 0
	m.st.PhaseTimeRemaining = m.cfg.PreparationTime
	m.setPhase(state.Preparation)
}

func (m *Machine) endMatch(victory bool) {
	m.st.IsGameActive = false
	m.st.WaveInProgress = false
	m.st.PhaseTimeRemaining = 0
	if victory {
		m.setPhase(state.Victory)
	} else {
		m.setPhase(state.GameOver)
	}
	m.pub.Publish(event.MatchEnded{Victory: victory, Round: m.st.CurrentRound, Score: m.st.Score})
	m.logger.Info("match ended", "victory", victory, "round", m.st.CurrentRound, "score", m.st.Score)
}

func (m *Machine) setPhase(p state.Phase) {
	from := m.st.CurrentPhase
	if from == p {
		return
	}
	m.st.CurrentPhase = p
	m.pub.Publish(event.PhaseChanged{From: from, To: p, Round: m.st.CurrentRound})
}
