package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/strategy"
)

// RunStore is the run history used by a session.
type RunStore interface {
	RunSaver
	RunLister
}

// SessionDeps are shared by every session of a process.
type SessionDeps struct {
	Scenario   config.Scenario
	Plan       *strategy.Config // nil hides autoplay
	Runs       RunStore         // nil disables history
	Logger     *log.Logger
	Seed       *int64 // nil picks a new seed per match
	Difficulty config.DifficultyPreset
}

type screen int

const (
	screenMenu screen = iota
	screenPlay
	screenHistory
)

// SessionModel manages the full flow: menu -> match or history -> menu.
// It is the top-level model for SSH sessions and the local play command.
type SessionModel struct {
	ctx    context.Context
	deps   SessionDeps
	user   string
	screen screen
	width  int
	height int

	menu    MenuModel
	play    PlayModel
	history HistoryModel
	err     string

	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(ctx context.Context, deps SessionDeps, user string, width, height int) SessionModel {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Difficulty == "" {
		deps.Difficulty = config.DifficultyNormal
	}
	return SessionModel{
		ctx:    ctx,
		deps:   deps,
		user:   user,
		width:  width,
		height: height,
		menu:   NewMenuModel(deps.Scenario.Name, deps.Difficulty, width, height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.screen {
	case screenPlay:
		return m.updatePlay(msg)
	case screenHistory:
		return m.updateHistory(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	switch m.menu.Chosen() {
	case ChoiceQuit:
		m.quitting = true
		return m, tea.Quit
	case ChoicePlay, ChoiceWatch:
		return m.startMatch(m.menu.Chosen() == ChoiceWatch)
	case ChoiceHistory:
		m.history = NewHistoryModel(m.deps.Runs, m.deps.Scenario.Name, m.width, m.height)
		m.screen = screenHistory
		return m, m.history.Init()
	}
	return m, cmd
}

func (m SessionModel) startMatch(autoplay bool) (tea.Model, tea.Cmd) {
	sc := m.deps.Scenario
	config.ApplyPreset(&sc, m.menu.Preset())

	seed := time.Now().UnixNano()
	if m.deps.Seed != nil {
		seed = *m.deps.Seed
	}
	g, err := game.New(sc, game.Options{Seed: &seed, Plan: m.deps.Plan, Logger: m.deps.Logger})
	if err != nil {
		return m.backToMenu(err.Error())
	}
	var runs RunSaver
	if m.deps.Runs != nil {
		runs = m.deps.Runs
	}
	play, err := NewPlayModel(m.ctx, g, PlayOptions{Runs: runs, Autoplay: autoplay, Logger: m.deps.Logger})
	if err != nil {
		return m.backToMenu(err.Error())
	}
	m.deps.Logger.Info("match started", "user", m.user, "seed", seed, "difficulty", m.menu.Preset(), "autoplay", autoplay)

	m.play = play
	m.play.help.Width = m.width
	m.screen = screenPlay
	return m, m.play.Init()
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.play.Update(msg)
	m.play = next.(PlayModel)

	if m.play.quitting {
		m.quitting = true
		return m, tea.Quit
	}
	if m.play.Done() {
		return m.backToMenu("")
	}
	return m, cmd
}

func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.history.Update(msg)
	m.history = next.(HistoryModel)

	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.history.IsGoingBack() {
		return m.backToMenu("")
	}
	return m, cmd
}

func (m SessionModel) backToMenu(errMsg string) (tea.Model, tea.Cmd) {
	preset := m.menu.Preset()
	m.menu = NewMenuModel(m.deps.Scenario.Name, preset, m.width, m.height)
	m.screen = screenMenu
	m.err = errMsg
	return m, m.menu.Init()
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenPlay:
		return m.play.View()
	case screenHistory:
		return m.history.View()
	}
	v := m.menu.View()
	if m.err != "" {
		v += "\n" + centerText(defeatStyle.Render(m.err), m.width)
	}
	return v
}

// RunSession starts a session on the local terminal.
func RunSession(ctx context.Context, deps SessionDeps, width, height int) error {
	p := tea.NewProgram(NewSessionModel(ctx, deps, "local", width, height), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
