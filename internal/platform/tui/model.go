package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/placement"
	"github.com/vovakirdan/towerdefense/internal/simulation"
	"github.com/vovakirdan/towerdefense/internal/state"
	"github.com/vovakirdan/towerdefense/internal/storage"
)

// RunSaver records finished matches.
type RunSaver interface {
	SaveRun(r storage.Run) (string, error)
}

// PlayerID tags buildings placed from the keyboard.
const PlayerID = "player"

var (
	hudStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hudKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	victoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	defeatStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// PlayModel is the Bubble Tea model of an interactive match.
type PlayModel struct {
	ctx     context.Context
	game    *game.Game
	harness *simulation.Harness
	tag     uint64
	runs    RunSaver
	logger  *log.Logger
	feed    *eventFeed

	screen *core.Screen
	keys   PlayKeyMap
	help   help.Model
	input  core.InputFrame

	types     []catalog.BuildingDef
	symbols   map[string]rune
	typeIdx   int
	cursor    core.Cell
	snap      state.Snapshot
	buildings []placement.Building

	autoplay bool
	paused   bool
	saved    bool
	message  string
	done     bool // back to the menu
	quitting bool
}

// PlayOptions configure a PlayModel.
type PlayOptions struct {
	Runs     RunSaver // nil disables history
	Autoplay bool     // start with the strategy placing buildings
	Logger   *log.Logger
}

// NewPlayModel creates the match screen for g. The match clock is driven
// by the model; g's strategy, if any, only acts while autoplay is on.
func NewPlayModel(ctx context.Context, g *game.Game, opts PlayOptions) (PlayModel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h, err := simulation.New(g.Match, nil, g.Combat, g.SimulationOptions(), logger)
	if err != nil {
		return PlayModel{}, err
	}

	types := g.Catalog.BuildingTypes()
	symbols := make(map[string]rune, len(types))
	typeIdx := 0
	for i, t := range types {
		if t.Symbol != "" {
			symbols[t.Type] = []rune(t.Symbol)[0]
		}
		if t.Type == g.Scenario.DefaultBuilding {
			typeIdx = i
		}
	}

	feed := &eventFeed{}
	g.Match.Bus().Subscribe(feed, feedTypes...)

	w, hgt := MapSize(g.Board)
	m := PlayModel{
		ctx:      ctx,
		game:     g,
		harness:  h,
		tag:      nextMatchTag(),
		runs:     opts.Runs,
		logger:   logger,
		feed:     feed,
		screen:   core.NewScreen(w, hgt),
		keys:     DefaultPlayKeyMap(),
		help:     help.New(),
		input:    core.NewInputFrame(),
		types:    types,
		symbols:  symbols,
		typeIdx:  typeIdx,
		cursor:   core.Cell{X: g.Board.Width() / 2, Y: g.Board.Height() / 2},
		autoplay: opts.Autoplay && g.Strategy != nil,
	}
	m.refresh()
	return m, nil
}

// Init starts the tick loop.
func (m PlayModel) Init() tea.Cmd {
	return tickCmd(m.tag, m.game.Runtime.TickRate)
}

// Update handles messages and updates the model state.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		if msg.Match != m.tag {
			return m, nil
		}
		return m.handleTick()
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a := m.keys.Action(msg); a {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionNone:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.done = true
		case msg.String() == "?":
			m.help.ShowAll = !m.help.ShowAll
		}
	default:
		m.input.Set(a)
	}
	return m, nil
}

// frameOrder is the order input actions are applied within a tick.
var frameOrder = []core.Action{
	core.ActionRestart,
	core.ActionPause,
	core.ActionAutoplay,
	core.ActionUp,
	core.ActionDown,
	core.ActionLeft,
	core.ActionRight,
	core.ActionCycleType,
	core.ActionSell,
	core.ActionPlace,
	core.ActionStartRound,
}

func (m PlayModel) handleTick() (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	for _, a := range frameOrder {
		if m.input.Has(a) {
			m.apply(a)
		}
	}
	m.input.Clear()

	if !m.paused && !m.snap.Phase.IsTerminal() {
		if m.autoplay {
			m.autoPlace()
		}
		m.harness.Step(m.ctx)
	}
	if note := m.feed.take(); note != "" {
		m.message = note
	}
	m.refresh()
	m.recordRun()

	return m, tickCmd(m.tag, m.game.Runtime.TickRate)
}

func (m *PlayModel) apply(a core.Action) {
	ctx := m.ctx
	switch a {
	case core.ActionRestart:
		if err := m.game.Reset(ctx); err != nil {
			m.message = err.Error()
			return
		}
		m.saved = false
		m.paused = false
		m.message = "match restarted"
	case core.ActionPause:
		m.paused = !m.paused
	case core.ActionAutoplay:
		if m.game.Strategy == nil {
			m.message = "no strategy loaded"
			return
		}
		m.autoplay = !m.autoplay
	case core.ActionUp:
		m.moveCursor(0, -1)
	case core.ActionDown:
		m.moveCursor(0, 1)
	case core.ActionLeft:
		m.moveCursor(-1, 0)
	case core.ActionRight:
		m.moveCursor(1, 0)
	case core.ActionCycleType:
		if len(m.types) > 0 {
			m.typeIdx = (m.typeIdx + 1) % len(m.types)
		}
	case core.ActionPlace:
		def := m.selected()
		r := m.game.Match.PlaceBuilding(ctx, match.PlaceBuildingCommand{
			BuildingType: def.Type,
			Position:     m.cursor.Center(),
			PlayerID:     PlayerID,
		})
		if !r.Success {
			m.message = fmt.Sprintf("%s: %s", r.Code, r.Error)
			return
		}
		m.message = fmt.Sprintf("built %s for $%d", def.Name, r.Data.CostPaid)
	case core.ActionSell:
		b, ok := m.buildingAtCursor()
		if !ok {
			m.message = "nothing to sell here"
			return
		}
		r := m.game.Match.RemoveBuilding(ctx, match.RemoveBuildingCommand{BuildingID: b.ID})
		if !r.Success {
			m.message = fmt.Sprintf("%s: %s", r.Code, r.Error)
			return
		}
		m.message = fmt.Sprintf("sold %s for $%d", b.Type, r.Data.Refund)
	case core.ActionStartRound:
		round, force := m.snap.CurrentRound, false
		if m.snap.Phase == state.RoundEnd {
			round, force = round+1, true
		}
		r := m.game.Match.StartRound(ctx, match.StartRoundCommand{RoundNumber: round, ForceStart: force})
		if !r.Success {
			m.message = fmt.Sprintf("%s: %s", r.Code, r.Error)
			return
		}
		m.message = fmt.Sprintf("round %d started", r.Data.Round)
	}
	m.refresh()
}

// autoPlace lets the strategy buy what it wants this tick.
func (m *PlayModel) autoPlace() {
	for _, cmd := range m.game.Strategy.NextActions(m.snap, m.buildings) {
		if r := m.game.Match.PlaceBuilding(m.ctx, cmd); !r.Success {
			m.logger.Debug("autoplay placement skipped", "type", cmd.BuildingType, "code", r.Code)
		}
	}
}

func (m *PlayModel) moveCursor(dx, dy int) {
	m.cursor.X = core.Clamp(m.cursor.X+dx, 0, m.game.Board.Width()-1)
	m.cursor.Y = core.Clamp(m.cursor.Y+dy, 0, m.game.Board.Height()-1)
}

func (m *PlayModel) selected() catalog.BuildingDef {
	if len(m.types) == 0 {
		return catalog.BuildingDef{}
	}
	return m.types[m.typeIdx]
}

func (m *PlayModel) buildingAtCursor() (placement.Building, bool) {
	for _, b := range m.buildings {
		if b.Cell() == m.cursor {
			return b, true
		}
	}
	return placement.Building{}, false
}

func (m *PlayModel) refresh() {
	m.snap = m.game.Match.GameState(m.ctx).Data
	m.buildings = m.game.Match.Buildings(m.ctx).Data
}

// recordRun saves a finished match once.
func (m *PlayModel) recordRun() {
	if m.saved || m.runs == nil {
		return
	}
	res, done := simulation.FromSnapshot(m.snap)
	if !done {
		return
	}
	m.saved = true
	name := "manual"
	if m.autoplay {
		name = "autoplay"
	}
	id, err := m.runs.SaveRun(storage.RunFromResult(m.game.Scenario.Name, name, m.game.Runtime.Seed, res))
	if err != nil {
		m.logger.Error("save run", "err", err)
		return
	}
	m.logger.Info("run saved", "id", id, "outcome", res.Outcome)
}

// Snapshot returns the state shown on screen.
func (m PlayModel) Snapshot() state.Snapshot { return m.snap }

// Cursor returns the selected cell.
func (m PlayModel) Cursor() core.Cell { return m.cursor }

// Done reports whether the player asked to leave the match.
func (m PlayModel) Done() bool { return m.done }

// View renders the match.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}
	DrawMap(m.screen, MapView{
		Board:     m.game.Board,
		Buildings: m.buildings,
		Enemies:   m.game.Combat.Enemies(),
		Symbols:   m.symbols,
		Cursor:    m.cursor,
		HasCursor: true,
	})

	var sb strings.Builder
	sb.WriteString(m.hud())
	sb.WriteString("\n")
	sb.WriteString(RenderScreen(m.screen))
	sb.WriteString("\n")
	sb.WriteString(m.status())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m PlayModel) hud() string {
	s := m.snap
	phase := s.Phase.String()
	if s.Phase == state.Preparation && s.PhaseTimeRemaining > 0 {
		phase = fmt.Sprintf("%s %.0fs", phase, s.PhaseTimeRemaining)
	}
	parts := []string{
		fmt.Sprintf("Round %d/%d", s.CurrentRound, s.TotalRounds),
		phase,
		fmt.Sprintf("$%d", s.Money),
		fmt.Sprintf("♥ %d", s.Lives),
		fmt.Sprintf("Score %d", s.Score),
	}
	if s.EnemiesRemaining > 0 {
		parts = append(parts, fmt.Sprintf("Enemies %d", s.EnemiesRemaining))
	}
	line := hudStyle.Render(strings.Join(parts, "  "))

	def := m.selected()
	tower := hudKeyStyle.Render(fmt.Sprintf("[%c] %s $%d", symbolFor(m.symbols, def.Type), def.Name, def.Cost))
	flags := ""
	if m.autoplay {
		flags += " AUTO"
	}
	if m.paused {
		flags += " PAUSED"
	}
	return line + "  " + tower + messageStyle.Render(flags)
}

func (m PlayModel) status() string {
	switch m.snap.Phase {
	case state.Victory:
		return victoryStyle.Render(fmt.Sprintf("VICTORY! score %d, lives %d. r to play again", m.snap.Score, m.snap.Lives))
	case state.GameOver:
		return defeatStyle.Render(fmt.Sprintf("GAME OVER in round %d. r to try again", m.snap.CurrentRound))
	}
	return messageStyle.Render(m.message)
}

// Run starts a standalone Bubble Tea program for one match.
func Run(ctx context.Context, g *game.Game, opts PlayOptions) error {
	model, err := NewPlayModel(ctx, g, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(&standalone{play: model}, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// standalone quits when the player leaves the match screen.
type standalone struct {
	play PlayModel
}

func (s *standalone) Init() tea.Cmd { return s.play.Init() }

func (s *standalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.play.Update(msg)
	s.play = next.(PlayModel)
	if s.play.Done() {
		return s, tea.Quit
	}
	return s, cmd
}

func (s *standalone) View() string { return s.play.View() }
