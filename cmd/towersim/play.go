package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/platform/tui"
	"github.com/vovakirdan/towerdefense/internal/storage"
)

var (
	flagAutoplay  bool
	flagNoHistory bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match in the terminal",
	Long: `Start a match on the scenario map. Move the cursor to a buildable cell
and buy the selected building; rounds start when you press N or when the
preparation timer runs out.

Controls:
  Arrows/WASD  - Move cursor
  Space/Enter  - Build selected tower
  Tab          - Next tower type
  X            - Sell tower under cursor
  N            - Start round now
  T            - Toggle autoplay strategy
  P            - Pause
  R            - Restart
  Esc/Q        - Quit

Finished matches are stored in the run history.

Examples:
  towersim play
  towersim play --difficulty hard
  towersim play --autoplay --strategy ./aggressive.yaml`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagAutoplay, "autoplay", false, "Let the placement strategy build")
	playCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Do not store finished matches")
}

// terminalSize returns the stdout size, 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// historyStore opens the run history, or returns nil with a warning so
// play works without it.
func historyStore() *storage.Store {
	if flagNoHistory {
		return nil
	}
	store, err := storage.Open(dbPath())
	if err != nil {
		logger.Warn("run history disabled", "err", err)
		return nil
	}
	return store
}

func runPlay(_ *cobra.Command, _ []string) {
	ctx, cancel := signalContext()
	defer cancel()

	sc := loadScenario()
	plan := loadPlan()
	seed := effectiveSeed(sc)
	g, err := game.New(sc, game.Options{Seed: &seed, Plan: &plan, TickRate: settings.TickRate})
	if err != nil {
		fail("%v", err)
	}

	opts := tui.PlayOptions{Autoplay: flagAutoplay}
	if store := historyStore(); store != nil {
		defer store.Close()
		opts.Runs = store
	}
	if err := tui.Run(ctx, g, opts); err != nil {
		fail("%v", err)
	}
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive menu: play, watch autoplay or browse runs",
	Long: `Open the menu used by SSH sessions on the local terminal. Left and
right pick the difficulty; every match gets a fresh seed unless --seed is
set.`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	ctx, cancel := signalContext()
	defer cancel()

	sc, err := config.LoadScenario(flagScenario)
	if err != nil {
		fail("%v", err)
	}
	preset, ok := config.ParsePreset(flagDifficulty)
	if !ok {
		fail("unknown difficulty %q", flagDifficulty)
	}
	plan := loadPlan()

	deps := tui.SessionDeps{Scenario: sc, Plan: &plan, Seed: seedFlag(), Difficulty: preset}
	if store := historyStore(); store != nil {
		defer store.Close()
		deps.Runs = store
	}
	w, h := terminalSize()
	if err := tui.RunSession(ctx, deps, w, h); err != nil {
		fail("%v", err)
	}
}
