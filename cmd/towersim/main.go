// towersim runs tower defense matches headless, in the terminal, over SSH
// or behind a JSON API.
//
// Usage:
//
//	towersim simulate        - Run one match to completion with the placement strategy
//	towersim batch           - Run a seed range in parallel and summarise it
//	towersim play            - Play a match in the terminal
//	towersim menu            - Interactive menu: play, watch autoplay, run history
//	towersim serve           - Start SSH server for remote play
//	towersim api             - Serve hosted matches over HTTP
//	towersim history         - Show stored runs
//	towersim catalog         - Show buildings, enemies and rounds
//
// Global flags:
//
//	--scenario <path>    - Scenario YAML (default: embedded "valley")
//	--strategy <path>    - Placement strategy YAML
//	--seed <value>       - Combat RNG seed (default: scenario seed)
//	--difficulty <name>  - easy, normal or hard
//	--db <path>          - Run history database (default: $TOWERSIM_DB)
//
// Settings are read from the environment and an optional .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/storage"
	"github.com/vovakirdan/towerdefense/internal/strategy"
)

var (
	// Global flags
	flagScenario   string
	flagStrategy   string
	flagSeed       int64
	flagDifficulty string
	flagDBPath     string
	flagLogLevel   string

	settings config.Settings
	logger   = log.New(os.Stderr)
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	var err error
	settings, err = config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "towersim",
	Short: "Tower defense match core, simulator and terminal game",
	Long: `towersim hosts a deterministic tower defense match: buildings are
bought with an economy ledger, placed on a bounded map, and rounds of
enemy waves are played through a round/wave state machine.

Available commands:
  simulate - Run one headless match with the placement strategy
  batch    - Balance run over a range of seeds
  play     - Play a match in the terminal
  menu     - Interactive menu
  serve    - Start SSH server for remote play
  api      - Serve matches over HTTP/JSON
  history  - Show stored runs
  catalog  - Show the scenario catalog

Examples:
  towersim simulate --seed 42 --save
  towersim batch --runs 100 --parallel 8
  towersim play --difficulty hard
  towersim serve --ssh :2222
  towersim history --limit 10`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := settings.Level()
		if flagLogLevel != "" {
			lvl, err := log.ParseLevel(flagLogLevel)
			if err != nil {
				fail("invalid --log-level %q", flagLogLevel)
			}
			level = lvl
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "towersim",
			Level:           level,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagScenario, "scenario", "", "Path to scenario YAML (default: embedded scenario)")
	rootCmd.PersistentFlags().StringVar(&flagStrategy, "strategy", "", "Path to placement strategy YAML (default: embedded strategy)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Combat RNG seed (default: scenario seed)")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run history database (default: $TOWERSIM_DB)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default: $TOWERSIM_LOG_LEVEL)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadScenario loads the scenario flag and applies the difficulty preset.
func loadScenario() config.Scenario {
	sc, err := config.LoadScenario(flagScenario)
	if err != nil {
		fail("%v", err)
	}
	preset, ok := config.ParsePreset(flagDifficulty)
	if !ok {
		fail("unknown difficulty %q (want easy, normal or hard)", flagDifficulty)
	}
	config.ApplyPreset(&sc, preset)
	return sc
}

func loadPlan() strategy.Config {
	plan, err := config.LoadStrategy(flagStrategy)
	if err != nil {
		fail("%v", err)
	}
	return plan
}

// strategyName labels stored runs with the strategy file they used.
func strategyName() string {
	if flagStrategy == "" {
		return "default"
	}
	return strings.TrimSuffix(filepath.Base(flagStrategy), filepath.Ext(flagStrategy))
}

// seedFlag returns --seed when it was given. Zero is a valid seed.
func seedFlag() *int64 {
	if !rootCmd.PersistentFlags().Changed("seed") {
		return nil
	}
	seed := flagSeed
	return &seed
}

// effectiveSeed is the seed a match built from sc will use.
func effectiveSeed(sc config.Scenario) int64 {
	if seed := seedFlag(); seed != nil {
		return *seed
	}
	return sc.Runtime().Seed
}

func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return settings.DBPath
}

func openStore() *storage.Store {
	store, err := storage.Open(dbPath())
	if err != nil {
		fail("opening run history: %v", err)
	}
	return store
}
