package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH play server",
	Long: `Start an SSH server where every connection gets its own menu and
matches. All sessions share one run history.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.towersim/host_key

Examples:
  towersim serve                      # Listen on $TOWERSIM_SSH_ADDR (default :2222)
  towersim serve --ssh :23234
  towersim serve --host-key ./host_key --db ./runs.db

Users can connect with:
  ssh localhost -p 2222`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default: $TOWERSIM_SSH_ADDR)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
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

	addr := flagSSHAddr
	if addr == "" {
		addr = settings.SSHAddr
	}
	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = addr
	cfg.HostKeyPath = flagHostKey
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute

	deps := tui.SessionDeps{Scenario: sc, Plan: &plan, Seed: seedFlag(), Difficulty: preset, Logger: logger}
	if store := historyStore(); store != nil {
		defer store.Close()
		deps.Runs = store
	}

	server, err := tui.NewSSHServer(cfg, deps)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting towersim SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		fail("server: %v", err)
	}
}
