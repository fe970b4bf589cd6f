package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/platform/httpapi"
)

var (
	flagHTTPAddr   string
	flagMaxMatches int
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve hosted matches over HTTP/JSON",
	Long: `Start the JSON API. Each POST /matches hosts a match in memory; every
route maps onto one match command or query and answers with its result.

Routes:
  GET    /health
  GET    /catalog
  GET    /matches                       POST /matches
  GET    /matches/{id}                  DELETE /matches/{id}
  POST   /matches/{id}/reset            POST /matches/{id}/tick
  GET    /matches/{id}/buildings        POST /matches/{id}/buildings
  DELETE /matches/{id}/buildings/{bid}
  POST   /matches/{id}/rounds
  GET    /matches/{id}/waves            POST /matches/{id}/waves
  POST   /matches/{id}/money/spend      POST /matches/{id}/money/earn
  POST   /simulations                   GET  /runs

Examples:
  towersim api
  towersim api --addr :9090 --max-matches 50`,
	Run: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagHTTPAddr, "addr", "", "HTTP listen address (default: $TOWERSIM_HTTP_ADDR)")
	apiCmd.Flags().IntVar(&flagMaxMatches, "max-matches", 100, "Concurrently hosted matches")
}

func runAPI(_ *cobra.Command, _ []string) {
	ctx, cancel := signalContext()
	defer cancel()

	sc, err := config.LoadScenario(flagScenario)
	if err != nil {
		fail("%v", err)
	}
	plan := loadPlan()

	deps := httpapi.Deps{Scenario: sc, Plan: plan, Logger: logger.WithPrefix("api"), MaxMatches: flagMaxMatches}
	if store := historyStore(); store != nil {
		defer store.Close()
		deps.Runs = store
	}

	addr := flagHTTPAddr
	if addr == "" {
		addr = settings.HTTPAddr
	}
	if err := httpapi.New(deps).ListenAndServe(ctx, addr); err != nil {
		fail("server: %v", err)
	}
}
