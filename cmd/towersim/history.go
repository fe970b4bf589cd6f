package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/platform/tui"
	"github.com/vovakirdan/towerdefense/internal/storage"
)

var (
	flagLimit int
	flagTUI   bool
	flagBest  bool
	flagClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored runs",
	Long: `List runs stored by simulate --save, batch --save and finished
interactive matches.

Examples:
  towersim history
  towersim history --best --limit 5
  towersim history --tui
  towersim history --clear`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of runs to show")
	historyCmd.Flags().BoolVar(&flagTUI, "tui", false, "Browse runs in an interactive table")
	historyCmd.Flags().BoolVar(&flagBest, "best", false, "Best runs of the scenario instead of the most recent")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the stored runs of the scenario")
}

func runHistory(_ *cobra.Command, _ []string) {
	sc, err := config.LoadScenario(flagScenario)
	if err != nil {
		fail("%v", err)
	}
	store := openStore()
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(sc.Name); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Cleared runs of %s.\n", sc.Name)
		return
	}

	if flagTUI {
		w, h := terminalSize()
		if err := tui.RunHistory(store, sc.Name, w, h); err != nil {
			fail("%v", err)
		}
		return
	}

	var runs []storage.Run
	if flagBest {
		runs, err = store.BestRuns(sc.Name, flagLimit)
	} else {
		runs, err = store.RecentRuns(flagLimit)
	}
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	if flagBest {
		fmt.Printf("Best Runs - %s\n\n", sc.Name)
	} else {
		fmt.Printf("Recent Runs\n\n")
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'towersim simulate --save' to record one.")
		return
	}

	fmt.Printf("  %-14s  %-10s  %-10s  %-10s  %5s  %5s  %8s\n", "When", "Scenario", "Strategy", "Outcome", "Round", "Lives", "Score")
	fmt.Printf("  %-14s  %-10s  %-10s  %-10s  %5s  %5s  %8s\n", "----", "--------", "--------", "-------", "-----", "-----", "-----")
	for _, r := range runs {
		fmt.Printf("  %-14s  %-10s  %-10s  %-10s  %5d  %5d  %8s\n",
			humanize.Time(r.CreatedAt), r.Scenario, r.Strategy, r.Outcome, r.FinalRound, r.FinalLives, humanize.Comma(int64(r.Score)))
	}

	stats, err := store.ScenarioStats(sc.Name)
	if err == nil && stats.Runs > 0 {
		fmt.Println()
		fmt.Printf("%s: %d runs, %d victories, best score %s, %.1f lives on average\n",
			sc.Name, stats.Runs, stats.Victories, humanize.Comma(int64(stats.BestScore)), stats.AvgLives)
	}
}
