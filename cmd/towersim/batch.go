package main

import (
	"encoding/json"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/simulation"
	"github.com/vovakirdan/towerdefense/internal/storage"
)

var (
	flagRuns     int
	flagParallel int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a range of seeds and summarise the results",
	Long: `Run --runs matches with seeds seed..seed+runs-1, at most --parallel at a
time, one match per goroutine. Every match is independent, so results do
not depend on the parallelism.

Examples:
  towersim batch --runs 100
  towersim batch --runs 500 --parallel 16 --difficulty hard
  towersim batch --runs 20 --seed 1000 --save`,
	Run: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&flagRuns, "runs", 10, "Number of matches")
	batchCmd.Flags().IntVar(&flagParallel, "parallel", runtime.NumCPU(), "Matches run at once")
	batchCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Tick limit per match (0 = one simulated hour)")
	batchCmd.Flags().Float64Var(&flagTick, "tick", 0, "Simulated seconds per tick (0 = scenario tick rate)")
	batchCmd.Flags().BoolVar(&flagSave, "save", false, "Store every result in the run history")
	batchCmd.Flags().BoolVar(&flagJSON, "json", false, "Print every result as JSON")
}

// batchSummary aggregates a batch.
type batchSummary struct {
	Runs      int     `json:"runs"`
	Victories int     `json:"victories"`
	WinRate   float64 `json:"win_rate"`
	AvgLives  float64 `json:"avg_lives"`
	AvgScore  float64 `json:"avg_score"`
	BestSeed  int64   `json:"best_seed"`
	BestScore int     `json:"best_score"`
	Worst     int     `json:"worst_round"` // lowest round reached
}

type seededResult struct {
	Seed   int64             `json:"seed"`
	Result simulation.Result `json:"result"`
}

func summarise(results []seededResult) batchSummary {
	s := batchSummary{Runs: len(results)}
	if len(results) == 0 {
		return s
	}
	lives, score := 0, 0
	s.Worst = results[0].Result.FinalRound
	s.BestSeed, s.BestScore = results[0].Seed, results[0].Result.Score
	for _, r := range results {
		if r.Result.IsVictory {
			s.Victories++
		}
		lives += r.Result.FinalLives
		score += r.Result.Score
		if r.Result.Score > s.BestScore {
			s.BestSeed, s.BestScore = r.Seed, r.Result.Score
		}
		s.Worst = min(s.Worst, r.Result.FinalRound)
	}
	n := float64(len(results))
	s.WinRate = float64(s.Victories) / n
	s.AvgLives = float64(lives) / n
	s.AvgScore = float64(score) / n
	return s
}

func runBatch(_ *cobra.Command, _ []string) {
	if flagRuns <= 0 {
		fail("--runs must be positive")
	}
	ctx, cancel := signalContext()
	defer cancel()

	sc := loadScenario()
	base := effectiveSeed(sc)
	plan := loadPlan()

	results := make([]seededResult, flagRuns)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(flagParallel, 1))
	for i := range flagRuns {
		seed := base + int64(i)
		g.Go(func() error {
			opts := game.Options{Seed: &seed, Plan: &plan, Logger: logger.With("seed", seed), TickRate: settings.TickRate}
			res, err := game.Simulate(gctx, sc, opts, simOptions)
			if err != nil {
				return err
			}
			results[i] = seededResult{Seed: seed, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fail("batch aborted: %v", err)
	}

	if flagSave {
		store := openStore()
		defer store.Close()
		for _, r := range results {
			if _, err := store.SaveRun(storage.RunFromResult(sc.Name, strategyName(), r.Seed, r.Result)); err != nil {
				fail("saving run: %v", err)
			}
		}
	}

	sum := summarise(results)
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"summary": sum, "results": results}); err != nil {
			fail("%v", err)
		}
		return
	}

	p := message.NewPrinter(language.English)
	p.Printf("Scenario %s, seeds %d..%d\n\n", sc.Name, base, base+int64(flagRuns)-1)
	p.Printf("  %-8s  %-10s  %5s  %5s  %8s  %8s\n", "Seed", "Outcome", "Round", "Lives", "Money", "Score")
	for _, r := range results {
		res := r.Result
		p.Printf("  %-8d  %-10s  %5d  %5d  %8d  %8d\n", r.Seed, res.Outcome, res.FinalRound, res.FinalLives, res.FinalMoney, res.Score)
	}
	p.Printf("\nVictories:  %d/%d (%.1f%%)\n", sum.Victories, sum.Runs, sum.WinRate*100)
	p.Printf("Avg lives:  %.2f\n", sum.AvgLives)
	p.Printf("Avg score:  %.1f\n", sum.AvgScore)
	p.Printf("Best:       seed %d with %d points\n", sum.BestSeed, sum.BestScore)
	p.Printf("Worst:      reached round %d\n", sum.Worst)
}
