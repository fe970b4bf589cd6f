package main

import (
	"context"
	"testing"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/simulation"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		res  simulation.Result
		err  error
		want int
	}{
		{"victory", simulation.CreateSuccess(100, 5, 30), nil, 0},
		{"game over", simulation.Failure(), nil, 1},
		{"max ticks", simulation.Aborted(simulation.OutcomeMaxTicks, "max_ticks"), nil, 1},
		{"cancelled", simulation.Aborted(simulation.OutcomeCancelled, "cancelled"), context.Canceled, 1},
	}
	for _, c := range cases {
		if got := exitCode(c.res, c.err); got != c.want {
			t.Errorf("%s: Expected exit code %d, got %d", c.name, c.want, got)
		}
	}
}

func TestEffectiveSeedAcceptsZero(t *testing.T) {
	sc := config.Scenario{Seed: 11}
	if got := effectiveSeed(sc); got != 11 {
		t.Fatalf("Expected scenario seed 11 without --seed, got %d", got)
	}

	flags := rootCmd.PersistentFlags()
	if err := flags.Set("seed", "0"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	defer func() {
		flags.Lookup("seed").Changed = false
		flagSeed = 0
	}()
	if got := effectiveSeed(sc); got != 0 {
		t.Errorf("Expected --seed 0 to be used, got %d", got)
	}
}
