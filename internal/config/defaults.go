package config

import (
	_ "embed"

	"github.com/vovakirdan/towerdefense/internal/strategy"
)

//go:embed defaults/scenario.yaml
var defaultScenarioYAML []byte

//go:embed defaults/strategy.yaml
var defaultStrategyYAML []byte

// DefaultStrategy returns a plan that only uses the fallback purchases.
func DefaultStrategy() strategy.Config {
	return strategy.Config{
		Fallback: strategy.Fallback{
			UseDefaultType:    true,
			UseCheapestType:   true,
			EmergencyFallback: true,
		},
		CostThresholds: map[string]int{
			strategy.ThresholdReserve:        50,
			strategy.ThresholdEmergencyLives: 5,
		},
	}
}
