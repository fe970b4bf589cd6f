package strategy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/towerdefense/internal/core"
)

// Config is a declarative placement plan.
type Config struct {
	InitialWave    InitialWave        `yaml:"initial_wave" json:"initial_wave"`
	WaveUpgrades   map[string]Upgrade `yaml:"wave_upgrades" json:"wave_upgrades"`
	Fallback       Fallback           `yaml:"fallback_strategy" json:"fallback_strategy"`
	CostThresholds map[string]int     `yaml:"cost_thresholds" json:"cost_thresholds"`
}

// InitialWave is bought in the first round.
type InitialWave struct {
	Category           string     `yaml:"building_category" json:"building_category"`
	Positions          []core.Vec `yaml:"positions" json:"positions"`
	MaxCostPerBuilding int        `yaml:"max_cost_per_building" json:"max_cost_per_building"`
}

// Upgrade is a later purchase unlocked by its key's round and by money.
type Upgrade struct {
	Category      string   `yaml:"building_category" json:"building_category"`
	CostThreshold int      `yaml:"cost_threshold" json:"cost_threshold"`
	Position      core.Vec `yaml:"position" json:"position"`
}

// Fallback selects what to buy when no planned purchase is affordable.
type Fallback struct {
	UseDefaultType    bool `yaml:"use_default_type" json:"use_default_type"`
	UseCheapestType   bool `yaml:"use_cheapest_type" json:"use_cheapest_type"`
	EmergencyFallback bool `yaml:"emergency_fallback" json:"emergency_fallback"`
}

// Keys in CostThresholds with a meaning to the engine.
const (
	ThresholdReserve        = "reserve"         // money the cheapest fallback keeps back
	ThresholdEmergencyLives = "emergency_lives" // lives at or below which the emergency fallback fires
)

// Validate checks the plan for values the engine cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.InitialWave.MaxCostPerBuilding < 0 {
		errs = append(errs, errors.New("initial_wave.max_cost_per_building is negative"))
	}
	for i, p := range c.InitialWave.Positions {
		if !p.IsFinite() {
			errs = append(errs, fmt.Errorf("initial_wave.positions[%d] is not finite", i))
		}
	}
	for key, u := range c.WaveUpgrades {
		if _, err := ParseUpgradeKey(key); err != nil {
			errs = append(errs, err)
		}
		if u.CostThreshold < 0 {
			errs = append(errs, fmt.Errorf("wave_upgrades.%s.cost_threshold is negative", key))
		}
		if !u.Position.IsFinite() {
			errs = append(errs, fmt.Errorf("wave_upgrades.%s.position is not finite", key))
		}
	}
	for name, v := range c.CostThresholds {
		if v < 0 {
			errs = append(errs, fmt.Errorf("cost_thresholds.%s is negative", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	return nil
}

// ParseUpgradeKey returns the round an upgrade unlocks in. Keys look like
// "round_3", "wave_3" or "3", optionally followed by a "_suffix" to allow
// several upgrades per round ("round_3_left").
func ParseUpgradeKey(key string) (int, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(key, "round_"), "wave_")
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid upgrade key %q", key)
	}
	return n, nil
}
