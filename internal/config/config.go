// Package config loads match scenarios and placement plans from YAML and
// process settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/towerdefense/internal/catalog"
	"github.com/vovakirdan/towerdefense/internal/core"
)

// Scenario contains everything needed to set up one match.
type Scenario struct {
	Name            string                    `yaml:"name"`
	TickRate        int                       `yaml:"tick_rate"`
	Seed            int64                     `yaml:"seed"`
	Rules           Rules                     `yaml:"rules"`
	Map             Map                       `yaml:"map"`
	Combat          Combat                    `yaml:"combat"`
	DefaultBuilding string                    `yaml:"default_building"`
	Buildings       []catalog.BuildingDef     `yaml:"buildings"`
	Enemies         []catalog.EnemyDef        `yaml:"enemies"`
	Rounds          []catalog.RoundDefinition `yaml:"rounds"`
}

// Rules defines the economy and pacing of a match.
type Rules struct {
	StartingMoney     int     `yaml:"starting_money"`
	StartingLives     int     `yaml:"starting_lives"`
	PreparationTime   float64 `yaml:"preparation_time"` // seconds before each round
	AutoStartRounds   bool    `yaml:"auto_start_rounds"`
	SellRefundPercent int     `yaml:"sell_refund_percent"`
	WaveClearScore    int     `yaml:"wave_clear_score"`
}

// Map defines the board. Path lists the route corners in order; each
// leg must be horizontal or vertical.
type Map struct {
	Width       int         `yaml:"width"`
	Height      int         `yaml:"height"`
	AbyssBuffer int         `yaml:"abyss_buffer"`
	Path        []core.Cell `yaml:"path"`
	Blocked     []core.Cell `yaml:"blocked"`
}

// Combat tunes the built-in combat model.
type Combat struct {
	Variance float64 `yaml:"variance"` // 0.2 = damage rolls within ±20%
}

// Runtime returns the timing parameters of the scenario.
func (s Scenario) Runtime() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if s.TickRate > 0 {
		rc.TickRate = s.TickRate
	}
	if s.Seed != 0 {
		rc.Seed = s.Seed
	}
	return rc
}

// Validate checks the fields the loaders cannot express in YAML types.
// Catalog and board consistency is checked when they are built.
func (s Scenario) Validate() error {
	var errs []error
	if s.TickRate < 0 {
		errs = append(errs, fmt.Errorf("tick_rate %d is negative", s.TickRate))
	}
	if s.Rules.SellRefundPercent < 0 || s.Rules.SellRefundPercent > 100 {
		errs = append(errs, fmt.Errorf("rules.sell_refund_percent %d is outside 0..100", s.Rules.SellRefundPercent))
	}
	if s.Combat.Variance < 0 || s.Combat.Variance >= 1 {
		errs = append(errs, fmt.Errorf("combat.variance %g is outside [0, 1)", s.Combat.Variance))
	}
	if len(s.Rounds) == 0 {
		errs = append(errs, errors.New("no rounds"))
	}
	if s.DefaultBuilding != "" {
		found := false
		for _, b := range s.Buildings {
			if b.Type == s.DefaultBuilding {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("default_building %q is not a building", s.DefaultBuilding))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid scenario %q: %w", s.Name, err)
	}
	return nil
}
