package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/towerdefense/internal/strategy"
)

// LoadScenario loads a match scenario.
// Search order: customPath -> ~/.towersim/scenarios/scenario.yaml -> ./configs/scenario.yaml -> embedded default
func LoadScenario(customPath string) (Scenario, error) {
	cfg, err := load[Scenario](customPath, "scenarios", "scenario.yaml", defaultScenarioYAML)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadStrategy loads a placement plan.
// Search order: customPath -> ~/.towersim/strategies/strategy.yaml -> ./configs/strategy.yaml -> embedded default
func LoadStrategy(customPath string) (strategy.Config, error) {
	cfg, err := load[strategy.Config](customPath, "strategies", "strategy.yaml", defaultStrategyYAML)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: invalid strategy: %w", err)
	}
	return cfg, nil
}

// ParseScenario decodes a scenario from YAML bytes.
func ParseScenario(data []byte) (Scenario, error) {
	var cfg Scenario
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse scenario: %w", err)
	}
	return cfg, cfg.Validate()
}

// load walks the search order. A custom path must exist and parse; the
// user and local files are skipped when missing or malformed.
func load[T any](customPath, kind, name string, embedded []byte) (T, error) {
	var cfg T

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(kind, name); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			var user T
			if err := yaml.Unmarshal(data, &user); err == nil {
				return user, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", name)); err == nil {
		var local T
		if err := yaml.Unmarshal(data, &local); err == nil {
			return local, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(embedded, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse embedded %s: %w", name, err)
	}
	return cfg, nil
}

// userConfigPath returns ~/.towersim/<kind>/<name>, or "" without a home.
func userConfigPath(kind, name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".towersim", kind, name)
}
