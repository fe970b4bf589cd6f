package config

import (
	"math"
	"slices"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset returns the preset for a flag value.
func ParsePreset(s string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, true
	case "":
		return DifficultyNormal, true
	}
	return "", false
}

// presetScale holds the multipliers a preset applies to a scenario.
type presetScale struct {
	health float64
	money  float64
	lives  float64
}

func scaleFor(preset DifficultyPreset) presetScale {
	switch preset {
	case DifficultyEasy:
		return presetScale{health: 0.75, money: 1.5, lives: 1.5}
	case DifficultyHard:
		return presetScale{health: 1.4, money: 0.8, lives: 0.5}
	default:
		return presetScale{health: 1, money: 1, lives: 1}
	}
}

// ApplyPreset scales enemy health, starting money and lives of s.
// Lives never drop below 1. The enemy list is copied first, so scenarios
// sharing it are unaffected.
func ApplyPreset(s *Scenario, preset DifficultyPreset) {
	sc := scaleFor(preset)
	s.Enemies = slices.Clone(s.Enemies)
	for i := range s.Enemies {
		s.Enemies[i].Health = math.Round(s.Enemies[i].Health*sc.health*10) / 10
	}
	s.Rules.StartingMoney = int(math.Round(float64(s.Rules.StartingMoney) * sc.money))
	s.Rules.StartingLives = max(1, int(math.Round(float64(s.Rules.StartingLives)*sc.lives)))
}
