// Package catalog holds the read-only building, enemy and wave definitions
// a match is played with.
package catalog

// BuildingDef holds the static data for one building type.
type BuildingDef struct {
	Type     string  `yaml:"type" json:"type"`
	Name     string  `yaml:"name" json:"name"`
	Category string  `yaml:"category" json:"category"`
	Cost     int     `yaml:"cost" json:"cost"`
	Damage   float64 `yaml:"damage" json:"damage"`
	Range    float64 `yaml:"range" json:"range"`
	FireRate float64 `yaml:"fire_rate" json:"fire_rate"` // shots per second
	Symbol   string  `yaml:"symbol" json:"symbol"`
}

// DPS returns the sustained damage per second of one building.
func (b BuildingDef) DPS() float64 {
	return b.Damage * b.FireRate
}

// EnemyDef holds the static data for one enemy type.
type EnemyDef struct {
	Type   string  `yaml:"type" json:"type"`
	Name   string  `yaml:"name" json:"name"`
	Health float64 `yaml:"health" json:"health"`
	Speed  float64 `yaml:"speed" json:"speed"`   // cells per second
	Bounty int     `yaml:"bounty" json:"bounty"` // money on defeat
	Points int     `yaml:"points" json:"points"` // score on defeat
	Damage int     `yaml:"damage" json:"damage"` // lives lost on leak
}

// EnemyGroup is a run of identical spawns inside a wave.
type EnemyGroup struct {
	EnemyType     string  `yaml:"enemy_type" json:"enemy_type"`
	Count         int     `yaml:"count" json:"count"`
	SpawnInterval float64 `yaml:"spawn_interval" json:"spawn_interval"` // seconds
}

// WaveDefinition describes one scripted group of spawns within a round.
type WaveDefinition struct {
	WaveNumber    int          `yaml:"wave_number" json:"wave_number"`
	Name          string       `yaml:"name" json:"name"`
	EnemyGroups   []EnemyGroup `yaml:"enemy_groups" json:"enemy_groups"`
	PreWaveDelay  float64      `yaml:"pre_wave_delay" json:"pre_wave_delay"`
	PostWaveDelay float64      `yaml:"post_wave_delay" json:"post_wave_delay"`
	BonusMoney    int          `yaml:"bonus_money" json:"bonus_money"`
}

// TotalEnemies sums the group counts.
func (w WaveDefinition) TotalEnemies() int {
	total := 0
	for _, g := range w.EnemyGroups {
		total += g.Count
	}
	return total
}

// Clone returns a copy that shares no slices with w.
func (w WaveDefinition) Clone() WaveDefinition {
	w.EnemyGroups = append([]EnemyGroup(nil), w.EnemyGroups...)
	return w
}

// RoundDefinition groups the waves of one round.
type RoundDefinition struct {
	Number int              `yaml:"number" json:"number"`
	Name   string           `yaml:"name" json:"name"`
	Waves  []WaveDefinition `yaml:"waves" json:"waves"`
}

// Clone returns a deep copy of r.
func (r RoundDefinition) Clone() RoundDefinition {
	waves := make([]WaveDefinition, len(r.Waves))
	for i, w := range r.Waves {
		waves[i] = w.Clone()
	}
	r.Waves = waves
	return r
}

// Buildings looks up building definitions.
type Buildings interface {
	Building(buildingType string) (BuildingDef, bool)
	BuildingTypes() []BuildingDef
}

// Enemies looks up enemy definitions.
type Enemies interface {
	Enemy(enemyType string) (EnemyDef, bool)
}

// Waves looks up round definitions by 1-based number.
type Waves interface {
	Round(number int) (RoundDefinition, bool)
	RoundCount() int
}
