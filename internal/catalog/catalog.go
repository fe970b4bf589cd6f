package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// Catalog is the in-memory implementation of Buildings, Enemies and Waves.
// It is immutable after New.
type Catalog struct {
	buildings map[string]BuildingDef
	ordered   []BuildingDef
	enemies   map[string]EnemyDef
	rounds    []RoundDefinition
}

// New validates the definitions and builds a catalog.
func New(buildings []BuildingDef, enemies []EnemyDef, rounds []RoundDefinition) (*Catalog, error) {
	c := &Catalog{
		buildings: make(map[string]BuildingDef, len(buildings)),
		enemies:   make(map[string]EnemyDef, len(enemies)),
	}

	var errs []error
	for _, b := range buildings {
		switch {
		case b.Type == "":
			errs = append(errs, errors.New("building type is required"))
			continue
		case b.Cost < 0:
			errs = append(errs, fmt.Errorf("building %q: negative cost", b.Type))
		case b.FireRate < 0 || b.Damage < 0 || b.Range < 0:
			errs = append(errs, fmt.Errorf("building %q: negative stats", b.Type))
		}
		if _, dup := c.buildings[b.Type]; dup {
			errs = append(errs, fmt.Errorf("building %q defined twice", b.Type))
			continue
		}
		c.buildings[b.Type] = b
		c.ordered = append(c.ordered, b)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		if c.ordered[i].Cost != c.ordered[j].Cost {
			return c.ordered[i].Cost < c.ordered[j].Cost
		}
		return c.ordered[i].Type < c.ordered[j].Type
	})

	for _, e := range enemies {
		switch {
		case e.Type == "":
			errs = append(errs, errors.New("enemy type is required"))
			continue
		case e.Health <= 0:
			errs = append(errs, fmt.Errorf("enemy %q: health must be positive", e.Type))
		case e.Bounty < 0 || e.Points < 0 || e.Damage < 0 || e.Speed < 0:
			errs = append(errs, fmt.Errorf("enemy %q: negative stats", e.Type))
		}
		if _, dup := c.enemies[e.Type]; dup {
			errs = append(errs, fmt.Errorf("enemy %q defined twice", e.Type))
			continue
		}
		c.enemies[e.Type] = e
	}

	if len(rounds) == 0 {
		errs = append(errs, errors.New("at least one round is required"))
	}
	for i, r := range rounds {
		if r.Number != i+1 {
			errs = append(errs, fmt.Errorf("round %d: expected number %d", r.Number, i+1))
		}
		if len(r.Waves) == 0 {
			errs = append(errs, fmt.Errorf("round %d: no waves", r.Number))
		}
		for wi, w := range r.Waves {
			if w.BonusMoney < 0 || w.PreWaveDelay < 0 || w.PostWaveDelay < 0 {
				errs = append(errs, fmt.Errorf("round %d wave %d: negative bonus or delay", r.Number, wi))
			}
			if w.TotalEnemies() == 0 {
				errs = append(errs, fmt.Errorf("round %d wave %d: no enemies", r.Number, wi))
			}
			for _, g := range w.EnemyGroups {
				if _, ok := c.enemies[g.EnemyType]; !ok {
					errs = append(errs, fmt.Errorf("round %d wave %d: unknown enemy %q", r.Number, wi, g.EnemyType))
				}
				if g.Count < 0 || g.SpawnInterval < 0 {
					errs = append(errs, fmt.Errorf("round %d wave %d: negative count or interval", r.Number, wi))
				}
			}
		}
	}
	c.rounds = make([]RoundDefinition, len(rounds))
	for i, r := range rounds {
		c.rounds[i] = r.Clone()
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

// Building returns the definition for a building type.
func (c *Catalog) Building(buildingType string) (BuildingDef, bool) {
	b, ok := c.buildings[buildingType]
	return b, ok
}

// BuildingTypes returns all buildings sorted by cost, then type.
func (c *Catalog) BuildingTypes() []BuildingDef {
	out := make([]BuildingDef, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Enemy returns the definition for an enemy type.
func (c *Catalog) Enemy(enemyType string) (EnemyDef, bool) {
	e, ok := c.enemies[enemyType]
	return e, ok
}

// EnemyTypes returns all enemies sorted by type.
func (c *Catalog) EnemyTypes() []EnemyDef {
	out := make([]EnemyDef, 0, len(c.enemies))
	for _, e := range c.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Round returns a copy of round number n, counting from 1.
func (c *Catalog) Round(n int) (RoundDefinition, bool) {
	if n < 1 || n > len(c.rounds) {
		return RoundDefinition{}, false
	}
	return c.rounds[n-1].Clone(), true
}

// RoundCount returns the number of rounds in the match.
func (c *Catalog) RoundCount() int {
	return len(c.rounds)
}

// Cheapest returns the lowest-cost building. An empty category matches all.
func Cheapest(b Buildings, category string) (BuildingDef, bool) {
	for _, def := range b.BuildingTypes() {
		if category == "" || def.Category == category {
			return def, true
		}
	}
	return BuildingDef{}, false
}

// Best returns the most expensive building of a category whose cost does
// not exceed maxCost. An empty category matches all.
func Best(b Buildings, category string, maxCost int) (BuildingDef, bool) {
	var best BuildingDef
	found := false
	for _, def := range b.BuildingTypes() {
		if def.Cost > maxCost {
			break
		}
		if category == "" || def.Category == category {
			best, found = def, true
		}
	}
	return best, found
}
