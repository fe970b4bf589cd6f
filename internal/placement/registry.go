package placement

import (
	"sort"

	"github.com/vovakirdan/towerdefense/internal/core"
)

// Building is a placed structure. It is never mutated after creation.
type Building struct {
	ID       int      `json:"id"`
	Type     string   `json:"type"`
	Position core.Vec `json:"position"`
	CostPaid int      `json:"cost_paid"`
	PlayerID string   `json:"player_id,omitempty"`
	Round    int      `json:"round"`
}

// Cell returns the grid cell the building occupies.
func (b Building) Cell() core.Cell {
	return b.Position.Cell()
}

// Registry stores placed buildings and their occupied cells.
// Like the ledger it is single-writer and relies on the mediator lock.
type Registry struct {
	nextID int
	byID   map[int]Building
	byCell map[core.Cell]int
}

// NewRegistry creates an empty registry. Ids start at 1.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Add assigns the next id to b and stores it.
func (r *Registry) Add(b Building) Building {
	b.ID = r.nextID
	r.nextID++
	r.byID[b.ID] = b
	r.byCell[b.Cell()] = b.ID
	return b
}

// Get returns a building by id.
func (r *Registry) Get(id int) (Building, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// At returns the building occupying a cell.
func (r *Registry) At(c core.Cell) (Building, bool) {
	id, ok := r.byCell[c]
	if !ok {
		return Building{}, false
	}
	return r.byID[id], true
}

// IsOccupied reports whether a building stands on the cell containing pos.
func (r *Registry) IsOccupied(pos core.Vec) bool {
	_, ok := r.byCell[pos.Cell()]
	return ok
}

// Remove deletes a building by id.
func (r *Registry) Remove(id int) (Building, bool) {
	b, ok := r.byID[id]
	if !ok {
		return Building{}, false
	}
	delete(r.byID, id)
	delete(r.byCell, b.Cell())
	return b, true
}

// All returns the buildings ordered by id.
func (r *Registry) All() []Building {
	out := make([]Building, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of buildings.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Reset removes every building and restarts ids at 1.
func (r *Registry) Reset() {
	r.nextID = 1
	r.byID = make(map[int]Building)
	r.byCell = make(map[core.Cell]int)
}
