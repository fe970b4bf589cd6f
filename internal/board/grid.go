// Package board implements the map-boundary rules of a match: which cells
// exist, which can hold a building, and the route enemies walk.
package board

import (
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/towerdefense/internal/core"
)

// Terrain classifies a cell.
type Terrain byte

const (
	Ground  Terrain = iota // buildable
	Path                   // enemy route
	Blocked                // rock, water
)

// Grid is a rectangular map with an abyss buffer along its edges.
// It is immutable after New.
type Grid struct {
	width, height int
	abyss         int
	terrain       []Terrain
	waypoints     []core.Vec
	segments      []float64 // cumulative length at each waypoint
}

// Config describes a map.
type Config struct {
	Width       int
	Height      int
	AbyssBuffer int         // cells along each edge where nothing may be built
	Path        []core.Cell // waypoints; consecutive points share a row or column
	Blocked     []core.Cell
}

// New builds a grid, marking every cell between consecutive waypoints as
// path.
func New(cfg Config) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("board: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.AbyssBuffer < 0 || 2*cfg.AbyssBuffer >= min(cfg.Width, cfg.Height) {
		return nil, fmt.Errorf("board: abyss buffer %d leaves no room", cfg.AbyssBuffer)
	}
	if len(cfg.Path) < 2 {
		return nil, errors.New("board: path needs at least two waypoints")
	}

	g := &Grid{
		width:   cfg.Width,
		height:  cfg.Height,
		abyss:   cfg.AbyssBuffer,
		terrain: make([]Terrain, cfg.Width*cfg.Height),
	}
	for _, c := range cfg.Blocked {
		if !g.inBounds(c.X, c.Y) {
			return nil, fmt.Errorf("board: blocked cell %v out of bounds", c)
		}
		g.terrain[c.Y*g.width+c.X] = Blocked
	}

	total := 0.0
	for i, wp := range cfg.Path {
		if !g.inBounds(wp.X, wp.Y) {
			return nil, fmt.Errorf("board: waypoint %v out of bounds", wp)
		}
		if i > 0 {
			prev := cfg.Path[i-1]
			if prev.X != wp.X && prev.Y != wp.Y {
				return nil, fmt.Errorf("board: waypoints %v and %v are not aligned", prev, wp)
			}
			g.markPath(prev, wp)
			total += float64(core.Abs(wp.X-prev.X) + core.Abs(wp.Y-prev.Y))
		}
		g.waypoints = append(g.waypoints, wp.Center())
		g.segments = append(g.segments, total)
	}
	return g, nil
}

func (g *Grid) markPath(from, to core.Cell) {
	dx, dy := sign(to.X-from.X), sign(to.Y-from.Y)
	for c := from; ; c = (core.Cell{X: c.X + dx, Y: c.Y + dy}) {
		g.terrain[c.Y*g.width+c.X] = Path
		if c == to {
			return
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Width returns the map width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the map height in cells.
func (g *Grid) Height() int { return g.height }

// Bounds returns the whole map as a rectangle.
func (g *Grid) Bounds() core.Rect {
	return core.NewRect(0, 0, g.width, g.height)
}

// Terrain returns the terrain at a cell; out-of-bounds cells are Blocked.
func (g *Grid) Terrain(c core.Cell) Terrain {
	if !g.inBounds(c.X, c.Y) {
		return Blocked
	}
	return g.terrain[c.Y*g.width+c.X]
}

// IsWithinMapBounds reports whether pos lies on the map.
func (g *Grid) IsWithinMapBounds(pos core.Vec) bool {
	return pos.IsFinite() && g.Bounds().ContainsVec(pos)
}

// IsInAbyssBufferZone reports whether pos lies in the unbuildable margin
// along the map edges. Points off the map count as abyss.
func (g *Grid) IsInAbyssBufferZone(pos core.Vec) bool {
	if !g.IsWithinMapBounds(pos) {
		return true
	}
	return !g.Bounds().Inset(g.abyss).ContainsVec(pos)
}

// CanBuildAtPosition reports whether the terrain at pos accepts a building.
// Occupancy is tracked by the building registry, not here.
func (g *Grid) CanBuildAtPosition(pos core.Vec) bool {
	if g.IsInAbyssBufferZone(pos) {
		return false
	}
	return g.Terrain(pos.Cell()) == Ground
}

// ClampToValidPosition moves pos to the center of the nearest cell inside
// the buildable interior. It does not account for terrain.
func (g *Grid) ClampToValidPosition(pos core.Vec) core.Vec {
	inner := g.Bounds().Inset(g.abyss)
	if !pos.IsFinite() {
		return core.Cell{X: inner.X, Y: inner.Y}.Center()
	}
	c := core.Cell{
		X: core.Clamp(int(math.Floor(pos.X)), inner.X, inner.Right()-1),
		Y: core.Clamp(int(math.Floor(pos.Y)), inner.Y, inner.Bottom()-1),
	}
	return c.Center()
}

// PathLength returns the route length in cells.
func (g *Grid) PathLength() float64 {
	return g.segments[len(g.segments)-1]
}

// PointAt returns the position reached after walking d cells along the
// route. d is clamped to [0, PathLength].
func (g *Grid) PointAt(d float64) core.Vec {
	d = core.ClampF(d, 0, g.PathLength())
	for i := 1; i < len(g.waypoints); i++ {
		if d <= g.segments[i] {
			span := g.segments[i] - g.segments[i-1]
			if span == 0 {
				return g.waypoints[i]
			}
			t := (d - g.segments[i-1]) / span
			a, b := g.waypoints[i-1], g.waypoints[i]
			return core.V(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
		}
	}
	return g.waypoints[len(g.waypoints)-1]
}

// Waypoints returns the route corners in world coordinates.
func (g *Grid) Waypoints() []core.Vec {
	out := make([]core.Vec, len(g.waypoints))
	copy(out, g.waypoints)
	return out
}
