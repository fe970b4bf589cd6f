// Package core provides fundamental types and utilities shared by the match
// engine and its adapters. It has no external dependencies so that the
// simulation core stays pure and testable.
package core

import (
	"fmt"
	"math"
)

// Vec is a point on the match map in world units.
type Vec struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V creates a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Cell returns the grid cell containing the point.
func (v Vec) Cell() Cell {
	return Cell{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// IsFinite reports whether both coordinates are real numbers.
func (v Vec) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// String formats the point as "(x, y)".
func (v Vec) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Cell is an integer grid coordinate. Buildings occupy exactly one cell.
type Cell struct {
	X, Y int
}

// Center returns the world-space center of the cell.
func (c Cell) Center() Vec {
	return Vec{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5}
}

// Rect represents an axis-aligned rectangle of cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Inset shrinks the rectangle by n cells on every side.
// The result never has negative dimensions.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Contains returns true if the cell (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsVec returns true if the world point lies inside the rectangle.
func (r Rect) ContainsVec(v Vec) bool {
	return v.X >= float64(r.X) && v.X < float64(r.Right()) &&
		v.Y >= float64(r.Y) && v.Y < float64(r.Bottom())
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
