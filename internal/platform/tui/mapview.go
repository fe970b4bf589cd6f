package tui

import (
	"unicode"
	"unicode/utf8"

	"github.com/vovakirdan/towerdefense/internal/board"
	"github.com/vovakirdan/towerdefense/internal/combat"
	"github.com/vovakirdan/towerdefense/internal/core"
	"github.com/vovakirdan/towerdefense/internal/placement"
)

// Map glyphs.
const (
	glyphGround  = '·'
	glyphAbyss   = ' '
	glyphPath    = '░'
	glyphBlocked = '▲'
	glyphEnemy   = '●'
	glyphCursor  = '+'
)

// MapView is everything drawn on the map area.
type MapView struct {
	Board     *board.Grid
	Buildings []placement.Building
	Enemies   []combat.Enemy
	Symbols   map[string]rune // building type to glyph
	Cursor    core.Cell
	HasCursor bool
}

// MapSize returns the screen size DrawMap needs for g, border included.
func MapSize(g *board.Grid) (w, h int) {
	return g.Width() + 2, g.Height() + 2
}

// DrawMap renders v onto s with a one-cell border; map cell (x, y) lands on
// screen cell (x+1, y+1).
func DrawMap(s *core.Screen, v MapView) {
	s.Clear()
	g := v.Board
	w, h := MapSize(g)
	s.DrawBox(core.NewRect(0, 0, w, h), core.ColorGray)

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			c := core.Cell{X: x, Y: y}
			r, col := glyphGround, core.ColorGray
			switch g.Terrain(c) {
			case board.Path:
				r, col = glyphPath, core.ColorYellow
			case board.Blocked:
				r, col = glyphBlocked, core.ColorOrange
			default:
				if g.IsInAbyssBufferZone(c.Center()) {
					r = glyphAbyss
				}
			}
			s.Set(x+1, y+1, r, col)
		}
	}

	for _, b := range v.Buildings {
		c := b.Cell()
		s.Set(c.X+1, c.Y+1, symbolFor(v.Symbols, b.Type), core.ColorBrightGreen)
	}

	for _, e := range v.Enemies {
		c := e.Position.Cell()
		col := core.ColorBrightRed
		if e.MaxHealth > 0 && e.Health < e.MaxHealth/2 {
			col = core.ColorRed
		}
		s.Set(c.X+1, c.Y+1, enemyGlyph(e.Type), col)
	}

	if v.HasCursor {
		x, y := v.Cursor.X+1, v.Cursor.Y+1
		under := s.Get(x, y)
		r := under.R
		if r == glyphGround || r == glyphAbyss || r == glyphPath {
			r = glyphCursor
		}
		s.Set(x, y, r, core.ColorCyan)
	}
}

// enemyGlyph returns the lower-case initial of an enemy type.
func enemyGlyph(enemyType string) rune {
	r, _ := utf8.DecodeRuneInString(enemyType)
	if r == utf8.RuneError {
		return glyphEnemy
	}
	return unicode.ToLower(r)
}

// symbolFor returns the building glyph, falling back to the type's
// first letter.
func symbolFor(symbols map[string]rune, buildingType string) rune {
	if r, ok := symbols[buildingType]; ok {
		return r
	}
	r, _ := utf8.DecodeRuneInString(buildingType)
	if r == utf8.RuneError {
		return '?'
	}
	return r
}
