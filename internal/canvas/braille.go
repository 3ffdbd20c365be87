// Package canvas provides a layered braille dot canvas for terminal charts.
package canvas

import (
	"math"
)

// Canvas is a grid of braille cells, 2 dots wide and 4 dots tall each. Layers are drawn
// independently; when several layers touch a cell the lowest layer index wins its color.
type Canvas struct {
	cols   int
	rows   int
	layers [][][]uint8
}

// New returns a canvas of cols x rows cells with the given number of layers.
func New(cols, rows, layers int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	if layers < 1 {
		layers = 1
	}
	c := &Canvas{cols: cols, rows: rows, layers: make([][][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = makeCells(rows, cols)
	}
	return c
}

// Cols returns the width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in cells.
func (c *Canvas) Rows() int { return c.rows }

// DotWidth returns the width in dots.
func (c *Canvas) DotWidth() int { return c.cols * 2 }

// DotHeight returns the height in dots.
func (c *Canvas) DotHeight() int { return c.rows * 4 }

// Set lights the dot at x, y on layer. Out of range dots are dropped.
func (c *Canvas) Set(layer, x, y int) {
	if layer < 0 || layer >= len(c.layers) {
		return
	}
	setBrailleDot(c.layers[layer], x, y)
}

// Line draws a straight dot line between two points.
func (c *Canvas) Line(layer, x0, y0, x1, y1 int) {
	drawLine(x0, y0, x1, y1, func(x, y int) {
		c.Set(layer, x, y)
	})
}

// FillRect lights every dot in the inclusive rectangle.
func (c *Canvas) FillRect(layer, x0, y0, x1, y1 int) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(layer, x, y)
		}
	}
}

// Cell returns the composed braille rune at a cell and the lowest layer that touched it,
// or -1 for an empty cell.
func (c *Canvas) Cell(x, y int) (rune, int) {
	mask, layer := composeCell(c.layers, x, y)
	if layer < 0 {
		return ' ', -1
	}
	return brailleFromMask(mask), layer
}

// Round converts a float coordinate to the nearest dot index.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	layerIdx := -1
	for i, cells := range layers {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if layerIdx == -1 {
			layerIdx = i
		}
		mask |= cellMask
	}
	return mask, layerIdx
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) {
		return
	}
	if cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
