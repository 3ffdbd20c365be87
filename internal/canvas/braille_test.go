package canvas

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetComposesBrailleCell(t *testing.T) {
	c := New(2, 1, 1)
	c.Set(0, 0, 0)
	c.Set(0, 1, 3)

	r, layer := c.Cell(0, 0)
	assert.Equal(t, rune(0x2800+0x01+0x80), r)
	assert.Equal(t, 0, layer)

	r, layer = c.Cell(1, 0)
	assert.Equal(t, ' ', r)
	assert.Equal(t, -1, layer)
}

func TestOutOfRangeDotsAreDropped(t *testing.T) {
	c := New(1, 1, 1)
	c.Set(0, -1, 0)
	c.Set(0, 2, 0)
	c.Set(0, 0, 4)
	c.Set(3, 0, 0)
	_, layer := c.Cell(0, 0)
	assert.Equal(t, -1, layer)
}

func TestLowestLayerWinsColor(t *testing.T) {
	c := New(1, 1, 2)
	c.Set(1, 0, 0)
	c.Set(0, 1, 1)
	r, layer := c.Cell(0, 0)
	assert.Equal(t, 0, layer)
	assert.Equal(t, rune(0x2800+0x01+0x10), r)
}

func TestLineVisitsEndpoints(t *testing.T) {
	var got [][2]int
	drawLine(0, 0, 3, 2, func(x, y int) {
		got = append(got, [2]int{x, y})
	})
	assert.Equal(t, [2]int{0, 0}, got[0])
	assert.Equal(t, [2]int{3, 2}, got[len(got)-1])
	assert.Len(t, got, 4)
}

func TestFillRectNormalizesCorners(t *testing.T) {
	c := New(2, 1, 1)
	c.FillRect(0, 3, 3, 0, 0)
	r, _ := c.Cell(0, 0)
	assert.Equal(t, rune(0x28FF), r)
	r, _ = c.Cell(1, 0)
	assert.Equal(t, rune(0x28FF), r)
}

func TestDotSize(t *testing.T) {
	c := New(10, 3, 1)
	assert.Equal(t, 20, c.DotWidth())
	assert.Equal(t, 12, c.DotHeight())
	assert.Equal(t, 3, Round(2.5))
}

func TestShouldUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	assert.False(t, ShouldUseColor(&buf, false))
	assert.True(t, ShouldUseColor(&buf, true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldUseColor(&buf, true))
}
