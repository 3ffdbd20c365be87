package cardview

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chartcard/internal/chart"
	"github.com/verte-zerg/chartcard/internal/model"
)

func testCard(kind chart.Kind) *chart.Card {
	cfg := model.CardConfig{
		Title:       "API Requests",
		Description: "Gateway traffic",
		Color:       chart.DefaultColor,
		ChartHeight: 200,
	}
	ds := chart.Datasets{
		model.PeriodDay: {
			{Value: 1200, Label: "Mon"}, {Value: 1400, Label: "Tue"}, {Value: 900, Label: "Wed"},
		},
	}
	c := chart.NewCard(Options(cfg, kind), ds)
	c.Resize(ContainerWidth(80))
	return c
}

func TestLayoutMatchesTerminalCells(t *testing.T) {
	c := testCard(chart.KindLine)
	cols, rows := PlotSize(c.Dimensions())
	assert.Equal(t, 76, cols)
	assert.Equal(t, 10, rows)
}

func TestRowsForHeight(t *testing.T) {
	assert.Equal(t, 10, RowsForHeight(200))
	assert.Equal(t, 3, RowsForHeight(0))
	assert.Equal(t, 15, RowsForHeight(300))
}

func TestPlotRowsHaveFixedWidth(t *testing.T) {
	for _, kind := range []chart.Kind{chart.KindLine, chart.KindBar} {
		c := testCard(kind)
		c.PointerEnter(1)
		rows := Plot(c.Scene(), NewStyles(chart.DefaultColor), false)
		require.Len(t, rows, 10)
		for _, row := range rows {
			assert.Equal(t, 76, runewidth.StringWidth(row), string(kind))
		}
	}
}

func TestRenderPlainCard(t *testing.T) {
	c := testCard(chart.KindBar)
	out := Render(c.Scene(), NewStyles(chart.DefaultColor), false)

	assert.Contains(t, out, "API Requests")
	assert.Contains(t, out, "Gateway traffic")
	assert.Contains(t, out, "[Day]")
	assert.Contains(t, out, " Week ")
	assert.NotContains(t, out, "Tue: 1,400")

	last := out[strings.LastIndex(out, "\n")+1:]
	assert.Contains(t, last, "Mon")
	assert.Contains(t, last, "Tue")
	assert.Contains(t, last, "Wed")
	assert.Less(t, strings.Index(last, "Mon"), strings.Index(last, "Tue"))
}

func TestRenderShowsTooltipForHover(t *testing.T) {
	c := testCard(chart.KindLine)
	c.PointerEnter(1)
	out := Render(c.Scene(), NewStyles(chart.DefaultColor), false)
	assert.Contains(t, out, "Tue: 1,400")
}

func TestBarsFillDots(t *testing.T) {
	c := testCard(chart.KindBar)
	rows := Plot(c.Scene(), NewStyles(chart.DefaultColor), false)
	bottom := rows[len(rows)-1]
	assert.Contains(t, bottom, string(rune(0x28FF)))
}

func TestLabelsSkipOverlaps(t *testing.T) {
	s := chart.Scene{
		Dims: model.Dimensions{Width: 19, Height: 11},
		Labels: []chart.Label{
			{Text: "January", X: 0},
			{Text: "February", X: 1},
			{Text: "March", X: 18},
		},
	}
	row := Labels(s)
	assert.Equal(t, 10, runewidth.StringWidth(row))
	assert.True(t, strings.HasPrefix(row, "Ja"))
	assert.True(t, strings.HasSuffix(row, "Ma"))
}
