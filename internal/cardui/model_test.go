package cardui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verte-zerg/chartcard/internal/cardview"
	"github.com/verte-zerg/chartcard/internal/model"
	"github.com/verte-zerg/chartcard/internal/usage"
)

type stubSource struct {
	err   error
	block bool
}

func (s stubSource) GetUsageMetrics(ctx context.Context, orgID string) (model.UsageMetrics, error) {
	if s.block {
		<-ctx.Done()
		return model.UsageMetrics{}, ctx.Err()
	}
	if s.err != nil {
		return model.UsageMetrics{}, s.err
	}
	return usage.SampleMetrics(orgID), nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newLoadedModel mounts an 80x30 card and delivers the first metrics load.
func newLoadedModel(t *testing.T, src usage.Source) *Model {
	t.Helper()
	cfg := model.DefaultCardConfig()
	cfg.OrgID = usage.SampleOrgID
	m := NewModel(src, cfg, zap.NewNop())
	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.Update(cmd())
	return m
}

func TestInitLoadsDayDataset(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	assert.True(t, m.loaded)
	assert.False(t, m.loading)
	assert.Empty(t, m.errMsg)
	assert.Equal(t, model.PeriodDay, m.card.Period())
	points := m.card.Points()
	require.Len(t, points, 7)
	assert.Equal(t, "Mon", points[0].Label)
}

func TestWindowSizeRemeasures(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	dims := m.card.Dimensions()
	assert.Equal(t, 151.0, dims.Width)
	assert.Equal(t, 39.0, dims.Height)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	assert.Equal(t, 231.0, m.card.Dimensions().Width)
}

func TestShortWindowShrinksPlot(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 14})
	// body 9 rows: card header 2, labels 1, status 1
	assert.Equal(t, 19.0, m.card.Dimensions().Height)
}

func TestNarrowWindowShrinksPlot(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(tea.WindowSizeMsg{Width: 4, Height: 30})
	dims := m.card.Dimensions()
	assert.Equal(t, 0.0, dims.Width)
	cols, _ := cardview.PlotSize(dims)
	assert.Equal(t, 1, cols)

	for _, row := range cardview.Plot(m.card.Scene(), m.styles, false) {
		assert.Equal(t, 1, runewidth.StringWidth(row))
	}

	col, row := m.plotOrigin()
	_, _, ok := m.plotPosition(col, row)
	assert.True(t, ok)
	_, _, ok = m.plotPosition(col+1, row)
	assert.False(t, ok)
}

func TestPeriodKeys(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("w"))
	assert.Equal(t, model.PeriodWeek, m.card.Period())
	assert.Len(t, m.card.Points(), 4)

	m.Update(runes("3"))
	assert.Equal(t, model.PeriodMonth, m.card.Period())
	assert.Len(t, m.card.Points(), 12)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, model.PeriodDay, m.card.Period())
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, model.PeriodMonth, m.card.Period())
}

func TestPeriodSwitchClearsHover(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("]"))
	idx, ok := m.card.HoverIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	m.Update(runes("w"))
	_, ok = m.card.HoverIndex()
	assert.False(t, ok)
}

func TestKeyboardHover(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("["))
	idx, _ := m.card.HoverIndex()
	assert.Equal(t, 6, idx)
	m.Update(runes("["))
	idx, _ = m.card.HoverIndex()
	assert.Equal(t, 5, idx)
	assert.Contains(t, m.View(), "Sat: 800")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, ok := m.card.HoverIndex()
	assert.False(t, ok)
}

func TestMouseHover(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	col, row := m.plotOrigin()
	assert.Equal(t, 2, col)
	assert.Equal(t, 6, row)

	m.Update(tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionMotion})
	idx, ok := m.card.HoverIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	m.Update(tea.MouseMsg{X: col + 75, Y: row + 9, Action: tea.MouseActionMotion})
	idx, ok = m.card.HoverIndex()
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	m.Update(tea.MouseMsg{X: col + 10, Y: 0, Action: tea.MouseActionMotion})
	_, ok = m.card.HoverIndex()
	assert.False(t, ok)

	// Moving off the plot with nothing hovered stays idle.
	m.Update(tea.MouseMsg{X: col + 10, Y: 1, Action: tea.MouseActionMotion})
	_, ok = m.card.HoverIndex()
	assert.False(t, ok)
}

func TestMouseHoverBars(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("t"))
	col, row := m.plotOrigin()
	// 151 dots / 7 slots: cell 11 covers dots 22-23, inside slot 1.
	m.Update(tea.MouseMsg{X: col + 11, Y: row + 5, Action: tea.MouseActionMotion})
	idx, ok := m.card.HoverIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestClickPeriodSwitch(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(tea.MouseMsg{X: 9, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, model.PeriodWeek, m.card.Period())

	m.Update(tea.MouseMsg{X: 16, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, model.PeriodMonth, m.card.Period())

	m.Update(tea.MouseMsg{X: 3, Y: 6, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, model.PeriodMonth, m.card.Period())
}

func TestToggleKind(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("t"))
	assert.Equal(t, "bar", string(m.card.Kind()))
	m.Update(runes("t"))
	assert.Equal(t, "line", string(m.card.Kind()))
}

func TestViewShowsCard(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	view := m.View()
	assert.Contains(t, view, "API Requests")
	assert.Contains(t, view, "Org: demo")
	assert.Contains(t, view, "Mon")
	assert.Contains(t, view, "Sun")
	assert.NotContains(t, view, "Loading usage")
}

func TestUsageView(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, viewUsage, m.activeView)

	view := m.View()
	assert.Contains(t, view, "Requests")
	assert.Contains(t, view, "469,600")
	assert.Contains(t, view, "Week")

	// Period keys do not reach the card while the usage view is active.
	m.Update(runes("w"))
	assert.Equal(t, model.PeriodDay, m.card.Period())
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := newLoadedModel(t, stubSource{err: errors.New("boom")})
	assert.False(t, m.loaded)
	assert.Equal(t, "Failed to load usage: boom", m.errMsg)
	assert.Contains(t, m.View(), "Failed to load usage: boom")
	assert.Contains(t, m.View(), "No day data for this org.")
}

func TestLoadTimesOut(t *testing.T) {
	cfg := model.DefaultCardConfig()
	cfg.OrgID = "slow"
	m := NewModel(stubSource{block: true}, cfg, nil)
	m.timeout = 10 * time.Millisecond
	msg := m.Init()()
	errMsg, ok := msg.(metricsErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.err, context.DeadlineExceeded)
}

func TestStaleMetricsIgnored(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(metricsLoadedMsg{orgID: "other", metrics: model.UsageMetrics{OrgID: "other"}})
	assert.Len(t, m.card.Points(), 7)
	m.Update(metricsErrorMsg{orgID: "other", err: errors.New("late")})
	assert.Empty(t, m.errMsg)
}

func TestReloadKey(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	_, cmd := m.Update(runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	m.Update(cmd())
	assert.False(t, m.loading)
	assert.True(t, m.loaded)
}

func TestSettingsValidation(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("/"))
	require.True(t, m.settingsMode)
	assert.Equal(t, "demo", m.settingsInputs[0].Value())
	assert.Equal(t, "200", m.settingsInputs[1].Value())

	m.settingsInputs[1].SetValue("20")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.settingsMode)
	assert.Contains(t, m.settingsError, "invalid chart height")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.settingsMode)
	assert.Equal(t, 200, m.cfg.ChartHeight)
}

func TestSettingsApplyTitleAndHeight(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("/"))
	m.settingsInputs[1].SetValue("100")
	m.settingsInputs[2].SetValue("Gateway")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.settingsMode)
	assert.Equal(t, "Gateway", m.card.Scene().Title)
	assert.Equal(t, 19.0, m.card.Dimensions().Height)
}

func TestSettingsOrgChangeReloads(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	m.Update(runes("/"))
	m.settingsInputs[0].SetValue("acme")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Empty(t, m.card.Points())

	m.Update(cmd())
	assert.Contains(t, m.errMsg, model.ErrUsageNotFound.Error())
	assert.Equal(t, "acme", m.cfg.OrgID)
}

func TestQuit(t *testing.T) {
	m := newLoadedModel(t, usage.Sample())
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestShiftPeriodWraps(t *testing.T) {
	assert.Equal(t, model.PeriodMonth, shiftPeriod(model.PeriodDay, -1))
	assert.Equal(t, model.PeriodDay, shiftPeriod(model.PeriodMonth, 1))
}

func TestFitLines(t *testing.T) {
	out := fitLines("ab\ncd\nef", 3, 2)
	assert.Equal(t, "ab \ncd ", out)
	assert.Equal(t, "abc...", truncateLine("abcdefghij", 6))
}
