// Package cardui provides the interactive Bubble Tea chart card.
package cardui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/verte-zerg/chartcard/internal/cardview"
	"github.com/verte-zerg/chartcard/internal/chart"
	"github.com/verte-zerg/chartcard/internal/model"
	"github.com/verte-zerg/chartcard/internal/usage"
)

const (
	viewChart = iota
	viewUsage
)

const (
	defaultLoadTimeout = 5 * time.Second
	minChartHeight     = 60
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

type metricsLoadedMsg struct {
	orgID   string
	metrics model.UsageMetrics
}

type metricsErrorMsg struct {
	orgID string
	err   error
}

// Model implements the Bubble Tea chart card.
type Model struct {
	source  usage.Source
	cfg     model.CardConfig
	logger  *zap.Logger
	timeout time.Duration

	card   *chart.Card
	styles cardview.Styles
	keys   keyMap
	help   help.Model

	metrics model.UsageMetrics
	loaded  bool
	loading bool
	errMsg  string

	views      []string
	activeView int
	usageTable table.Model

	width  int
	height int

	settingsMode   bool
	settingsInputs []textinput.Model
	settingsIndex  int
	settingsError  string
}

// NewModel constructs a card over src. Metrics are requested by Init.
func NewModel(src usage.Source, cfg model.CardConfig, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Color == "" {
		cfg.Color = chart.DefaultColor
	}
	if cfg.ChartHeight <= 0 {
		cfg.ChartHeight = model.DefaultChartHeight
	}
	kind, err := chart.ParseKind(cfg.Type)
	if err != nil {
		logger.Warn("unknown chart type, using line", zap.String("type", cfg.Type))
		kind = chart.KindLine
	}
	m := &Model{
		source:  src,
		cfg:     cfg,
		logger:  logger,
		timeout: defaultLoadTimeout,
		card:    chart.NewCard(cardview.Options(cfg, kind), nil),
		styles:  cardview.NewStyles(cfg.Color),
		keys:    newKeyMap(),
		help:    help.New(),
		views:   []string{"Chart", "Usage"},
	}
	m.initInputs()
	m.usageTable = buildUsageTable(model.UsageMetrics{}, 0, 1)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadMetrics()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case metricsLoadedMsg:
		if msg.orgID != m.cfg.OrgID {
			m.logger.Debug("dropping stale metrics", zap.String("org", msg.orgID))
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.errMsg = ""
		m.metrics = msg.metrics
		m.card.SetDatasets(chart.NewDatasets(msg.metrics.Series))
		m.refreshUsageTable()
		m.updateLayout()
		m.logger.Info("usage metrics loaded",
			zap.String("org", msg.orgID),
			zap.Int("points", len(m.card.Points())),
		)
		return m, nil
	case metricsErrorMsg:
		if msg.orgID != m.cfg.OrgID {
			return m, nil
		}
		m.loading = false
		m.errMsg = fmt.Sprintf("Failed to load usage: %v", msg.err)
		m.updateLayout()
		m.logger.Warn("usage metrics load failed", zap.String("org", msg.orgID), zap.Error(msg.err))
		return m, nil
	case tea.MouseMsg:
		if m.settingsMode || m.activeView != viewChart {
			return m, nil
		}
		return m.updateMouse(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.settingsMode {
			return m.updateSettings(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.SwitchView):
			m.moveView(1)
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Settings):
			return m.startSettings()
		case key.Matches(msg, m.keys.Reload):
			return m, m.reload()
		}
		if m.activeView == viewUsage {
			var cmd tea.Cmd
			m.usageTable, cmd = m.usageTable.Update(msg)
			return m, cmd
		}
		return m.updateChartKeys(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateChartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Day):
		m.selectPeriod(model.PeriodDay)
	case key.Matches(msg, m.keys.Week):
		m.selectPeriod(model.PeriodWeek)
	case key.Matches(msg, m.keys.Month):
		m.selectPeriod(model.PeriodMonth)
	case key.Matches(msg, m.keys.PrevPeriod):
		m.selectPeriod(shiftPeriod(m.card.Period(), -1))
	case key.Matches(msg, m.keys.NextPeriod):
		m.selectPeriod(shiftPeriod(m.card.Period(), 1))
	case key.Matches(msg, m.keys.Toggle):
		m.card.ToggleKind()
		m.cfg.Type = string(m.card.Kind())
	case key.Matches(msg, m.keys.HoverPrev):
		m.card.StepHover(-1)
	case key.Matches(msg, m.keys.HoverNext):
		m.card.StepHover(1)
	case key.Matches(msg, m.keys.ClearHover):
		m.card.ClearHover()
	}
	return m, nil
}

func (m *Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionMotion:
		x, y, ok := m.plotPosition(msg.X, msg.Y)
		if !ok {
			if idx, hovered := m.card.HoverIndex(); hovered {
				m.card.PointerLeave(idx)
			}
			return m, nil
		}
		m.card.PointerMove(x, y)
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if p, ok := m.periodAt(msg.X, msg.Y); ok {
			m.selectPeriod(p)
		}
	}
	return m, nil
}

func (m *Model) selectPeriod(p model.Period) {
	if p == m.card.Period() {
		return
	}
	m.card.SelectPeriod(p)
	m.cfg.Period = p
	m.logger.Debug("period selected", zap.String("period", p.String()))
}

func shiftPeriod(p model.Period, delta int) model.Period {
	periods := model.Periods()
	n := len(periods)
	idx := (int(p) + delta) % n
	if idx < 0 {
		idx += n
	}
	return periods[idx]
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	m.errMsg = ""
	m.updateLayout()
	return m.loadMetrics()
}

func (m *Model) loadMetrics() tea.Cmd {
	src := m.source
	orgID := m.cfg.OrgID
	timeout := m.timeout
	m.logger.Debug("loading usage metrics", zap.String("org", orgID))
	return func() tea.Msg {
		if src == nil {
			return metricsErrorMsg{orgID: orgID, err: fmt.Errorf("no usage source configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		metrics, err := src.GetUsageMetrics(ctx, orgID)
		if err != nil {
			return metricsErrorMsg{orgID: orgID, err: err}
		}
		return metricsLoadedMsg{orgID: orgID, metrics: metrics}
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.settingsMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

// cardHeaderHeight is the number of lines the card draws above its plot.
func (m *Model) cardHeaderHeight() int {
	return lipgloss.Height(cardview.Header(m.card.Scene(), m.styles, false))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.card.Resize(cardview.ContainerWidth(m.width))

	rows := cardview.RowsForHeight(m.cfg.ChartHeight)
	// Leave room for the axis labels and the status line.
	if avail := bodyHeight - m.cardHeaderHeight() - 2; avail < rows {
		rows = avail
	}
	m.card.SetChartHeight(cardview.Layout(rows).ChartHeight)

	m.setUsageTableSize(m.width, bodyHeight)
	for i := range m.settingsInputs {
		promptWidth := lipgloss.Width(m.settingsInputs[i].Prompt)
		m.settingsInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
	m.help.Width = m.width
}

// plotOrigin returns the screen cell of the plot's top-left dot cell.
func (m *Model) plotOrigin() (col, row int) {
	headerHeight, _, _ := m.layoutHeights()
	return cardview.PlotLeft, headerHeight + m.cardHeaderHeight()
}

// plotPosition maps a screen cell to the center of its dots in plot coordinates.
func (m *Model) plotPosition(screenCol, screenRow int) (x, y float64, ok bool) {
	left, top := m.plotOrigin()
	dims := m.card.Dimensions()
	cols, rows := cardview.PlotSize(dims)
	c, r := screenCol-left, screenRow-top
	if c < 0 || r < 0 || c >= cols || r >= rows {
		return 0, 0, false
	}
	x = math.Min(float64(c)*2+0.5, dims.Width)
	y = math.Min(float64(r)*4+1.5, dims.Height)
	return x, y, true
}

// periodAt reports which period switch segment, if any, is under a screen cell.
func (m *Model) periodAt(screenCol, screenRow int) (model.Period, bool) {
	headerHeight, _, _ := m.layoutHeights()
	if screenRow != headerHeight+m.cardHeaderHeight()-1 {
		return 0, false
	}
	pos := cardview.PlotLeft
	for _, p := range model.Periods() {
		w := lipgloss.Width(p.Title()) + 2
		if screenCol >= pos && screenCol < pos+w {
			return p, true
		}
		pos += w + 1
	}
	return 0, false
}

func (m *Model) moveView(delta int) {
	count := len(m.views)
	if count == 0 {
		return
	}
	next := m.activeView + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeView = next
	if m.activeView == viewUsage {
		m.usageTable.Focus()
	} else {
		m.usageTable.Blur()
	}
}

func (m *Model) renderViews() string {
	parts := make([]string, 0, len(m.views))
	for i, v := range m.views {
		if i == m.activeView {
			parts = append(parts, activeNavStyle.Render(v))
		} else {
			parts = append(parts, inactiveNavStyle.Render(v))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	views := padLines(m.renderViews(), m.width)
	summary := padLines(m.renderSummary(), m.width)
	return views + "\n" + summary
}

func (m *Model) renderSummary() string {
	dims := m.card.Dimensions()
	summary := fmt.Sprintf("Org: %s  Period: %s  Type: %s  Height: %dpx  Plot: %.0fx%.0f dots",
		valueOr(m.cfg.OrgID, "-"), m.card.Period(), m.card.Kind(), m.cfg.ChartHeight, dims.Width, dims.Height)
	if m.loading {
		summary += "  (loading)"
	}
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderFooter() string {
	if m.settingsMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
	}
	helpView := m.help.View(m.keys)
	if m.errMsg != "" {
		return helpView + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return helpView
}

func (m *Model) renderBody(height int) string {
	if m.settingsMode {
		return fitLines(m.renderSettingsForm(), m.width, height)
	}
	if m.activeView == viewUsage {
		return fitLines(m.renderUsage(), m.width, height)
	}
	return fitLines(m.renderChart(), m.width, height)
}

func (m *Model) renderChart() string {
	view := cardview.Render(m.card.Scene(), m.styles, true)
	var status string
	switch {
	case m.loading && len(m.card.Points()) == 0:
		status = "Loading usage..."
	case len(m.card.Points()) == 0:
		status = fmt.Sprintf("No %s data for this org.", m.card.Period())
	}
	if status == "" {
		return view
	}
	return view + "\n" + headerStyle.Render(strings.Repeat(" ", cardview.PlotLeft)+status)
}

func (m *Model) renderUsage() string {
	if !m.loaded {
		if m.loading {
			return "Loading usage..."
		}
		return "No usage data."
	}
	cards := renderMetricCards(m.metrics, m.width)
	view := tableMutedStyle.Render(m.usageTable.View())
	return cards + "\n" + view
}

func renderMetricCards(metrics model.UsageMetrics, width int) string {
	cards := []string{
		metricCard("Org", usage.DisplayName(metrics)),
		metricCard("Plan", valueOr(metrics.Plan, "-")),
		metricCard("Requests", humanize.Comma(metrics.TotalRequests)),
		metricCard("Error Rate", fmt.Sprintf("%.2f%%", metrics.ErrorRate*100)),
		metricCard("Avg Latency", fmt.Sprintf("%.1f ms", metrics.AvgLatencyMs)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) refreshUsageTable() {
	_, bodyHeight, _ := m.layoutHeights()
	m.usageTable = buildUsageTable(m.metrics, m.width, m.usageTableHeight(bodyHeight))
	if m.activeView == viewUsage {
		m.usageTable.Focus()
	}
}

func (m *Model) usageTableHeight(bodyHeight int) int {
	cardsHeight := lipgloss.Height(renderMetricCards(m.metrics, m.width))
	return maxInt(2, bodyHeight-cardsHeight)
}

func (m *Model) setUsageTableSize(width, bodyHeight int) {
	m.usageTable.SetWidth(width)
	m.usageTable.SetHeight(maxInt(1, m.usageTableHeight(bodyHeight)-1))
}

func buildUsageTable(metrics model.UsageMetrics, width, height int) table.Model {
	headers, data := usage.PeriodRows(metrics)
	widths := []int{8, 7, 14, 14, 8}
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}
	rows := make([]table.Row, len(data))
	for i, r := range data {
		rows[i] = table.Row(r)
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(usageTableStyles())
	return t
}

func usageTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) initInputs() {
	m.settingsInputs = []textinput.Model{
		newSettingsInput("Org: "),
		newSettingsInput("Chart height (px): "),
		newSettingsInput("Title: "),
	}
	m.setInputsFromConfig()
}

func newSettingsInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.settingsInputs) == 0 {
		return
	}
	m.settingsInputs[0].SetValue(m.cfg.OrgID)
	m.settingsInputs[1].SetValue(strconv.Itoa(m.cfg.ChartHeight))
	m.settingsInputs[2].SetValue(m.cfg.Title)
}

func (m *Model) startSettings() (tea.Model, tea.Cmd) {
	m.settingsMode = true
	m.settingsError = ""
	m.setInputsFromConfig()
	return m, m.setSettingsIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.settingsMode = false
		m.settingsError = ""
		m.updateLayout()
		return m, nil
	case tea.KeyEnter:
		orgChanged, err := m.applySettings()
		if err != nil {
			m.settingsError = err.Error()
			return m, nil
		}
		m.settingsMode = false
		m.settingsError = ""
		if orgChanged {
			m.loaded = false
			m.metrics = model.UsageMetrics{}
			m.card.SetDatasets(nil)
			m.refreshUsageTable()
			return m, m.reload()
		}
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setSettingsIndex(m.settingsIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setSettingsIndex(m.settingsIndex - 1)
	}
	var cmd tea.Cmd
	m.settingsInputs[m.settingsIndex], cmd = m.settingsInputs[m.settingsIndex].Update(msg)
	return m, cmd
}

func (m *Model) setSettingsIndex(idx int) tea.Cmd {
	count := len(m.settingsInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.settingsIndex = idx
	var cmd tea.Cmd
	for i := range m.settingsInputs {
		if i == m.settingsIndex {
			cmd = m.settingsInputs[i].Focus()
		} else {
			m.settingsInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applySettings() (orgChanged bool, err error) {
	org := strings.TrimSpace(m.settingsInputs[0].Value())
	if org == "" {
		return false, fmt.Errorf("org is required")
	}
	heightInput := strings.TrimSpace(m.settingsInputs[1].Value())
	height, err := strconv.Atoi(heightInput)
	if err != nil || height < minChartHeight {
		return false, fmt.Errorf("invalid chart height (use integer >= %d)", minChartHeight)
	}
	title := strings.TrimSpace(m.settingsInputs[2].Value())

	orgChanged = org != m.cfg.OrgID
	m.cfg.OrgID = org
	m.cfg.ChartHeight = height
	m.cfg.Title = title
	m.card.SetTitle(title)
	m.logger.Debug("settings applied",
		zap.String("org", org),
		zap.Int("chart_height", height),
		zap.Bool("org_changed", orgChanged),
	)
	return orgChanged, nil
}

func (m *Model) renderSettingsForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.settingsInputs {
		lines = append(lines, input.View())
	}
	if m.settingsError != "" {
		lines = append(lines, errorStyle.Render(m.settingsError))
	}
	return strings.Join(lines, "\n")
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
