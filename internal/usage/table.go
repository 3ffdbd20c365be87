package usage

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/chartcard/internal/model"
)

// WriteReport prints the org summary followed by one table row per period.
func WriteReport(w io.Writer, m model.UsageMetrics) error {
	lines := []string{
		fmt.Sprintf("Org: %s (%s)", DisplayName(m), m.OrgID),
		fmt.Sprintf("Plan: %s", valueOr(m.Plan, "-")),
		fmt.Sprintf("Requests: %s", humanize.Comma(m.TotalRequests)),
		fmt.Sprintf("Error rate: %.2f%%", m.ErrorRate*100),
		fmt.Sprintf("Avg latency: %.1f ms", m.AvgLatencyMs),
	}
	if !m.UpdatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Updated: %s", m.UpdatedAt.Format("2006-01-02 15:04")))
	}
	lines = append(lines, "")
	lines = append(lines, PeriodTable(m)...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// PeriodTable returns aligned lines with point count, total and peak per period.
func PeriodTable(m model.UsageMetrics) []string {
	headers, rows := PeriodRows(m)
	return formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true})
}

// PeriodRows returns the per-period summary as table headers and rows.
func PeriodRows(m model.UsageMetrics) ([]string, [][]string) {
	headers := []string{"Period", "Points", "Total", "Peak", "Peak At"}
	rows := make([][]string, 0, len(model.Periods()))
	for _, p := range model.Periods() {
		pts := m.Series[p]
		peak, peakAt := 0.0, "-"
		for i, pt := range pts {
			if i == 0 || pt.Value > peak {
				peak, peakAt = pt.Value, pt.Label
			}
		}
		rows = append(rows, []string{
			p.Title(),
			fmt.Sprintf("%d", len(pts)),
			humanize.CommafWithDigits(m.SeriesTotal(p), 2),
			humanize.CommafWithDigits(peak, 2),
			peakAt,
		})
	}
	return headers, rows
}

// DisplayName returns the org name, or its id when unnamed.
func DisplayName(m model.UsageMetrics) string {
	return valueOr(m.OrgName, m.OrgID)
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - runewidth.StringWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
