package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tock/internal/queue"
)

// RenderStats draws a bar chart of finished time per day, stacked by label,
// followed by a table of the rows.
func RenderStats(summaries []queue.DailySummary, from, to time.Time, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	colors := labelPalette(summaries)

	title := titleStyle.Render("Finished time") + "  " +
		mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	return panelStyle.Width(width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			buildChart(summaries, colors, from, to, width-6), "",
			renderLegend(summaries, colors), "",
			renderSummaryTable(summaries, colors, width-6),
		),
	)
}

func buildChart(summaries []queue.DailySummary, colors map[string]lipgloss.Color, from, to time.Time, width int) string {
	if width < 20 {
		width = 20
	}
	chart := barchart.New(width, 12)

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")

		var values []barchart.BarValue
		for _, s := range summaries {
			if s.Date != dateStr {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  s.Label,
				Value: float64(s.TotalSeconds) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(colors[s.Label]),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

// labelPalette assigns colors to labels in first-seen order.
func labelPalette(summaries []queue.DailySummary) map[string]lipgloss.Color {
	colors := make(map[string]lipgloss.Color)
	for _, s := range summaries {
		if _, ok := colors[s.Label]; !ok {
			colors[s.Label] = labelColors[len(colors)%len(labelColors)]
		}
	}
	return colors
}

func renderSummaryTable(summaries []queue.DailySummary, colors map[string]lipgloss.Color, w int) string {
	if len(summaries) == 0 {
		return mutedStyle.Render("  No finished segments for this period")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %8s", "Date", "Label", "Duration", "Segments")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 54))),
	}

	var total int64
	for _, s := range summaries {
		dot := lipgloss.NewStyle().Foreground(colors[s.Label]).Render("●")
		rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s %8d",
			s.Date, dot, truncate(s.Label, 18), formatSeconds(s.TotalSeconds), s.Count,
		))
		total += s.TotalSeconds
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-33s %10s", "Total", formatHours(total))))
	return strings.Join(rows, "\n")
}

func renderLegend(summaries []queue.DailySummary, colors map[string]lipgloss.Color) string {
	seen := make(map[string]bool)
	var items []string
	for _, s := range summaries {
		if seen[s.Label] {
			continue
		}
		seen[s.Label] = true
		dot := lipgloss.NewStyle().Foreground(colors[s.Label]).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, s.Label))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
