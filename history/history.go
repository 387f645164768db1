// Package history aggregates the archived daily entries for display.
package history

import (
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"

	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/internal/timeutil"
)

const barChartChar = "▇"

// TrendPoint is one day of the usage trend.
type TrendPoint struct {
	Date    string
	Minutes int
}

// SiteTotal is one site's cumulative minutes across all history entries.
type SiteTotal struct {
	Site    string
	Minutes int
}

// Trend projects the history log to (date, minutes) pairs, preserving the
// stored chronological order.
func Trend(log []models.HistoryEntry) []TrendPoint {
	trend := make([]TrendPoint, 0, len(log))

	for _, entry := range log {
		trend = append(trend, TrendPoint{
			Date:    entry.Date,
			Minutes: timeutil.SecsToMins(entry.Seconds),
		})
	}

	return trend
}

// BreakdownTotals sums the per-site breakdown (in seconds) across all
// history entries. The aggregation is cumulative, not per-day.
func BreakdownTotals(log []models.HistoryEntry) map[string]int {
	seconds := map[string]int{}

	for _, entry := range log {
		for site, secs := range entry.Breakdown {
			seconds[site] += secs
		}
	}

	return seconds
}

// TopSites ranks the breakdown totals and keeps the n largest, converting
// each to minutes for display. Ties break alphabetically so the ranking is
// stable.
func TopSites(totals map[string]int, n int) []SiteTotal {
	ranked := make([]SiteTotal, 0, len(totals))

	for site, secs := range totals {
		ranked = append(ranked, SiteTotal{
			Site:    site,
			Minutes: timeutil.SecsToMins(secs),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Minutes != ranked[j].Minutes {
			return ranked[i].Minutes > ranked[j].Minutes
		}

		return ranked[i].Site < ranked[j].Site
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}

// Render writes the usage trend chart and the site leaderboard. The stored
// theme only picks the chart colour.
func Render(w io.Writer, log []models.HistoryEntry, topN int, dark bool) error {
	if len(log) == 0 {
		fmt.Fprintln(w, "No history recorded yet")
		return nil
	}

	barStyle := pterm.NewStyle(pterm.FgBlue)
	if dark {
		barStyle = pterm.NewStyle(pterm.FgCyan)
	}

	trend := Trend(log)

	var bars pterm.Bars

	for _, point := range trend {
		bars = append(bars, pterm.Bar{
			Value: point.Minutes,
			Label: point.Date,
			Style: barStyle,
		})
	}

	chart, err := pterm.DefaultBarChart.
		WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		return err
	}

	fmt.Fprint(w, pterm.Blue("Daily usage (minutes)"))
	fmt.Fprintln(w, chart)

	leaders := TopSites(BreakdownTotals(log), topN)
	if len(leaders) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", pterm.Blue("Top sites (minutes)"))

	data := [][]string{{"Site", "Minutes"}}
	for _, leader := range leaders {
		data = append(data, []string{
			leader.Site,
			fmt.Sprintf("%d", leader.Minutes),
		})
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithData(data).
		Srender()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, table)

	return nil
}
