package history_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/focusflow/focusflow/history"
	"github.com/focusflow/focusflow/internal/models"
)

func TestTrendPreservesOrderAndRoundsMinutes(t *testing.T) {
	log := []models.HistoryEntry{
		{Date: "1/1/2024", Seconds: 120},
		{Date: "1/2/2024", Seconds: 90},
		{Date: "1/3/2024", Seconds: 0},
	}

	want := []history.TrendPoint{
		{Date: "1/1/2024", Minutes: 2},
		{Date: "1/2/2024", Minutes: 2},
		{Date: "1/3/2024", Minutes: 0},
	}

	if diff := cmp.Diff(want, history.Trend(log)); diff != "" {
		t.Errorf("trend mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakdownTotalsAreCumulative(t *testing.T) {
	log := []models.HistoryEntry{
		{Breakdown: map[string]int{"a": 60}},
		{Breakdown: map[string]int{"a": 30, "b": 90}},
	}

	want := map[string]int{"a": 90, "b": 90}

	if diff := cmp.Diff(want, history.BreakdownTotals(log)); diff != "" {
		t.Errorf("breakdown totals mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakdownTotalsIgnoreEmptyBreakdowns(t *testing.T) {
	log := []models.HistoryEntry{
		{Date: "1/1/2024", Seconds: 300},
		{Date: "1/2/2024", Seconds: 60, Breakdown: map[string]int{"a": 60}},
	}

	want := map[string]int{"a": 60}

	if diff := cmp.Diff(want, history.BreakdownTotals(log)); diff != "" {
		t.Errorf("breakdown totals mismatch (-want +got):\n%s", diff)
	}
}

func TestTopSites(t *testing.T) {
	totals := map[string]int{
		"a.com": 600,
		"b.com": 1800,
		"c.com": 600,
		"d.com": 60,
	}

	want := []history.SiteTotal{
		{Site: "b.com", Minutes: 30},
		{Site: "a.com", Minutes: 10},
		{Site: "c.com", Minutes: 10},
	}

	if diff := cmp.Diff(want, history.TopSites(totals, 3)); diff != "" {
		t.Errorf("top sites mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEmptyHistory(t *testing.T) {
	var buf strings.Builder

	if err := history.Render(&buf, nil, 5, false); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "No history") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestGrade(t *testing.T) {
	testCases := []struct {
		seconds int
		want    string
	}{
		{0, "A+"},
		{14 * 60, "A+"},
		{15 * 60, "B"},
		{29 * 60, "B"},
		{30 * 60, "C"},
		{59 * 60, "C"},
		{60 * 60, "F"},
		{3 * 60 * 60, "F"},
	}

	for _, tc := range testCases {
		if got := history.Grade(tc.seconds); got != tc.want {
			t.Errorf("Grade(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
