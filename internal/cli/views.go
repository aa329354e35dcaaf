package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/runnerr0/hydrolog/internal/stats"
	"github.com/runnerr0/hydrolog/internal/symptoms"
	"github.com/runnerr0/hydrolog/internal/timeline"
	"github.com/runnerr0/hydrolog/internal/units"
)

// timelineRow is the JSON form of a timeline event with its advice.
type timelineRow struct {
	timeline.Event
	Advice string `json:"advice,omitempty"`
}

// Execute implements the go-flags Commander interface for TimelineCommand.
func (c *TimelineCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *TimelineCommand) executeWithSession(ctx context.Context, s *session) error {
	return renderTimeline(ctx, os.Stdout, s, jsonOutput(c.globals))
}

// renderTimeline prints today's events newest first.
func renderTimeline(ctx context.Context, w io.Writer, s *session, asJSON bool) error {
	events, err := s.svc.Timeline(ctx)
	if err != nil {
		return err
	}
	u, err := s.svc.Unit(ctx)
	if err != nil {
		return err
	}
	loc := s.svc.Location()

	if asJSON {
		rows := make([]timelineRow, 0, len(events))
		for _, e := range events {
			rows = append(rows, timelineRow{Event: e, Advice: timeline.Advice(e, u, loc)})
		}
		return encodeIndented(w, rows)
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "Nothing logged today.")
		return nil
	}
	for _, e := range events {
		line := fmt.Sprintf("%-8s  %-7s  %s", clock(e.Timestamp, loc), e.Kind, e.Label)
		if e.Risk != nil {
			line += fmt.Sprintf("  [%s]", e.Risk.Level)
		}
		fmt.Fprintln(w, line)
		if advice := timeline.Advice(e, u, loc); advice != "" {
			fmt.Fprintf(w, "          %s\n", advice)
		}
	}
	return nil
}

// Execute implements the go-flags Commander interface for AnalyticsCommand.
func (c *AnalyticsCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *AnalyticsCommand) executeWithSession(ctx context.Context, s *session) error {
	r, err := stats.ParseRange(c.Range)
	if err != nil {
		return err
	}
	v, err := s.svc.Analytics(ctx, r)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return writeJSON(v)
	}

	u, err := units.Parse(v.Unit)
	if err != nil {
		u = units.Milliliter
	}

	fmt.Println("Hydration Analytics")
	fmt.Println("===================")
	fmt.Printf("Current streak:  %s\n", plural(v.Summary.CurrentStreak, "day"))
	fmt.Printf("Best streak:     %s\n", plural(v.Summary.BestStreak, "day"))
	fmt.Printf("7-day average:   %s\n", u.Format(v.Summary.Avg7ML))
	fmt.Printf("Goal completion: %d%%\n", v.Summary.CompletionRate)

	fmt.Println()
	fmt.Printf("Daily totals (%s):\n", v.Range)
	for _, b := range v.Bars {
		met := ""
		if b.GoalMet {
			met = "  goal met"
		}
		fmt.Printf("  %s  %10s%s\n", b.Date, u.Format(b.TotalML), met)
	}

	fmt.Println()
	fmt.Println("Today by hour:")
	for _, h := range v.Hourly {
		fmt.Printf("  %02d:00  %s\n", h.Hour, u.Format(h.ML))
	}
	return nil
}

// Execute implements the go-flags Commander interface for ChartCommand.
func (c *ChartCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *ChartCommand) executeWithSession(ctx context.Context, s *session) error {
	r, err := symptoms.ParseRange(c.Range)
	if err != nil {
		return err
	}
	chart, err := s.svc.SymptomChart(ctx, r)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return writeJSON(chart)
	}

	loc := s.svc.Location()
	x := func(v int64) string { return symptoms.FormatX(chart.Axis, v, loc) }

	fmt.Printf("Symptoms (%s)\n", chart.Range)
	if len(chart.Names) == 0 {
		fmt.Println("No symptoms logged.")
	}
	for _, p := range chart.Points {
		names := make([]string, 0, len(p.Values))
		for n := range p.Values {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, n := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", n, p.Values[n]))
		}
		fmt.Printf("  %-12s %s\n", x(p.X), strings.Join(parts, " "))
	}
	for _, pr := range chart.Projections {
		fmt.Printf("  %-12s %s=%d (carried until %s)\n", x(pr.FromX), pr.Name, pr.Value, x(pr.ToX))
	}

	if len(chart.Medications) > 0 {
		fmt.Println()
		fmt.Println("Medications:")
		for _, m := range chart.Medications {
			fmt.Printf("  %-12s %s\n", x(m.X), m.Label)
		}
	}
	if len(chart.Intake) > 0 {
		fmt.Println()
		fmt.Println("Intake pace:")
		for _, m := range chart.Intake {
			fmt.Printf("  %-12s %s (%s)\n", x(m.X), m.Label, m.Level)
		}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
