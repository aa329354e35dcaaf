// Package stats computes streaks, averages and completion over daily intake
// summaries.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/runnerr0/hydrolog/internal/health"
)

// ErrUnknownRange is returned by ParseRange for unsupported range names.
var ErrUnknownRange = errors.New("unknown range")

// Summary holds the headline analytics numbers.
type Summary struct {
	CurrentStreak  int     `json:"currentStreak"`
	BestStreak     int     `json:"bestStreak"`
	Avg7ML         float64 `json:"avg7"`
	CompletionRate int     `json:"completionRate"`
}

// Compute derives the Summary from days ordered by date ascending.
func Compute(days []health.DaySummary) Summary {
	days = sortedByDate(days)

	var s Summary
	if len(days) == 0 {
		return s
	}

	for i := len(days) - 1; i >= 0 && days[i].GoalMet(); i-- {
		s.CurrentStreak++
	}

	run, met := 0, 0
	for _, d := range days {
		if !d.GoalMet() {
			run = 0
			continue
		}
		met++
		run++
		if run > s.BestStreak {
			s.BestStreak = run
		}
	}

	last := days[max(0, len(days)-7):]
	var total float64
	for _, d := range last {
		total += d.TotalML
	}
	s.Avg7ML = total / float64(len(last))

	s.CompletionRate = int(math.Round(float64(met) / float64(len(days)) * 100))
	return s
}

// Summarize builds the DaySummary for one day's intake entries. Hours are
// taken in loc.
func Summarize(date string, goalML float64, entries []health.IntakeEntry, loc *time.Location) health.DaySummary {
	d := health.DaySummary{
		Date:       date,
		GoalML:     goalML,
		EntryCount: len(entries),
		Entries:    make([]health.HourBucket, 0, len(entries)),
	}
	for _, e := range entries {
		d.TotalML += e.AmountML
		d.Entries = append(d.Entries, health.HourBucket{
			Hour: e.Timestamp.In(loc).Hour(),
			ML:   e.AmountML,
		})
	}
	return d
}

// MergeToday returns history with any record dated today replaced by the
// live summary, sorted by date.
func MergeToday(history []health.DaySummary, today health.DaySummary) []health.DaySummary {
	days := make([]health.DaySummary, 0, len(history)+1)
	for _, h := range history {
		if h.Date != today.Date {
			days = append(days, h)
		}
	}
	days = append(days, today)
	return sortedByDate(days)
}

func sortedByDate(days []health.DaySummary) []health.DaySummary {
	out := append([]health.DaySummary(nil), days...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Range selects how many trailing days DailyBars returns.
type Range string

const (
	Week  Range = "week"
	Month Range = "month"
)

// ParseRange validates a bar-chart range name.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case Week, Month:
		return Range(s), nil
	}
	return "", fmt.Errorf("%w: %q (use week or month)", ErrUnknownRange, s)
}

// Days returns the number of trailing days covered by the range.
func (r Range) Days() int {
	if r == Month {
		return 30
	}
	return 7
}

// Bar is one day in the daily intake chart.
type Bar struct {
	Date    string  `json:"date"`
	TotalML float64 `json:"totalMl"`
	GoalMet bool    `json:"goalMet"`
}

// DailyBars returns the trailing days of the range, oldest first.
func DailyBars(days []health.DaySummary, r Range) []Bar {
	days = sortedByDate(days)
	days = days[max(0, len(days)-r.Days()):]

	bars := make([]Bar, 0, len(days))
	for _, d := range days {
		bars = append(bars, Bar{Date: d.Date, TotalML: d.TotalML, GoalMet: d.GoalMet()})
	}
	return bars
}

// HourTotal is the volume logged within one hour of the day.
type HourTotal struct {
	Hour int     `json:"hour"`
	ML   float64 `json:"ml"`
}

// Waking hours are always shown in the hourly distribution, even when empty.
const (
	firstWakingHour = 6
	lastWakingHour  = 22
)

// HourlyDistribution sums a day's entries into hour buckets. Buckets with
// volume are always kept; empty buckets only within waking hours.
func HourlyDistribution(d health.DaySummary) []HourTotal {
	var buckets [24]float64
	for _, e := range d.Entries {
		if e.Hour >= 0 && e.Hour < 24 {
			buckets[e.Hour] += e.ML
		}
	}

	var out []HourTotal
	for h, ml := range buckets {
		if ml > 0 || (h >= firstWakingHour && h <= lastWakingHour) {
			out = append(out, HourTotal{Hour: h, ML: ml})
		}
	}
	return out
}
