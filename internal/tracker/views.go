package tracker

import (
	"context"
	"math"
	"time"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/stats"
	"github.com/runnerr0/hydrolog/internal/storage"
	"github.com/runnerr0/hydrolog/internal/symptoms"
	"github.com/runnerr0/hydrolog/internal/timeline"
)

// TodayView is the headline progress for the current day.
type TodayView struct {
	Date        string               `json:"date"`
	TotalML     float64              `json:"totalMl"`
	GoalML      float64              `json:"goalMl"`
	RemainingML float64              `json:"remainingMl"`
	Progress    float64              `json:"progress"`
	Unit        string               `json:"unit"`
	Entries     []health.IntakeEntry `json:"entries"`
}

// Today returns today's intake totals against the goal. Progress is a
// percentage capped at 100.
func (s *Service) Today(ctx context.Context) (TodayView, error) {
	entries, err := s.Water(ctx)
	if err != nil {
		return TodayView{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return TodayView{}, err
	}
	u, err := s.Unit(ctx)
	if err != nil {
		return TodayView{}, err
	}

	v := TodayView{
		Date:    s.today(),
		GoalML:  settings.DailyGoalML,
		Unit:    u.Name,
		Entries: entries,
	}
	for _, e := range entries {
		v.TotalML += e.AmountML
	}
	v.RemainingML = math.Max(0, v.GoalML-v.TotalML)
	v.Progress = math.Min(v.TotalML/v.GoalML*100, 100)
	return v, nil
}

// Timeline merges today's water, medication and symptom events newest first.
func (s *Service) Timeline(ctx context.Context) ([]timeline.Event, error) {
	in, err := s.todayInput(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.Unit(ctx)
	if err != nil {
		return nil, err
	}
	return timeline.Build(in, s.th, u), nil
}

func (s *Service) todayInput(ctx context.Context) (timeline.Input, error) {
	var in timeline.Input
	var err error
	if in.Intake, err = s.Water(ctx); err != nil {
		return in, err
	}
	if in.Medications, err = s.MedicationLog(ctx); err != nil {
		return in, err
	}
	if in.Symptoms, err = s.SymptomLog(ctx); err != nil {
		return in, err
	}
	return in, nil
}

// AnalyticsView bundles the intake analytics for one range.
type AnalyticsView struct {
	Range   stats.Range       `json:"range"`
	Unit    string            `json:"unit"`
	Summary stats.Summary     `json:"summary"`
	Bars    []stats.Bar       `json:"bars"`
	Hourly  []stats.HourTotal `json:"hourly"`
}

// Analytics computes streaks and averages over history plus the live day.
// Hourly covers today only.
func (s *Service) Analytics(ctx context.Context, r stats.Range) (AnalyticsView, error) {
	entries, err := s.Water(ctx)
	if err != nil {
		return AnalyticsView{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return AnalyticsView{}, err
	}
	history, err := s.g.LoadHistory(ctx)
	if err != nil {
		return AnalyticsView{}, err
	}
	u, err := s.Unit(ctx)
	if err != nil {
		return AnalyticsView{}, err
	}

	today := stats.Summarize(s.today(), settings.DailyGoalML, entries, s.loc)
	days := stats.MergeToday(history, today)

	return AnalyticsView{
		Range:   r,
		Unit:    u.Name,
		Summary: stats.Compute(days),
		Bars:    stats.DailyBars(days, r),
		Hourly:  stats.HourlyDistribution(today),
	}, nil
}

// SymptomChart builds the symptom chart for a range. Past days come from
// history; archived intake is rebuilt from its hour buckets, each placed at
// the start of its hour.
func (s *Service) SymptomChart(ctx context.Context, r symptoms.Range) (symptoms.Chart, error) {
	live, err := s.todayInput(ctx)
	if err != nil {
		return symptoms.Chart{}, err
	}
	u, err := s.Unit(ctx)
	if err != nil {
		return symptoms.Chart{}, err
	}

	in := symptoms.Input{
		Range:      r,
		Now:        s.now(),
		Location:   s.loc,
		Thresholds: s.th,
		Unit:       u,
	}

	now := s.now().In(s.loc)
	var pastDates []string
	switch r {
	case symptoms.Today:
		in.Symptoms = live.Symptoms
		in.Medications = live.Medications
		in.IntakeDays = [][]health.IntakeEntry{live.Intake}
		return symptoms.Build(in), nil
	case symptoms.Yesterday:
		pastDates = []string{health.DateOf(now.AddDate(0, 0, -1), s.loc)}
	case symptoms.Week:
		for i := symptoms.WeekDays - 1; i >= 1; i-- {
			pastDates = append(pastDates, health.DateOf(now.AddDate(0, 0, -i), s.loc))
		}
	default:
		return symptoms.Chart{}, symptoms.ErrUnknownRange
	}

	wanted := make(map[string]bool, len(pastDates))
	for _, d := range pastDates {
		wanted[d] = true
	}

	symHist, err := storage.LoadLogHistory[health.SymptomEvent](ctx, s.g, storage.Symptom)
	if err != nil {
		return symptoms.Chart{}, err
	}
	for _, l := range symHist {
		if wanted[l.Date] {
			in.Symptoms = append(in.Symptoms, l.Entries...)
		}
	}

	medHist, err := storage.LoadLogHistory[health.MedicationEvent](ctx, s.g, storage.Medication)
	if err != nil {
		return symptoms.Chart{}, err
	}
	for _, l := range medHist {
		if wanted[l.Date] {
			in.Medications = append(in.Medications, l.Entries...)
		}
	}

	intakeHist, err := s.g.LoadHistory(ctx)
	if err != nil {
		return symptoms.Chart{}, err
	}
	for _, d := range intakeHist {
		if wanted[d.Date] {
			in.IntakeDays = append(in.IntakeDays, rebuildIntake(d, s.loc))
		}
	}

	if r == symptoms.Week {
		in.Symptoms = append(in.Symptoms, live.Symptoms...)
		in.Medications = append(in.Medications, live.Medications...)
		in.IntakeDays = append(in.IntakeDays, live.Intake)
	}

	return symptoms.Build(in), nil
}

// rebuildIntake turns an archived summary back into intake entries placed at
// the start of their hour.
func rebuildIntake(d health.DaySummary, loc *time.Location) []health.IntakeEntry {
	start, err := health.StartOfDay(d.Date, loc)
	if err != nil {
		return nil
	}
	out := make([]health.IntakeEntry, 0, len(d.Entries))
	for _, b := range d.Entries {
		at := time.Date(start.Year(), start.Month(), start.Day(), b.Hour, 0, 0, 0, loc)
		out = append(out, health.IntakeEntry{AmountML: b.ML, Timestamp: at})
	}
	return out
}
