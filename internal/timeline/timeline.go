// Package timeline merges intake, medication and symptom events into one
// newest-first display sequence.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/risk"
	"github.com/runnerr0/hydrolog/internal/units"
)

// Kind tags the source of a timeline event.
type Kind string

const (
	Water   Kind = "water"
	Pill    Kind = "pill"
	Symptom Kind = "symptom"
)

// Event is one row of the merged timeline. Risk is set for water events only.
type Event struct {
	Kind      Kind             `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Label     string           `json:"label"`
	Risk      *risk.Assessment `json:"risk,omitempty"`
}

// Input groups the day's event streams. Symptoms may be nil.
type Input struct {
	Intake      []health.IntakeEntry
	Medications []health.MedicationEvent
	Symptoms    []health.SymptomEvent
}

// Build merges the streams newest first. Each water event is scored against
// the full intake list. Events sharing a timestamp keep the order water,
// pill, symptom and their input order within each stream.
func Build(in Input, th risk.Thresholds, unit units.Unit) []Event {
	events := make([]Event, 0, len(in.Intake)+len(in.Medications)+len(in.Symptoms))

	for _, e := range in.Intake {
		a := th.Score(e, in.Intake)
		events = append(events, Event{
			Kind:      Water,
			Timestamp: e.Timestamp,
			Label:     unit.Format(e.AmountML),
			Risk:      &a,
		})
	}
	for _, m := range in.Medications {
		events = append(events, Event{Kind: Pill, Timestamp: m.Timestamp, Label: m.Label()})
	}
	for _, s := range in.Symptoms {
		events = append(events, Event{
			Kind:      Symptom,
			Timestamp: s.Timestamp,
			Label:     fmt.Sprintf("%s %d/%d", s.Name, s.Severity, health.MaxSeverity),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events
}

// Advice returns the pace message for a water event, or "" for other kinds.
func Advice(e Event, unit units.Unit, loc *time.Location) string {
	if e.Risk == nil {
		return ""
	}
	total := unit.Format(e.Risk.WindowSumML)
	since := e.Risk.WindowStart.In(loc).Format("3:04 PM")

	switch e.Risk.Level {
	case risk.High:
		return fmt.Sprintf("That's a lot in a short window: %s since %s. Consider giving your body a break.", total, since)
	case risk.Low:
		return fmt.Sprintf("Only %s since %s. Remember to keep sipping!", total, since)
	default:
		return fmt.Sprintf("Looking good: %s since %s. Nice and steady.", total, since)
	}
}
