// Package health defines the records shared by the hydration, medication
// and symptom trackers.
package health

import "time"

// DateLayout is the calendar-date format used for log tags and history records.
const DateLayout = "2006-01-02"

// IntakeEntry is a single "add water" action.
type IntakeEntry struct {
	ID        string    `json:"id,omitempty"`
	AmountML  float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// MedicationEvent records one dose taken from the medication catalog.
type MedicationEvent struct {
	MedicationID string    `json:"medId"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Label renders "name dosage", or just the name when no dosage is set.
func (m MedicationEvent) Label() string {
	if m.Dosage == "" {
		return m.Name
	}
	return m.Name + " " + m.Dosage
}

// SymptomEvent records a severity sample for one symptom.
type SymptomEvent struct {
	SymptomID string    `json:"symptomId"`
	Name      string    `json:"name"`
	Severity  int       `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// Severity bounds for SymptomEvent.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// ValidSeverity reports whether s is an allowed severity.
func ValidSeverity(s int) bool {
	return s >= MinSeverity && s <= MaxSeverity
}

// Medication is an entry in the user's medication catalog.
type Medication struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Dosage string `json:"dosage,omitempty"`
}

// Symptom is an entry in the user's symptom catalog.
type Symptom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HourBucket is the archived form of one intake entry: hour of day and volume.
type HourBucket struct {
	Hour int     `json:"hour"`
	ML   float64 `json:"ml"`
}

// DaySummary is the archival record of one day's water intake.
type DaySummary struct {
	Date       string       `json:"date"`
	TotalML    float64      `json:"totalMl"`
	GoalML     float64      `json:"goalMl"`
	EntryCount int          `json:"entryCount"`
	Entries    []HourBucket `json:"entries"`
}

// GoalMet reports whether the day's total reached its goal.
func (d DaySummary) GoalMet() bool {
	return d.TotalML >= d.GoalML
}

// DayLog is a live daily log tagged with the calendar date it belongs to.
type DayLog[T any] struct {
	Date    string `json:"date"`
	Entries []T    `json:"entries"`
}

// Settings holds the user-adjustable preferences.
type Settings struct {
	DailyGoalML float64 `json:"goal"`
	Unit        string  `json:"unit"`
}

// DateOf returns the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// StartOfDay returns local midnight of the given date string in loc.
func StartOfDay(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, loc)
}
