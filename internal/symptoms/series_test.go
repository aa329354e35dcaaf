package symptoms

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/risk"
	"github.com/runnerr0/hydrolog/internal/units"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 1, h, m, 0, 0, time.UTC)
}

func symptom(name string, sev int, ts time.Time) health.SymptomEvent {
	return health.SymptomEvent{SymptomID: name, Name: name, Severity: sev, Timestamp: ts}
}

func baseInput(r Range) Input {
	return Input{
		Range:      r,
		Now:        at(15, 30),
		Location:   time.UTC,
		Thresholds: risk.DefaultThresholds(),
		Unit:       units.Milliliter,
	}
}

func TestParseRange(t *testing.T) {
	for _, s := range []string{"today", "yesterday", "week"} {
		r, err := ParseRange(s)
		require.NoError(t, err)
		assert.Equal(t, Range(s), r)
	}
	_, err := ParseRange("month")
	assert.True(t, errors.Is(err, ErrUnknownRange))
}

func TestAxisFor(t *testing.T) {
	assert.Equal(t, MinutesSinceMidnight, AxisFor(Today))
	assert.Equal(t, MinutesSinceMidnight, AxisFor(Yesterday))
	assert.Equal(t, UnixMillis, AxisFor(Week))
}

func TestBuildSingleSampleProjectsToNow(t *testing.T) {
	in := baseInput(Today)
	in.Symptoms = []health.SymptomEvent{symptom("Headache", 3, at(9, 0))}

	c := Build(in)

	require.Len(t, c.Points, 1)
	assert.Equal(t, int64(540), c.Points[0].X)

	v, ok := c.Visible("Headache", 540)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	nowX := int64(15*60 + 30)
	v, ok = c.Visible("Headache", nowX)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, []Projection{{Name: "Headache", FromX: 540, ToX: nowX, Value: 3}}, c.Projections)
}

func TestBuildSparsePointsWithoutForwardFill(t *testing.T) {
	in := baseInput(Yesterday)
	in.Symptoms = []health.SymptomEvent{
		symptom("Headache", 2, at(8, 0)),
		symptom("Nausea", 4, at(9, 15)),
		symptom("Headache", 5, at(11, 0)),
	}

	c := Build(in)

	want := []Point{
		{X: 480, Values: map[string]int{"Headache": 2}},
		{X: 555, Values: map[string]int{"Nausea": 4}},
		{X: 660, Values: map[string]int{"Headache": 5}},
	}
	if diff := cmp.Diff(want, c.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Headache", "Nausea"}, c.Names)
	assert.Empty(t, c.Projections, "past ranges never project")

	_, ok := c.Visible("Nausea", 660)
	assert.False(t, ok, "no value between or after samples in past ranges")
}

func TestBuildSameMinuteLastWins(t *testing.T) {
	in := baseInput(Today)
	in.Symptoms = []health.SymptomEvent{
		symptom("Headache", 2, at(8, 0)),
		symptom("Headache", 4, at(8, 0).Add(30*time.Second)),
	}

	c := Build(in)
	require.Len(t, c.Points, 1)
	assert.Equal(t, 4, c.Points[0].Values["Headache"])
}

func TestBuildNoProjectionWhenSampleIsNow(t *testing.T) {
	in := baseInput(Today)
	in.Symptoms = []health.SymptomEvent{symptom("Headache", 3, in.Now)}

	c := Build(in)
	assert.Empty(t, c.Projections)
	v, ok := c.Visible("Headache", int64(15*60+30))
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestBuildProjectsEachSymptomFromItsLastSample(t *testing.T) {
	in := baseInput(Today)
	in.Symptoms = []health.SymptomEvent{
		symptom("Headache", 2, at(8, 0)),
		symptom("Nausea", 1, at(10, 0)),
		symptom("Headache", 4, at(12, 0)),
	}

	c := Build(in)
	assert.Equal(t, []Projection{
		{Name: "Headache", FromX: 720, ToX: 930, Value: 4},
		{Name: "Nausea", FromX: 600, ToX: 930, Value: 1},
	}, c.Projections)
}

func TestBuildWeekUsesAbsoluteAxis(t *testing.T) {
	in := baseInput(Week)
	day1 := at(9, 0)
	day2 := day1.Add(24 * time.Hour)
	in.Symptoms = []health.SymptomEvent{
		symptom("Headache", 2, day2),
		symptom("Headache", 3, day1),
	}

	c := Build(in)
	assert.Equal(t, UnixMillis, c.Axis)
	require.Len(t, c.Points, 2, "same time of day on different days must not alias")
	assert.Equal(t, day1.UnixMilli(), c.Points[0].X)
	assert.Equal(t, day2.UnixMilli(), c.Points[1].X)
	assert.Empty(t, c.Projections)
}

func TestBuildMarkers(t *testing.T) {
	in := baseInput(Today)
	in.Medications = []health.MedicationEvent{
		{Name: "Ibuprofen", Dosage: "200mg", Timestamp: at(13, 0)},
		{Name: "Vitamin D", Timestamp: at(7, 0)},
	}
	in.IntakeDays = [][]health.IntakeEntry{{
		{AmountML: 250, Timestamp: at(8, 0)},  // low
		{AmountML: 300, Timestamp: at(8, 30)}, // 550: adequate
		{AmountML: 500, Timestamp: at(8, 45)}, // 1050: high
	}}

	c := Build(in)

	assert.Equal(t, []Marker{
		{X: 420, Label: "Vitamin D"},
		{X: 780, Label: "Ibuprofen 200mg"},
	}, c.Medications)
	assert.Equal(t, []IntakeMarker{
		{X: 480, Level: risk.Low, Label: "250 ml (low)"},
		{X: 525, Level: risk.High, Label: "500 ml (high)"},
	}, c.Intake)
}

func TestBuildScoresIntakePerDay(t *testing.T) {
	in := baseInput(Week)
	late := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	early := late.Add(20 * time.Minute)
	in.IntakeDays = [][]health.IntakeEntry{
		{{AmountML: 600, Timestamp: late}},
		{{AmountML: 600, Timestamp: early}},
	}

	c := Build(in)
	assert.Empty(t, c.Intake, "each day's 600 ml is adequate on its own")
}

func TestBuildEmpty(t *testing.T) {
	c := Build(baseInput(Today))
	assert.NotNil(t, c.Points)
	assert.Empty(t, c.Points)
	assert.Empty(t, c.Names)
	assert.Empty(t, c.Projections)
}

func TestFormatX(t *testing.T) {
	assert.Equal(t, "12a", FormatX(MinutesSinceMidnight, 0, time.UTC))
	assert.Equal(t, "9a", FormatX(MinutesSinceMidnight, 540, time.UTC))
	assert.Equal(t, "3:30p", FormatX(MinutesSinceMidnight, 930, time.UTC))
	assert.Equal(t, "12:05p", FormatX(MinutesSinceMidnight, 725, time.UTC))
	assert.Equal(t, "Sun 9:00AM", FormatX(UnixMillis, at(9, 0).UnixMilli(), time.UTC))
}
