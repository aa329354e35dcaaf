// Package symptoms turns sparse symptom severity samples into chart series
// with medication and intake-pace markers on a shared time axis.
//
// Series hold true samples only. In the today range the last sample of each
// symptom is projected forward to the query instant as a separate segment;
// past ranges never carry values between samples.
package symptoms

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/risk"
	"github.com/runnerr0/hydrolog/internal/units"
)

// ErrUnknownRange is returned by ParseRange for unsupported range names.
var ErrUnknownRange = errors.New("unknown range")

// Range is the chart time range selected by the user.
type Range string

const (
	Today     Range = "today"
	Yesterday Range = "yesterday"
	Week      Range = "week"
)

// ParseRange validates a range name.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case Today, Yesterday, Week:
		return Range(s), nil
	}
	return "", fmt.Errorf("%w: %q (use today, yesterday or week)", ErrUnknownRange, s)
}

// WeekDays is the number of days covered by the week range, today included.
const WeekDays = 7

// Axis names the unit of Point.X.
type Axis string

const (
	// MinutesSinceMidnight keys single-day ranges (0..1439).
	MinutesSinceMidnight Axis = "minutes"
	// UnixMillis keys multi-day ranges by absolute instant.
	UnixMillis Axis = "unix_ms"
)

// AxisFor returns the axis used by r.
func AxisFor(r Range) Axis {
	if r == Week {
		return UnixMillis
	}
	return MinutesSinceMidnight
}

// Point holds the severities sampled at one instant.
type Point struct {
	X      int64          `json:"x"`
	Values map[string]int `json:"values"`
}

// Projection extends a symptom's last known severity up to the query instant.
type Projection struct {
	Name  string `json:"name"`
	FromX int64  `json:"fromX"`
	ToX   int64  `json:"toX"`
	Value int    `json:"value"`
}

// Marker is a medication dose drawn on the time axis.
type Marker struct {
	X     int64  `json:"x"`
	Label string `json:"label"`
}

// IntakeMarker is a low or high pace intake event drawn on the time axis.
type IntakeMarker struct {
	X     int64      `json:"x"`
	Level risk.Level `json:"level"`
	Label string     `json:"label"`
}

// Chart is the renderable symptom analytics structure.
type Chart struct {
	Range       Range          `json:"range"`
	Axis        Axis           `json:"axis"`
	Names       []string       `json:"names"`
	Points      []Point        `json:"points"`
	Projections []Projection   `json:"projections"`
	Medications []Marker       `json:"medications"`
	Intake      []IntakeMarker `json:"intake"`
}

// Input carries everything Build needs. IntakeDays groups intake entries per
// calendar day; each entry is scored only against its own day.
type Input struct {
	Range       Range
	Symptoms    []health.SymptomEvent
	Medications []health.MedicationEvent
	IntakeDays  [][]health.IntakeEntry
	Now         time.Time
	Location    *time.Location
	Thresholds  risk.Thresholds
	Unit        units.Unit
}

// Build assembles the chart. Samples sharing an axis position collapse, the
// later one in input order winning.
func Build(in Input) Chart {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	if in.Thresholds == (risk.Thresholds{}) {
		in.Thresholds = risk.DefaultThresholds()
	}
	if in.Unit.PerML == 0 {
		in.Unit = units.Milliliter
	}
	axis := AxisFor(in.Range)
	x := func(t time.Time) int64 { return axisX(axis, t, loc) }

	c := Chart{
		Range:       in.Range,
		Axis:        axis,
		Names:       []string{},
		Points:      []Point{},
		Projections: []Projection{},
		Medications: []Marker{},
		Intake:      []IntakeMarker{},
	}

	seen := make(map[string]bool)
	byX := make(map[int64]*Point)
	for _, s := range in.Symptoms {
		if !seen[s.Name] {
			seen[s.Name] = true
			c.Names = append(c.Names, s.Name)
		}
		px := x(s.Timestamp)
		p, ok := byX[px]
		if !ok {
			p = &Point{X: px, Values: make(map[string]int)}
			byX[px] = p
		}
		p.Values[s.Name] = s.Severity
	}
	for _, p := range byX {
		c.Points = append(c.Points, *p)
	}
	sort.Slice(c.Points, func(i, j int) bool { return c.Points[i].X < c.Points[j].X })

	if in.Range == Today {
		c.Projections = project(c.Points, c.Names, x(in.Now))
	}

	for _, m := range in.Medications {
		c.Medications = append(c.Medications, Marker{X: x(m.Timestamp), Label: m.Label()})
	}
	sort.SliceStable(c.Medications, func(i, j int) bool { return c.Medications[i].X < c.Medications[j].X })

	for _, day := range in.IntakeDays {
		for _, e := range day {
			a := in.Thresholds.Score(e, day)
			if a.Level == risk.Adequate {
				continue
			}
			c.Intake = append(c.Intake, IntakeMarker{
				X:     x(e.Timestamp),
				Level: a.Level,
				Label: fmt.Sprintf("%s (%s)", in.Unit.Format(e.AmountML), a.Level),
			})
		}
	}
	sort.SliceStable(c.Intake, func(i, j int) bool { return c.Intake[i].X < c.Intake[j].X })

	return c
}

func project(points []Point, names []string, nowX int64) []Projection {
	out := []Projection{}
	for _, name := range names {
		for i := len(points) - 1; i >= 0; i-- {
			v, ok := points[i].Values[name]
			if !ok {
				continue
			}
			if nowX > points[i].X {
				out = append(out, Projection{Name: name, FromX: points[i].X, ToX: nowX, Value: v})
			}
			break
		}
	}
	return out
}

func axisX(axis Axis, t time.Time, loc *time.Location) int64 {
	if axis == UnixMillis {
		return t.UnixMilli()
	}
	lt := t.In(loc)
	return int64(lt.Hour()*60 + lt.Minute())
}

// Visible returns the severity drawn for name at position x: a true sample
// at x, or a projection covering x.
func (c Chart) Visible(name string, x int64) (int, bool) {
	for _, p := range c.Points {
		if p.X == x {
			if v, ok := p.Values[name]; ok {
				return v, true
			}
		}
	}
	for _, pr := range c.Projections {
		if pr.Name == name && x >= pr.FromX && x <= pr.ToX {
			return pr.Value, true
		}
	}
	return 0, false
}

// FormatX renders an axis position for display.
func FormatX(axis Axis, x int64, loc *time.Location) string {
	if axis == UnixMillis {
		return time.UnixMilli(x).In(loc).Format("Mon 3:04PM")
	}
	h, m := x/60, x%60
	suffix := "a"
	if h >= 12 {
		suffix = "p"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d%s", h12, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", h12, m, suffix)
}
