// Package risk classifies water intake pace over a trailing window.
package risk

import (
	"time"

	"github.com/runnerr0/hydrolog/internal/health"
)

// Level is the pace classification of a trailing window.
type Level string

const (
	Low      Level = "low"
	Adequate Level = "adequate"
	High     Level = "high"
)

// Thresholds bound the three levels. A window sum at or above HighML is
// high, at or above LowML is adequate, anything else is low.
type Thresholds struct {
	Window time.Duration
	LowML  float64
	HighML float64
}

// DefaultThresholds returns the standard 60 minute, 500/946 ml thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Window: time.Hour,
		LowML:  500,
		HighML: 946,
	}
}

// Assessment is the classification of one intake event.
type Assessment struct {
	Level       Level     `json:"level"`
	WindowSumML float64   `json:"windowSumMl"`
	WindowStart time.Time `json:"windowStart"`
}

// Classify maps a window sum to a Level.
func (th Thresholds) Classify(sumML float64) Level {
	switch {
	case sumML >= th.HighML:
		return High
	case sumML >= th.LowML:
		return Adequate
	default:
		return Low
	}
}

// Score classifies the window (e.Timestamp-Window, e.Timestamp] over all.
// all is expected to contain e; order does not matter.
func (th Thresholds) Score(e health.IntakeEntry, all []health.IntakeEntry) Assessment {
	end := e.Timestamp
	start := end.Add(-th.Window)

	var sum float64
	for _, other := range all {
		if other.Timestamp.After(start) && !other.Timestamp.After(end) {
			sum += other.AmountML
		}
	}

	return Assessment{
		Level:       th.Classify(sum),
		WindowSumML: sum,
		WindowStart: start,
	}
}

// Score classifies e against all using DefaultThresholds.
func Score(e health.IntakeEntry, all []health.IntakeEntry) Assessment {
	return DefaultThresholds().Score(e, all)
}
