// Package tracker owns the hydrolog session: it reads and writes the daily
// logs through the storage gateway, rolls stale days into history and builds
// the timeline, analytics and symptom views.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/observability"
	"github.com/runnerr0/hydrolog/internal/risk"
	"github.com/runnerr0/hydrolog/internal/storage"
	"github.com/runnerr0/hydrolog/internal/units"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Now        func() time.Time
	Location   *time.Location
	Thresholds risk.Thresholds
	Defaults   health.Settings
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	NewID      func() string
}

// Service is the single logical owner of the store.
type Service struct {
	g        *storage.Gateway
	now      func() time.Time
	loc      *time.Location
	th       risk.Thresholds
	defaults health.Settings
	log      *slog.Logger
	metrics  *observability.Metrics
	newID    func() string
}

// New builds a Service over g.
func New(g *storage.Gateway, opts Options) *Service {
	s := &Service{
		g:        g,
		now:      opts.Now,
		loc:      opts.Location,
		th:       opts.Thresholds,
		defaults: opts.Defaults,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		newID:    opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.th == (risk.Thresholds{}) {
		s.th = risk.DefaultThresholds()
	}
	if s.defaults.DailyGoalML <= 0 {
		s.defaults.DailyGoalML = 2000
	}
	if s.defaults.Unit == "" {
		s.defaults.Unit = units.Milliliter.Name
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Location returns the zone used for calendar days.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) today() string {
	return health.DateOf(s.now(), s.loc)
}

// RolloverReport lists what Rollover archived.
type RolloverReport struct {
	Today    string   `json:"today"`
	Archived []string `json:"archived"`
}

// Rollover archives every live log whose date tag is not today and resets
// it to an empty log tagged today. Logs that were never written are left
// alone.
func (s *Service) Rollover(ctx context.Context) (RolloverReport, error) {
	today := s.today()
	rep := RolloverReport{Today: today, Archived: []string{}}

	intake, found, err := storage.LoadDayLog[health.IntakeEntry](ctx, s.g, storage.KeyIntakeLog)
	if err != nil {
		return rep, err
	}
	if found && intake.Date != today {
		settings, err := s.Settings(ctx)
		if err != nil {
			return rep, err
		}
		summary := summarize(intake.Date, settings.DailyGoalML, intake.Entries, s.loc)
		if _, _, err := storage.Rollover[health.DaySummary, health.IntakeEntry](
			ctx, s.g, storage.Intake, summary,
			func(d health.DaySummary) string { return d.Date }, today,
		); err != nil {
			return rep, fmt.Errorf("roll over intake: %w", err)
		}
		rep.Archived = append(rep.Archived, storage.Intake.Name+" "+intake.Date)
	}

	if day, err := rollLog[health.MedicationEvent](ctx, s.g, storage.Medication, today); err != nil {
		return rep, err
	} else if day != "" {
		rep.Archived = append(rep.Archived, storage.Medication.Name+" "+day)
	}

	if day, err := rollLog[health.SymptomEvent](ctx, s.g, storage.Symptom, today); err != nil {
		return rep, err
	} else if day != "" {
		rep.Archived = append(rep.Archived, storage.Symptom.Name+" "+day)
	}

	if len(rep.Archived) > 0 {
		s.metrics.RolledOver(s.now().Unix())
		s.log.Info("rolled over stale days", "today", today, "archived", rep.Archived)
	}
	return rep, nil
}

// rollLog archives d's live log when it is stale and returns its date.
func rollLog[T any](ctx context.Context, g *storage.Gateway, d storage.Domain, today string) (string, error) {
	l, found, err := storage.LoadDayLog[T](ctx, g, d.LogKey)
	if err != nil {
		return "", err
	}
	if !found || l.Date == today {
		return "", nil
	}
	if _, _, err := storage.Rollover[health.DayLog[T], T](
		ctx, g, d, l, func(x health.DayLog[T]) string { return x.Date }, today,
	); err != nil {
		return "", fmt.Errorf("roll over %s: %w", d.Name, err)
	}
	return l.Date, nil
}

// Settings returns the stored settings over the configured defaults.
func (s *Service) Settings(ctx context.Context) (health.Settings, error) {
	return s.g.LoadSettings(ctx, s.defaults)
}

// Unit returns the display unit currently selected.
func (s *Service) Unit(ctx context.Context) (units.Unit, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return units.Unit{}, err
	}
	u, err := units.Parse(settings.Unit)
	if err != nil {
		return units.Milliliter, nil
	}
	return u, nil
}

// SetGoal stores a new daily goal. Non-positive goals are ignored.
func (s *Service) SetGoal(ctx context.Context, goalML float64) (bool, error) {
	if !positive(goalML) {
		return false, nil
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return false, err
	}
	settings.DailyGoalML = goalML
	if err := s.g.SaveSettings(ctx, settings); err != nil {
		return false, err
	}
	return true, nil
}

// SetUnit stores a new display unit. Unknown unit names are ignored.
func (s *Service) SetUnit(ctx context.Context, name string) (bool, error) {
	u, err := units.Parse(name)
	if err != nil {
		return false, nil
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return false, err
	}
	settings.Unit = u.Name
	if err := s.g.SaveSettings(ctx, settings); err != nil {
		return false, err
	}
	return true, nil
}

// Export snapshots every stored record.
func (s *Service) Export(ctx context.Context) (*storage.ExportDocument, error) {
	return s.g.Export(ctx, s.now())
}

// Stats returns storage statistics.
func (s *Service) Stats(ctx context.Context) (*storage.Stats, error) {
	return s.g.Stats(ctx)
}

// Purge deletes every stored record.
func (s *Service) Purge(ctx context.Context) error {
	return s.g.PurgeAll(ctx)
}

// resolveAt defaults a zero instant to now and reports whether at falls on
// today's calendar date.
func (s *Service) resolveAt(at time.Time) (time.Time, bool) {
	if at.IsZero() {
		at = s.now()
	}
	return at, health.DateOf(at, s.loc) == s.today()
}
