package tracker

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/stats"
	"github.com/runnerr0/hydrolog/internal/storage"
)

var summarize = stats.Summarize

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

// todayLog rolls over stale days and returns today's entries for d.
func todayLog[T any](ctx context.Context, s *Service, d storage.Domain) ([]T, error) {
	if _, err := s.Rollover(ctx); err != nil {
		return nil, err
	}
	return storage.LoadDailyLog[T](ctx, s.g, d.LogKey, s.today())
}

// mutateLog applies fn to today's entries for d and saves the result when fn
// reports a change.
func mutateLog[T any](ctx context.Context, s *Service, d storage.Domain, fn func([]T) ([]T, bool)) (bool, error) {
	entries, err := todayLog[T](ctx, s, d)
	if err != nil {
		return false, err
	}
	entries, changed := fn(entries)
	if !changed {
		return false, nil
	}
	err = storage.SaveDailyLog(ctx, s.g, d.LogKey, health.DayLog[T]{Date: s.today(), Entries: entries})
	if err != nil {
		return false, err
	}
	return true, nil
}

func removeAt[T any](entries []T, index int) ([]T, bool) {
	if index < 0 || index >= len(entries) {
		return entries, false
	}
	return append(entries[:index:index], entries[index+1:]...), true
}

// AddWater logs amountML at the given instant (now when zero). Non-positive
// amounts and instants outside today are ignored.
func (s *Service) AddWater(ctx context.Context, amountML float64, at time.Time) (bool, error) {
	if !positive(amountML) {
		return false, nil
	}
	at, ok := s.resolveAt(at)
	if !ok {
		return false, nil
	}
	added, err := mutateLog(ctx, s, storage.Intake, func(e []health.IntakeEntry) ([]health.IntakeEntry, bool) {
		return append(e, health.IntakeEntry{ID: s.newID(), AmountML: amountML, Timestamp: at}), true
	})
	if added {
		s.metrics.EntryLogged(storage.Intake.Name)
	}
	return added, err
}

// RemoveWater deletes today's intake entry at index.
func (s *Service) RemoveWater(ctx context.Context, index int) (bool, error) {
	return mutateLog(ctx, s, storage.Intake, func(e []health.IntakeEntry) ([]health.IntakeEntry, bool) {
		return removeAt(e, index)
	})
}

// Water returns today's intake entries in logging order.
func (s *Service) Water(ctx context.Context) ([]health.IntakeEntry, error) {
	return todayLog[health.IntakeEntry](ctx, s, storage.Intake)
}

// AddMedication adds a catalog entry. Blank names are ignored.
func (s *Service) AddMedication(ctx context.Context, name, dosage string) (health.Medication, bool, error) {
	name, dosage = strings.TrimSpace(name), strings.TrimSpace(dosage)
	if name == "" {
		return health.Medication{}, false, nil
	}
	meds, err := storage.LoadCatalog[health.Medication](ctx, s.g, storage.KeyMedicationCatalog)
	if err != nil {
		return health.Medication{}, false, err
	}
	m := health.Medication{ID: s.newID(), Name: name, Dosage: dosage}
	if err := storage.SaveCatalog(ctx, s.g, storage.KeyMedicationCatalog, append(meds, m)); err != nil {
		return health.Medication{}, false, err
	}
	return m, true, nil
}

// RemoveMedication drops a catalog entry. Logged doses keep their snapshot.
func (s *Service) RemoveMedication(ctx context.Context, id string) (bool, error) {
	meds, err := storage.LoadCatalog[health.Medication](ctx, s.g, storage.KeyMedicationCatalog)
	if err != nil {
		return false, err
	}
	for i, m := range meds {
		if m.ID == id {
			meds, _ = removeAt(meds, i)
			return true, storage.SaveCatalog(ctx, s.g, storage.KeyMedicationCatalog, meds)
		}
	}
	return false, nil
}

// Medications returns the medication catalog.
func (s *Service) Medications(ctx context.Context) ([]health.Medication, error) {
	return storage.LoadCatalog[health.Medication](ctx, s.g, storage.KeyMedicationCatalog)
}

// TakeMedication logs a dose of the catalog entry id.
func (s *Service) TakeMedication(ctx context.Context, id string, at time.Time) (bool, error) {
	meds, err := s.Medications(ctx)
	if err != nil {
		return false, err
	}
	var med *health.Medication
	for i := range meds {
		if meds[i].ID == id {
			med = &meds[i]
			break
		}
	}
	if med == nil {
		return false, nil
	}
	at, ok := s.resolveAt(at)
	if !ok {
		return false, nil
	}
	added, err := mutateLog(ctx, s, storage.Medication, func(e []health.MedicationEvent) ([]health.MedicationEvent, bool) {
		return append(e, health.MedicationEvent{
			MedicationID: med.ID, Name: med.Name, Dosage: med.Dosage, Timestamp: at,
		}), true
	})
	if added {
		s.metrics.EntryLogged(storage.Medication.Name)
	}
	return added, err
}

// UntakeMedication deletes today's dose at index.
func (s *Service) UntakeMedication(ctx context.Context, index int) (bool, error) {
	return mutateLog(ctx, s, storage.Medication, func(e []health.MedicationEvent) ([]health.MedicationEvent, bool) {
		return removeAt(e, index)
	})
}

// MedicationLog returns today's doses.
func (s *Service) MedicationLog(ctx context.Context) ([]health.MedicationEvent, error) {
	return todayLog[health.MedicationEvent](ctx, s, storage.Medication)
}

// AddSymptom adds a catalog entry. Blank names are ignored.
func (s *Service) AddSymptom(ctx context.Context, name string) (health.Symptom, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return health.Symptom{}, false, nil
	}
	list, err := s.Symptoms(ctx)
	if err != nil {
		return health.Symptom{}, false, err
	}
	sym := health.Symptom{ID: s.newID(), Name: name}
	if err := storage.SaveCatalog(ctx, s.g, storage.KeySymptomCatalog, append(list, sym)); err != nil {
		return health.Symptom{}, false, err
	}
	return sym, true, nil
}

// RemoveSymptom drops a catalog entry.
func (s *Service) RemoveSymptom(ctx context.Context, id string) (bool, error) {
	list, err := s.Symptoms(ctx)
	if err != nil {
		return false, err
	}
	for i, sym := range list {
		if sym.ID == id {
			list, _ = removeAt(list, i)
			return true, storage.SaveCatalog(ctx, s.g, storage.KeySymptomCatalog, list)
		}
	}
	return false, nil
}

// Symptoms returns the symptom catalog.
func (s *Service) Symptoms(ctx context.Context) ([]health.Symptom, error) {
	return storage.LoadCatalog[health.Symptom](ctx, s.g, storage.KeySymptomCatalog)
}

// LogSymptom records a severity sample for the catalog entry id. Severities
// outside 1..5 and unknown ids are ignored.
func (s *Service) LogSymptom(ctx context.Context, id string, severity int, at time.Time) (bool, error) {
	if !health.ValidSeverity(severity) {
		return false, nil
	}
	list, err := s.Symptoms(ctx)
	if err != nil {
		return false, err
	}
	var sym *health.Symptom
	for i := range list {
		if list[i].ID == id {
			sym = &list[i]
			break
		}
	}
	if sym == nil {
		return false, nil
	}
	at, ok := s.resolveAt(at)
	if !ok {
		return false, nil
	}
	added, err := mutateLog(ctx, s, storage.Symptom, func(e []health.SymptomEvent) ([]health.SymptomEvent, bool) {
		return append(e, health.SymptomEvent{
			SymptomID: sym.ID, Name: sym.Name, Severity: severity, Timestamp: at,
		}), true
	})
	if added {
		s.metrics.EntryLogged(storage.Symptom.Name)
	}
	return added, err
}

// UnlogSymptom deletes today's symptom sample at index.
func (s *Service) UnlogSymptom(ctx context.Context, index int) (bool, error) {
	return mutateLog(ctx, s, storage.Symptom, func(e []health.SymptomEvent) ([]health.SymptomEvent, bool) {
		return removeAt(e, index)
	})
}

// SymptomLog returns today's symptom samples.
func (s *Service) SymptomLog(ctx context.Context) ([]health.SymptomEvent, error) {
	return todayLog[health.SymptomEvent](ctx, s, storage.Symptom)
}
