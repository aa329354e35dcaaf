package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/observability"
)

// DefaultHistoryDays is the retention cap applied to every history record.
const DefaultHistoryDays = 90

// Domain names one tracked stream and the keys that hold it.
type Domain struct {
	Name       string
	LogKey     string
	HistoryKey string
}

var (
	Intake     = Domain{Name: "intake", LogKey: KeyIntakeLog, HistoryKey: KeyIntakeHistory}
	Medication = Domain{Name: "medication", LogKey: KeyMedicationLog, HistoryKey: KeyMedicationHistory}
	Symptom    = Domain{Name: "symptom", LogKey: KeySymptomLog, HistoryKey: KeySymptomHistory}
)

// Options configures a Gateway. Zero values fall back to defaults.
type Options struct {
	Logger      *slog.Logger
	Metrics     *observability.Metrics
	HistoryDays int
}

// Gateway is the typed view over a Store. Stored documents that cannot be
// decoded are treated as absent: the read returns an empty value, a warning
// is logged and the malformed counter is bumped. Only storage failures
// surface as errors.
type Gateway struct {
	store       Store
	log         *slog.Logger
	metrics     *observability.Metrics
	historyDays int
}

// NewGateway wraps store.
func NewGateway(store Store, opts Options) *Gateway {
	g := &Gateway{
		store:       store,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		historyDays: opts.HistoryDays,
	}
	if g.log == nil {
		g.log = slog.New(slog.DiscardHandler)
	}
	if g.historyDays <= 0 {
		g.historyDays = DefaultHistoryDays
	}
	return g
}

// Store returns the underlying record store.
func (g *Gateway) Store() Store {
	return g.store
}

// load decodes the document under key into a T. found is false when the key
// is absent or its value is malformed.
func load[T any](ctx context.Context, g *Gateway, key string) (v T, found bool, err error) {
	rec, err := g.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		g.malformed(key, err)
		var zero T
		return zero, false, nil
	}
	return v, true, nil
}

func (g *Gateway) malformed(key string, err error) {
	g.log.Warn("malformed record treated as empty", "key", key, "error", err)
	g.metrics.MalformedRecord(key)
}

func encode(key string, v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Record{Key: key, Value: data}, nil
}

func save(ctx context.Context, g *Gateway, key string, v any) error {
	rec, err := encode(key, v)
	if err != nil {
		return err
	}
	return g.store.Put(ctx, rec.Key, rec.Value)
}

// LoadDayLog returns the live log stored under key regardless of its date
// tag. found is false when nothing usable is stored.
func LoadDayLog[T any](ctx context.Context, g *Gateway, key string) (health.DayLog[T], bool, error) {
	l, found, err := load[health.DayLog[T]](ctx, g, key)
	if err != nil || !found {
		return health.DayLog[T]{Entries: []T{}}, false, err
	}
	if l.Date == "" {
		g.malformed(key, errors.New("missing date tag"))
		return health.DayLog[T]{Entries: []T{}}, false, nil
	}
	if l.Entries == nil {
		l.Entries = []T{}
	}
	return l, true, nil
}

// LoadDailyLog returns the entries stored under key only when the log's date
// tag equals today; any other tag reads as empty.
func LoadDailyLog[T any](ctx context.Context, g *Gateway, key, today string) ([]T, error) {
	l, found, err := LoadDayLog[T](ctx, g, key)
	if err != nil {
		return nil, err
	}
	if !found || l.Date != today {
		return []T{}, nil
	}
	return l.Entries, nil
}

type dateTag struct {
	Date string `json:"date"`
}

// LoadDailyLogTag returns the date tag of the live log under key, or "" when
// none is stored.
func (g *Gateway) LoadDailyLogTag(ctx context.Context, key string) (string, error) {
	tag, found, err := load[dateTag](ctx, g, key)
	if err != nil || !found {
		return "", err
	}
	return tag.Date, nil
}

// SaveDailyLog overwrites the live log under key.
func SaveDailyLog[T any](ctx context.Context, g *Gateway, key string, l health.DayLog[T]) error {
	if l.Entries == nil {
		l.Entries = []T{}
	}
	return save(ctx, g, key, l)
}

// LoadHistory returns the intake history ordered by date.
func (g *Gateway) LoadHistory(ctx context.Context) ([]health.DaySummary, error) {
	h, _, err := load[[]health.DaySummary](ctx, g, KeyIntakeHistory)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = []health.DaySummary{}
	}
	sort.SliceStable(h, func(i, j int) bool { return h[i].Date < h[j].Date })
	return h, nil
}

// SaveHistory overwrites the intake history.
func (g *Gateway) SaveHistory(ctx context.Context, h []health.DaySummary) error {
	if h == nil {
		h = []health.DaySummary{}
	}
	return save(ctx, g, KeyIntakeHistory, h)
}

// ArchiveDay appends d to the intake history unless a record with the same
// date exists, then keeps the most recent HistoryDays records. It reports
// whether d was added and how many records were evicted.
func (g *Gateway) ArchiveDay(ctx context.Context, d health.DaySummary) (added bool, evicted int, err error) {
	return archive(ctx, g, Intake, d, func(s health.DaySummary) string { return s.Date }, nil)
}

// LoadLogHistory returns the archived day logs of a medication or symptom
// domain ordered by date.
func LoadLogHistory[T any](ctx context.Context, g *Gateway, d Domain) ([]health.DayLog[T], error) {
	h, _, err := load[[]health.DayLog[T]](ctx, g, d.HistoryKey)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = []health.DayLog[T]{}
	}
	sort.SliceStable(h, func(i, j int) bool { return h[i].Date < h[j].Date })
	return h, nil
}

// ArchiveLog moves a whole day log into the domain's history, with the same
// append-if-absent and cap rules as ArchiveDay.
func ArchiveLog[T any](ctx context.Context, g *Gateway, d Domain, l health.DayLog[T]) (added bool, evicted int, err error) {
	return archive(ctx, g, d, l, func(x health.DayLog[T]) string { return x.Date }, nil)
}

// Rollover archives rec into d's history and resets d's live log to an empty
// log tagged today, in a single transaction.
func Rollover[R any, T any](ctx context.Context, g *Gateway, d Domain, rec R, date func(R) string, today string) (added bool, evicted int, err error) {
	reset, err := encode(d.LogKey, health.DayLog[T]{Date: today, Entries: []T{}})
	if err != nil {
		return false, 0, err
	}
	return archive(ctx, g, d, rec, date, []Record{reset})
}

func archive[R any](ctx context.Context, g *Gateway, d Domain, rec R, date func(R) string, extra []Record) (bool, int, error) {
	h, _, err := load[[]R](ctx, g, d.HistoryKey)
	if err != nil {
		return false, 0, err
	}

	added := true
	for _, r := range h {
		if date(r) == date(rec) {
			added = false
			break
		}
	}

	batch := Batch{Puts: extra}
	evicted := 0
	if added {
		h = append(h, rec)
		sort.SliceStable(h, func(i, j int) bool { return date(h[i]) < date(h[j]) })
		if over := len(h) - g.historyDays; over > 0 {
			for _, r := range h[:over] {
				batch.Audit = append(batch.Audit, AuditEntry{
					Action: ActionEvict, Detail: date(r), RecordKey: d.HistoryKey,
				})
			}
			h = h[over:]
			evicted = over
		}
		hist, err := encode(d.HistoryKey, h)
		if err != nil {
			return false, 0, err
		}
		batch.Puts = append(batch.Puts, hist)
		batch.Audit = append(batch.Audit, AuditEntry{
			Action: ActionArchive, Detail: date(rec), RecordKey: d.HistoryKey,
		})
	}

	if len(batch.Puts) == 0 {
		return false, 0, nil
	}
	if err := g.store.Apply(ctx, batch); err != nil {
		return false, 0, fmt.Errorf("archive %s %s: %w", d.Name, date(rec), err)
	}

	if added {
		g.metrics.DayArchived(d.Name)
		g.metrics.HistoryEvicted(d.Name, evicted)
		g.log.Debug("archived day", "domain", d.Name, "date", date(rec), "evicted", evicted)
	}
	return added, evicted, nil
}

// LoadCatalog returns the catalog stored under key.
func LoadCatalog[T any](ctx context.Context, g *Gateway, key string) ([]T, error) {
	c, _, err := load[[]T](ctx, g, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = []T{}
	}
	return c, nil
}

// SaveCatalog overwrites the catalog stored under key.
func SaveCatalog[T any](ctx context.Context, g *Gateway, key string, c []T) error {
	if c == nil {
		c = []T{}
	}
	return save(ctx, g, key, c)
}

// LoadSettings returns the stored settings, or def when none are stored.
// Fields that are missing or invalid keep their value from def.
func (g *Gateway) LoadSettings(ctx context.Context, def health.Settings) (health.Settings, error) {
	s, found, err := load[health.Settings](ctx, g, KeySettings)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	if s.DailyGoalML <= 0 {
		s.DailyGoalML = def.DailyGoalML
	}
	if s.Unit == "" {
		s.Unit = def.Unit
	}
	return s, nil
}

// SaveSettings overwrites the stored settings.
func (g *Gateway) SaveSettings(ctx context.Context, s health.Settings) error {
	return save(ctx, g, KeySettings, s)
}

// Stats returns storage statistics.
func (g *Gateway) Stats(ctx context.Context) (*Stats, error) {
	return g.store.GetStats(ctx)
}

// PurgeAll deletes every stored record.
func (g *Gateway) PurgeAll(ctx context.Context) error {
	if err := g.store.PurgeAll(ctx); err != nil {
		return err
	}
	g.log.Info("purged all records")
	return nil
}
