package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/hydrolog/internal/config"
	"github.com/runnerr0/hydrolog/internal/health"
	"github.com/runnerr0/hydrolog/internal/logging"
	"github.com/runnerr0/hydrolog/internal/observability"
	"github.com/runnerr0/hydrolog/internal/storage"
	"github.com/runnerr0/hydrolog/internal/tracker"
)

// session bundles everything a command needs for one invocation.
type session struct {
	cfg     *config.Config
	dbPath  string
	store   *storage.SQLiteStore
	svc     *tracker.Service
	log     *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time

	logCloser io.Closer
}

// openSession loads the config, opens the database and builds the tracker
// service.
func openSession(globals *GlobalFlags) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		path, perr := config.ExpandPath(globals.Config)
		if perr != nil {
			return nil, perr
		}
		cfg, err = config.LoadOrCreateAt(path)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	verbose := globals != nil && globals.Verbose
	logger, closer, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	if globals != nil && globals.DB != "" {
		if dbPath, err = config.ExpandPath(globals.DB); err != nil {
			closer.Close()
			return nil, err
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		closer.Close()
		return nil, err
	}

	store, err := storage.OpenSQLite(dbPath, cfg.Storage.SQLiteJournalMode)
	if err != nil {
		closer.Close()
		return nil, err
	}
	logger.Debug("opened database", "path", dbPath, "journal_mode", cfg.Storage.SQLiteJournalMode)

	s := &session{
		cfg:       cfg,
		dbPath:    dbPath,
		store:     store,
		log:       logger,
		metrics:   observability.New(),
		now:       time.Now,
		logCloser: closer,
	}
	s.svc = newService(s, cfg, loc)
	return s, nil
}

func newService(s *session, cfg *config.Config, loc *time.Location) *tracker.Service {
	g := storage.NewGateway(s.store, storage.Options{
		Logger:      s.log,
		Metrics:     s.metrics,
		HistoryDays: cfg.Tracking.HistoryDays,
	})
	return tracker.New(g, tracker.Options{
		Now:        s.now,
		Location:   loc,
		Thresholds: cfg.Thresholds(),
		Defaults:   health.Settings{DailyGoalML: cfg.Tracking.DailyGoalML, Unit: cfg.Tracking.Unit},
		Logger:     s.log,
		Metrics:    s.metrics,
	})
}

// Close flushes metrics and releases the database and log file.
func (s *session) Close() error {
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		s.log.Warn("write metrics textfile", "path", s.cfg.Metrics.Textfile, "error", err)
	}
	err := s.store.Close()
	if cerr := s.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// withSession opens a session, runs fn and closes it.
func withSession(globals *GlobalFlags, fn func(context.Context, *session) error) error {
	s, err := openSession(globals)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(context.Background(), s)
}

func jsonOutput(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}

// writeJSON writes v to stdout as indented JSON.
func writeJSON(v any) error {
	return encodeIndented(os.Stdout, v)
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAt parses a --at value as a time on the current day. Accepted forms
// are 15:04, 3:04PM, 3:04 PM and RFC 3339. An empty string means now.
func parseAt(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day := now.In(loc)
	for _, layout := range []string{"15:04", "3:04PM", "3:04pm", "3:04 PM", "3:04 pm"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use 15:04, 3:04PM or RFC 3339)", s)
}

// parseIndex converts a 1-based index as shown by list commands to a
// 0-based one. Anything unparseable becomes -1, which the service ignores.
func parseIndex(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n - 1
}

// resolveRef finds a catalog item by 1-based index, exact ID or
// case-insensitive name. It returns "" when nothing matches.
func resolveRef[T any](items []T, ref string, id, name func(T) string) string {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return id(items[n-1])
	}
	for _, it := range items {
		if id(it) == ref {
			return ref
		}
	}
	for _, it := range items {
		if strings.EqualFold(name(it), ref) {
			return id(it)
		}
	}
	return ""
}

// applied prints ok or a no-op note and reports the outcome as JSON when
// requested.
func applied(globals *GlobalFlags, ok bool, done, ignored string) error {
	if jsonOutput(globals) {
		msg := done
		if !ok {
			msg = ignored
		}
		return writeJSON(map[string]any{"applied": ok, "message": msg})
	}
	if ok {
		fmt.Println(done)
	} else {
		fmt.Println(ignored)
	}
	return nil
}

func clock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("3:04 PM")
}
