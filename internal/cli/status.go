package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/hydrolog/internal/storage"
	"github.com/runnerr0/hydrolog/internal/tracker"
	"github.com/runnerr0/hydrolog/internal/units"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string               `json:"version"`
	DatabasePath      string               `json:"database_path"`
	DatabaseSizeBytes int64                `json:"database_size_bytes"`
	JournalMode       string               `json:"journal_mode"`
	TotalRecords      int64                `json:"total_records"`
	TotalBytes        int64                `json:"total_bytes"`
	LastUpdated       string               `json:"last_updated,omitempty"`
	HistoryDays       int                  `json:"history_days"`
	Keys              []storage.KeySize    `json:"keys"`
	RecentAudit       []storage.AuditEntry `json:"recent_audit"`
	Today             tracker.TodayView    `json:"today"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

// executeWithSession runs status against a provided session (for testing).
func (c *StatusCommand) executeWithSession(ctx context.Context, s *session) error {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	today, err := s.svc.Today(ctx)
	if err != nil {
		return err
	}

	dbSize := getDatabaseSize(stats, s.dbPath)

	if jsonOutput(c.globals) {
		return c.printStatusJSON(s, stats, today, dbSize)
	}
	return c.printStatusHuman(s, stats, today, dbSize)
}

func (c *StatusCommand) printStatusHuman(s *session, stats *storage.Stats, today tracker.TodayView, dbSize int64) error {
	u, err := units.Parse(today.Unit)
	if err != nil {
		u = units.Milliliter
	}

	fmt.Println("Hydrolog Status")
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", s.dbPath, formatBytes(dbSize))
	fmt.Printf("Journal:       %s\n", strings.ToLower(s.cfg.Storage.SQLiteJournalMode))
	fmt.Printf("Records:       %s (%s)\n", formatNumber(stats.TotalRecords), formatBytes(stats.TotalBytes))
	if stats.TotalRecords > 0 {
		fmt.Printf("Last updated:  %s\n", stats.LastUpdated.In(s.svc.Location()).Format("2006-01-02 15:04"))
	}
	fmt.Printf("History:       %d days\n", s.cfg.Tracking.HistoryDays)

	if len(stats.Keys) > 0 {
		fmt.Println()
		fmt.Println("Keys:")
		for _, k := range stats.Keys {
			fmt.Printf("  %-20s %s\n", k.Key, formatBytes(k.Bytes))
		}
	}

	if len(stats.RecentAudit) > 0 {
		fmt.Println()
		fmt.Println("Recent activity:")
		for _, a := range stats.RecentAudit {
			fmt.Printf("  %s  %-8s %s\n", a.Timestamp.In(s.svc.Location()).Format("2006-01-02 15:04"), a.Action, a.Detail)
		}
	}

	fmt.Println()
	fmt.Printf("Today:         %s of %s (%.0f%%)\n", u.Format(today.TotalML), u.Format(today.GoalML), today.Progress)
	return nil
}

func (c *StatusCommand) printStatusJSON(s *session, stats *storage.Stats, today tracker.TodayView, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      s.dbPath,
		DatabaseSizeBytes: dbSize,
		JournalMode:       strings.ToLower(s.cfg.Storage.SQLiteJournalMode),
		TotalRecords:      stats.TotalRecords,
		TotalBytes:        stats.TotalBytes,
		HistoryDays:       s.cfg.Tracking.HistoryDays,
		Keys:              stats.Keys,
		RecentAudit:       stats.RecentAudit,
		Today:             today,
	}
	if stats.TotalRecords > 0 {
		out.LastUpdated = stamp(stats.LastUpdated)
	}
	if out.Keys == nil {
		out.Keys = []storage.KeySize{}
	}
	if out.RecentAudit == nil {
		out.RecentAudit = []storage.AuditEntry{}
	}
	return writeJSON(out)
}

// getDatabaseSize returns the database file size in bytes. For in-memory
// databases it falls back to the page_count * page_size from stats.
func getDatabaseSize(stats *storage.Stats, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}
	return stats.DatabaseSizeBytes
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
