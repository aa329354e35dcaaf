package storage

import (
	"encoding/json"
	"time"
)

// Record keys. Each key holds one JSON document replaced whole on write.
const (
	KeyIntakeLog         = "intake.log"
	KeyIntakeHistory     = "intake.history"
	KeyMedicationLog     = "medication.log"
	KeyMedicationHistory = "medication.history"
	KeyMedicationCatalog = "medication.catalog"
	KeySymptomLog        = "symptom.log"
	KeySymptomHistory    = "symptom.history"
	KeySymptomCatalog    = "symptom.catalog"
	KeySettings          = "settings"
)

// AllKeys lists every record key in export order.
var AllKeys = []string{
	KeySettings,
	KeyIntakeLog,
	KeyIntakeHistory,
	KeyMedicationCatalog,
	KeyMedicationLog,
	KeyMedicationHistory,
	KeySymptomCatalog,
	KeySymptomLog,
	KeySymptomHistory,
}

// Audit actions.
const (
	ActionArchive = "archive"
	ActionEvict   = "evict"
	ActionPurge   = "purge"
	ActionExport  = "export"
)

// Record is one stored document.
type Record struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	RecordKey string    `json:"recordKey,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// KeySize pairs a record key with its stored size.
type KeySize struct {
	Key   string `json:"key"`
	Bytes int64  `json:"bytes"`
}

// Stats holds aggregate statistics about the hydrolog database.
type Stats struct {
	TotalRecords      int64        `json:"totalRecords"`
	TotalBytes        int64        `json:"totalBytes"`
	LastUpdated       time.Time    `json:"lastUpdated"`
	DatabaseSizeBytes int64        `json:"databaseSizeBytes"`
	Keys              []KeySize    `json:"keys"`
	RecentAudit       []AuditEntry `json:"recentAudit"`
}

// ExportDocument is the snapshot produced by Export.
type ExportDocument struct {
	Format     string                     `json:"format"`
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Records    map[string]json.RawMessage `json:"records"`
}
