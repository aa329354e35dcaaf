package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Export document identity.
const (
	ExportFormat  = "hydrolog-export"
	ExportVersion = 1
)

const exportSchemaURL = "https://hydrolog.local/schema/export-v1.schema.json"

//go:embed schema/export-v1.schema.json
var exportSchemaJSON []byte

var exportSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(exportSchemaURL, bytes.NewReader(exportSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add export schema: %w", err)
	}
	return compiler.Compile(exportSchemaURL)
})

// ValidateExport checks an encoded export document against the export schema.
func ValidateExport(data []byte) error {
	schema, err := exportSchema()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}
	return schema.Validate(instance)
}

// Export snapshots every known key into one document. Keys that are missing,
// unparseable or of the wrong shape are skipped. The result is validated
// against the export schema before it is returned.
func (g *Gateway) Export(ctx context.Context, now time.Time) (*ExportDocument, error) {
	doc := &ExportDocument{
		Format:     ExportFormat,
		Version:    ExportVersion,
		ExportedAt: now.UTC(),
		Records:    make(map[string]json.RawMessage),
	}

	for _, key := range AllKeys {
		rec, err := g.store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := g.exportable(doc, key, rec.Value); err != nil {
			g.log.Debug("export skipped record", "key", key, "error", err)
			g.metrics.MalformedRecord(key)
			continue
		}
		doc.Records[key] = json.RawMessage(rec.Value)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	if err := ValidateExport(data); err != nil {
		return nil, fmt.Errorf("export failed validation: %w", err)
	}

	if err := g.store.Audit(ctx, ActionExport, fmt.Sprintf("%d records", len(doc.Records)), ""); err != nil {
		return nil, err
	}
	return doc, nil
}

// exportable reports why value cannot be exported under key, if at all.
func (g *Gateway) exportable(doc *ExportDocument, key string, value []byte) error {
	if !json.Valid(value) {
		return errors.New("invalid JSON")
	}
	probe := *doc
	probe.Records = map[string]json.RawMessage{key: value}
	data, err := json.Marshal(probe)
	if err != nil {
		return err
	}
	return ValidateExport(data)
}
