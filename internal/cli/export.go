package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runnerr0/hydrolog/internal/config"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *ExportCommand) executeWithSession(ctx context.Context, s *session) error {
	doc, err := s.svc.Export(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if c.Output == "" {
		return writeJSON(doc)
	}

	path, err := config.ExpandPath(c.Output)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{"path": path, "records": len(doc.Records)})
	}
	fmt.Printf("Exported %d records to %s\n", len(doc.Records), path)
	return nil
}
