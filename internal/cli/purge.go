package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if err := c.confirm(); err != nil {
		return err
	}
	return withSession(c.globals, c.executeWithSession)
}

// confirm enforces --all and, unless --force, the typed confirmation.
func (c *PurgeCommand) confirm() error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}
	if c.Force {
		return nil
	}

	isTTY := c.isTTY
	if isTTY == nil {
		isTTY = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	if !isTTY() {
		return fmt.Errorf("refusing to purge without --force: stdin is not a terminal")
	}

	fmt.Println("⚠ WARNING: This will permanently delete ALL hydrolog data.")
	fmt.Println("  - Today's water, medication and symptom logs")
	fmt.Println("  - All archived history")
	fmt.Println("  - Medication and symptom catalogs and settings")
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "PURGE" to confirm: `)

	var in io.Reader = os.Stdin
	if c.stdin != nil {
		in = c.stdin
	}
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "PURGE" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

func (c *PurgeCommand) executeWithSession(ctx context.Context, s *session) error {
	if err := s.svc.Purge(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	s.log.Info("purged all data", "path", s.dbPath)

	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{
			"purged":  true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Purged all data. Hydrolog is empty.")
	return nil
}
