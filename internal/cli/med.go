package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/hydrolog/internal/health"
)

func medID(m health.Medication) string   { return m.ID }
func medName(m health.Medication) string { return m.Name }

// Execute implements the go-flags Commander interface for MedAddCommand.
func (c *MedAddCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *MedAddCommand) executeWithSession(ctx context.Context, s *session) error {
	name := strings.Join(c.Args.Name, " ")
	m, ok, err := s.svc.AddMedication(ctx, name, c.Dosage)
	if err != nil {
		return fmt.Errorf("add medication: %w", err)
	}
	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{"applied": ok, "medication": m})
	}
	if !ok {
		fmt.Println("Nothing added: medication name is empty.")
		return nil
	}
	fmt.Printf("Added %s (%s).\n", medicationLabel(m), m.ID)
	return nil
}

// Execute implements the go-flags Commander interface for MedRemoveCommand.
func (c *MedRemoveCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *MedRemoveCommand) executeWithSession(ctx context.Context, s *session) error {
	catalog, err := s.svc.Medications(ctx)
	if err != nil {
		return err
	}
	ok, err := s.svc.RemoveMedication(ctx, resolveRef(catalog, c.Args.Ref, medID, medName))
	if err != nil {
		return fmt.Errorf("remove medication: %w", err)
	}
	return applied(c.globals, ok, "Removed medication "+c.Args.Ref+".", "Nothing removed: unknown medication "+c.Args.Ref+".")
}

// Execute implements the go-flags Commander interface for MedTakeCommand.
func (c *MedTakeCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *MedTakeCommand) executeWithSession(ctx context.Context, s *session) error {
	at, err := parseAt(c.At, s.now(), s.svc.Location())
	if err != nil {
		return err
	}
	catalog, err := s.svc.Medications(ctx)
	if err != nil {
		return err
	}
	ok, err := s.svc.TakeMedication(ctx, resolveRef(catalog, c.Args.Ref, medID, medName), at)
	if err != nil {
		return fmt.Errorf("take medication: %w", err)
	}
	return applied(c.globals, ok, "Logged dose of "+c.Args.Ref+".", "Nothing logged: unknown medication or time outside today.")
}

// Execute implements the go-flags Commander interface for MedUntakeCommand.
func (c *MedUntakeCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *MedUntakeCommand) executeWithSession(ctx context.Context, s *session) error {
	ok, err := s.svc.UntakeMedication(ctx, parseIndex(c.Args.Index))
	if err != nil {
		return fmt.Errorf("untake medication: %w", err)
	}
	return applied(c.globals, ok, "Removed dose "+c.Args.Index+".", "Nothing removed: no dose "+c.Args.Index+" today.")
}

// Execute implements the go-flags Commander interface for MedListCommand.
func (c *MedListCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *MedListCommand) executeWithSession(ctx context.Context, s *session) error {
	catalog, err := s.svc.Medications(ctx)
	if err != nil {
		return err
	}
	doses, err := s.svc.MedicationLog(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{"catalog": catalog, "today": doses})
	}

	loc := s.svc.Location()
	fmt.Println("Medications:")
	if len(catalog) == 0 {
		fmt.Println("  (none)")
	}
	for i, m := range catalog {
		fmt.Printf("  %2d  %s\n", i+1, medicationLabel(m))
	}
	fmt.Println()
	fmt.Println("Taken today:")
	if len(doses) == 0 {
		fmt.Println("  (none)")
	}
	for i, d := range doses {
		fmt.Printf("  %2d  %-8s  %s\n", i+1, clock(d.Timestamp, loc), d.Label())
	}
	return nil
}

func medicationLabel(m health.Medication) string {
	if m.Dosage == "" {
		return m.Name
	}
	return m.Name + " " + m.Dosage
}
