package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/runnerr0/hydrolog/internal/health"
)

func symptomID(s health.Symptom) string   { return s.ID }
func symptomName(s health.Symptom) string { return s.Name }

// Execute implements the go-flags Commander interface for SymptomAddCommand.
func (c *SymptomAddCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *SymptomAddCommand) executeWithSession(ctx context.Context, s *session) error {
	sym, ok, err := s.svc.AddSymptom(ctx, strings.Join(c.Args.Name, " "))
	if err != nil {
		return fmt.Errorf("add symptom: %w", err)
	}
	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{"applied": ok, "symptom": sym})
	}
	if !ok {
		fmt.Println("Nothing added: symptom name is empty.")
		return nil
	}
	fmt.Printf("Added %s (%s).\n", sym.Name, sym.ID)
	return nil
}

// Execute implements the go-flags Commander interface for SymptomRemoveCommand.
func (c *SymptomRemoveCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *SymptomRemoveCommand) executeWithSession(ctx context.Context, s *session) error {
	catalog, err := s.svc.Symptoms(ctx)
	if err != nil {
		return err
	}
	ok, err := s.svc.RemoveSymptom(ctx, resolveRef(catalog, c.Args.Ref, symptomID, symptomName))
	if err != nil {
		return fmt.Errorf("remove symptom: %w", err)
	}
	return applied(c.globals, ok, "Removed symptom "+c.Args.Ref+".", "Nothing removed: unknown symptom "+c.Args.Ref+".")
}

// Execute implements the go-flags Commander interface for SymptomLogCommand.
func (c *SymptomLogCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *SymptomLogCommand) executeWithSession(ctx context.Context, s *session) error {
	at, err := parseAt(c.At, s.now(), s.svc.Location())
	if err != nil {
		return err
	}
	catalog, err := s.svc.Symptoms(ctx)
	if err != nil {
		return err
	}
	severity, perr := strconv.Atoi(strings.TrimSpace(c.Args.Severity))
	if perr != nil {
		severity = 0
	}
	ok, err := s.svc.LogSymptom(ctx, resolveRef(catalog, c.Args.Ref, symptomID, symptomName), severity, at)
	if err != nil {
		return fmt.Errorf("log symptom: %w", err)
	}
	return applied(c.globals, ok,
		fmt.Sprintf("Logged %s at %d/%d.", c.Args.Ref, severity, health.MaxSeverity),
		fmt.Sprintf("Nothing logged: need a known symptom, severity %d-%d and a time today.", health.MinSeverity, health.MaxSeverity))
}

// Execute implements the go-flags Commander interface for SymptomUnlogCommand.
func (c *SymptomUnlogCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *SymptomUnlogCommand) executeWithSession(ctx context.Context, s *session) error {
	ok, err := s.svc.UnlogSymptom(ctx, parseIndex(c.Args.Index))
	if err != nil {
		return fmt.Errorf("unlog symptom: %w", err)
	}
	return applied(c.globals, ok, "Removed sample "+c.Args.Index+".", "Nothing removed: no sample "+c.Args.Index+" today.")
}

// Execute implements the go-flags Commander interface for SymptomListCommand.
func (c *SymptomListCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *SymptomListCommand) executeWithSession(ctx context.Context, s *session) error {
	catalog, err := s.svc.Symptoms(ctx)
	if err != nil {
		return err
	}
	samples, err := s.svc.SymptomLog(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{"catalog": catalog, "today": samples})
	}

	loc := s.svc.Location()
	fmt.Println("Symptoms:")
	if len(catalog) == 0 {
		fmt.Println("  (none)")
	}
	for i, sym := range catalog {
		fmt.Printf("  %2d  %s\n", i+1, sym.Name)
	}
	fmt.Println()
	fmt.Println("Logged today:")
	if len(samples) == 0 {
		fmt.Println("  (none)")
	}
	for i, e := range samples {
		fmt.Printf("  %2d  %-8s  %s %d/%d\n", i+1, clock(e.Timestamp, loc), e.Name, e.Severity, health.MaxSeverity)
	}
	return nil
}
