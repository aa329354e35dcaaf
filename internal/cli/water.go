package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/runnerr0/hydrolog/internal/units"
)

// Execute implements the go-flags Commander interface for WaterAddCommand.
func (c *WaterAddCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *WaterAddCommand) executeWithSession(ctx context.Context, s *session) error {
	u, err := s.svc.Unit(ctx)
	if err != nil {
		return err
	}
	if c.Unit != "" {
		if u, err = units.Parse(c.Unit); err != nil {
			return err
		}
	}
	at, err := parseAt(c.At, s.now(), s.svc.Location())
	if err != nil {
		return err
	}

	// A non-numeric amount is a no-op like any other invalid amount.
	amount, perr := strconv.ParseFloat(strings.TrimSpace(c.Args.Amount), 64)
	if perr != nil {
		amount = 0
	}
	ml := u.ToML(amount)

	ok, err := s.svc.AddWater(ctx, ml, at)
	if err != nil {
		return fmt.Errorf("add water: %w", err)
	}
	return applied(c.globals, ok, "Logged "+u.Format(ml)+".", "Nothing logged: amount must be a positive number for today.")
}

// Execute implements the go-flags Commander interface for WaterRemoveCommand.
func (c *WaterRemoveCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *WaterRemoveCommand) executeWithSession(ctx context.Context, s *session) error {
	ok, err := s.svc.RemoveWater(ctx, parseIndex(c.Args.Index))
	if err != nil {
		return fmt.Errorf("remove water: %w", err)
	}
	return applied(c.globals, ok, "Removed entry "+c.Args.Index+".", "Nothing removed: no entry "+c.Args.Index+" today.")
}

// Execute implements the go-flags Commander interface for WaterListCommand.
func (c *WaterListCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *WaterListCommand) executeWithSession(ctx context.Context, s *session) error {
	v, err := s.svc.Today(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return writeJSON(v)
	}

	u, err := units.Parse(v.Unit)
	if err != nil {
		u = units.Milliliter
	}
	loc := s.svc.Location()

	fmt.Printf("Today (%s)\n", v.Date)
	fmt.Printf("Total:      %s of %s (%.0f%%)\n", u.Format(v.TotalML), u.Format(v.GoalML), v.Progress)
	fmt.Printf("Remaining:  %s\n", u.Format(v.RemainingML))
	if len(v.Entries) == 0 {
		fmt.Println("\nNo water logged yet.")
		return nil
	}
	fmt.Println()
	for i, e := range v.Entries {
		fmt.Printf("  %2d  %-8s  %s\n", i+1, clock(e.Timestamp, loc), u.Format(e.AmountML))
	}
	return nil
}
