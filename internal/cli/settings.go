package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/runnerr0/hydrolog/internal/units"
)

// Execute implements the go-flags Commander interface for GoalCommand.
func (c *GoalCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *GoalCommand) executeWithSession(ctx context.Context, s *session) error {
	u, err := s.svc.Unit(ctx)
	if err != nil {
		return err
	}

	if c.Args.Amount != "" {
		if c.Unit != "" {
			if u, err = units.Parse(c.Unit); err != nil {
				return err
			}
		}
		v, perr := strconv.ParseFloat(strings.TrimSpace(c.Args.Amount), 64)
		if perr != nil {
			v = 0
		}
		ok, err := s.svc.SetGoal(ctx, u.ToML(v))
		if err != nil {
			return fmt.Errorf("set goal: %w", err)
		}
		if !ok {
			return applied(c.globals, false, "", "Goal unchanged: amount must be a positive number.")
		}
	}

	settings, err := s.svc.Settings(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return writeJSON(map[string]any{"goalMl": settings.DailyGoalML, "unit": u.Name})
	}
	fmt.Printf("Daily goal: %s\n", u.Format(settings.DailyGoalML))
	return nil
}

// Execute implements the go-flags Commander interface for UnitCommand.
func (c *UnitCommand) Execute(args []string) error {
	return withSession(c.globals, c.executeWithSession)
}

func (c *UnitCommand) executeWithSession(ctx context.Context, s *session) error {
	if name := strings.Join(c.Args.Name, " "); name != "" {
		ok, err := s.svc.SetUnit(ctx, name)
		if err != nil {
			return fmt.Errorf("set unit: %w", err)
		}
		if !ok {
			return applied(c.globals, false, "", "Unit unchanged: unknown unit "+strconv.Quote(name)+".")
		}
	}

	u, err := s.svc.Unit(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		names := make([]string, 0, len(units.All()))
		for _, a := range units.All() {
			names = append(names, a.Name)
		}
		return writeJSON(map[string]any{"unit": u.Name, "available": names})
	}
	fmt.Printf("Display unit: %s\n", u.Name)
	fmt.Println()
	fmt.Println("Available:")
	for _, a := range units.All() {
		marker := " "
		if a.Name == u.Name {
			marker = "*"
		}
		fmt.Printf("  %s %-14s %s\n", marker, a.Name, a.Short)
	}
	return nil
}
