package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	WaterAdd      *WaterAddCommand
	WaterRemove   *WaterRemoveCommand
	WaterList     *WaterListCommand
	MedAdd        *MedAddCommand
	MedRemove     *MedRemoveCommand
	MedTake       *MedTakeCommand
	MedUntake     *MedUntakeCommand
	MedList       *MedListCommand
	SymptomAdd    *SymptomAddCommand
	SymptomRemove *SymptomRemoveCommand
	SymptomLog    *SymptomLogCommand
	SymptomUnlog  *SymptomUnlogCommand
	SymptomList   *SymptomListCommand
	Goal          *GoalCommand
	Unit          *UnitCommand
	Timeline      *TimelineCommand
	Analytics     *AnalyticsCommand
	Chart         *ChartCommand
	Export        *ExportCommand
	Status        *StatusCommand
	Purge         *PurgeCommand
	Watch         *WatchCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "hydrolog"
	parser.LongDescription = "Local water intake, medication and symptom tracker with pace warnings and analytics."

	g, v := &globals, version
	cmds := &commands{
		WaterAdd:      &WaterAddCommand{globals: g, version: v},
		WaterRemove:   &WaterRemoveCommand{globals: g, version: v},
		WaterList:     &WaterListCommand{globals: g, version: v},
		MedAdd:        &MedAddCommand{globals: g, version: v},
		MedRemove:     &MedRemoveCommand{globals: g, version: v},
		MedTake:       &MedTakeCommand{globals: g, version: v},
		MedUntake:     &MedUntakeCommand{globals: g, version: v},
		MedList:       &MedListCommand{globals: g, version: v},
		SymptomAdd:    &SymptomAddCommand{globals: g, version: v},
		SymptomRemove: &SymptomRemoveCommand{globals: g, version: v},
		SymptomLog:    &SymptomLogCommand{globals: g, version: v},
		SymptomUnlog:  &SymptomUnlogCommand{globals: g, version: v},
		SymptomList:   &SymptomListCommand{globals: g, version: v},
		Goal:          &GoalCommand{globals: g, version: v},
		Unit:          &UnitCommand{globals: g, version: v},
		Timeline:      &TimelineCommand{globals: g, version: v},
		Analytics:     &AnalyticsCommand{globals: g, version: v},
		Chart:         &ChartCommand{globals: g, version: v},
		Export:        &ExportCommand{globals: g, version: v},
		Status:        &StatusCommand{globals: g, version: v},
		Purge:         &PurgeCommand{globals: g, version: v},
		Watch:         &WatchCommand{globals: g, version: v},
	}

	water, _ := parser.AddCommand("water", "Log and review water intake", "Log, remove and list today's water intake.", &group{})
	water.AddCommand("add", "Log a drink", "Log a drink in the display unit (or --unit), now or --at a time today.", cmds.WaterAdd)
	water.AddCommand("remove", "Remove a drink", "Remove one of today's drinks by its list number.", cmds.WaterRemove)
	water.AddCommand("list", "Show today's drinks", "Show today's drinks, total and progress toward the goal.", cmds.WaterList)

	med, _ := parser.AddCommand("med", "Manage medications and doses", "Manage the medication catalog and log doses taken today.", &group{})
	med.AddCommand("add", "Add a medication", "Add a medication to the catalog.", cmds.MedAdd)
	med.AddCommand("remove", "Remove a medication", "Remove a medication from the catalog by number, ID or name.", cmds.MedRemove)
	med.AddCommand("take", "Log a dose", "Log a dose of a catalog medication.", cmds.MedTake)
	med.AddCommand("untake", "Remove a dose", "Remove one of today's doses by its list number.", cmds.MedUntake)
	med.AddCommand("list", "Show medications", "Show the catalog and today's doses.", cmds.MedList)

	sym, _ := parser.AddCommand("symptom", "Manage symptoms and severity samples", "Manage the symptom catalog and log severity samples (1-5).", &group{})
	sym.AddCommand("add", "Add a symptom", "Add a symptom to the catalog.", cmds.SymptomAdd)
	sym.AddCommand("remove", "Remove a symptom", "Remove a symptom from the catalog by number, ID or name.", cmds.SymptomRemove)
	sym.AddCommand("log", "Log a severity sample", "Log a severity sample (1-5) for a catalog symptom.", cmds.SymptomLog)
	sym.AddCommand("unlog", "Remove a sample", "Remove one of today's samples by its list number.", cmds.SymptomUnlog)
	sym.AddCommand("list", "Show symptoms", "Show the catalog and today's samples.", cmds.SymptomList)

	parser.AddCommand("goal", "Show or set the daily goal", "Show the daily goal, or set it in the display unit (or --unit).", cmds.Goal)
	parser.AddCommand("unit", "Show or set the display unit", "Show the display unit and the supported units, or select one.", cmds.Unit)
	parser.AddCommand("timeline", "Show today's timeline", "Show today's water, medication and symptom events newest first, with pace advice.", cmds.Timeline)
	parser.AddCommand("analytics", "Show intake analytics", "Show streaks, 7-day average, completion rate, daily totals and today's hourly distribution.", cmds.Analytics)
	parser.AddCommand("chart", "Show the symptom chart", "Show symptom severities over time with medication and intake markers.", cmds.Chart)
	parser.AddCommand("export", "Export all data as JSON", "Export every stored record as one schema-validated JSON document.", cmds.Export)
	parser.AddCommand("status", "Show database statistics", "Show database statistics, recent activity and today's progress.", cmds.Status)
	parser.AddCommand("purge", "Delete ALL hydrolog data", "Delete ALL hydrolog data. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("watch", "Follow the timeline live", "Re-render today's timeline whenever the database changes.", cmds.Watch)

	return parser, &globals, cmds
}

// Run is the main entry point for the hydrolog CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("hydrolog %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
