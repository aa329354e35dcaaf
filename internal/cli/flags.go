package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (.yaml or .toml)" default:""`
	DB      string `long:"db" description:"Override the database file path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// group is an intermediate command that only holds subcommands.
type group struct{}

// WaterAddCommand logs a drink.
type WaterAddCommand struct {
	At   string `long:"at" description:"Time of the drink today (15:04, 3:04PM or RFC 3339); default now"`
	Unit string `long:"unit" description:"Unit of the amount; default the configured display unit"`
	Args struct {
		Amount string `positional-arg-name:"amount"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// WaterRemoveCommand deletes one of today's drinks.
type WaterRemoveCommand struct {
	Args struct {
		Index string `positional-arg-name:"index"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// WaterListCommand shows today's drinks and progress.
type WaterListCommand struct {
	globals *GlobalFlags
	version string
}

// MedAddCommand adds a medication to the catalog.
type MedAddCommand struct {
	Dosage string `long:"dosage" description:"Dosage label, e.g. 200mg"`
	Args   struct {
		Name []string `positional-arg-name:"name"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// MedRemoveCommand removes a medication from the catalog.
type MedRemoveCommand struct {
	Args struct {
		Ref string `positional-arg-name:"medication"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// MedTakeCommand logs a dose.
type MedTakeCommand struct {
	At   string `long:"at" description:"Time of the dose today; default now"`
	Args struct {
		Ref string `positional-arg-name:"medication"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// MedUntakeCommand deletes one of today's doses.
type MedUntakeCommand struct {
	Args struct {
		Index string `positional-arg-name:"index"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// MedListCommand shows the catalog and today's doses.
type MedListCommand struct {
	globals *GlobalFlags
	version string
}

// SymptomAddCommand adds a symptom to the catalog.
type SymptomAddCommand struct {
	Args struct {
		Name []string `positional-arg-name:"name"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// SymptomRemoveCommand removes a symptom from the catalog.
type SymptomRemoveCommand struct {
	Args struct {
		Ref string `positional-arg-name:"symptom"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// SymptomLogCommand records a severity sample.
type SymptomLogCommand struct {
	At   string `long:"at" description:"Time of the sample today; default now"`
	Args struct {
		Ref      string `positional-arg-name:"symptom"`
		Severity string `positional-arg-name:"severity"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// SymptomUnlogCommand deletes one of today's samples.
type SymptomUnlogCommand struct {
	Args struct {
		Index string `positional-arg-name:"index"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// SymptomListCommand shows the catalog and today's samples.
type SymptomListCommand struct {
	globals *GlobalFlags
	version string
}

// GoalCommand shows or sets the daily goal.
type GoalCommand struct {
	Unit string `long:"unit" description:"Unit of the new goal; default the configured display unit"`
	Args struct {
		Amount string `positional-arg-name:"amount"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// UnitCommand shows or sets the display unit.
type UnitCommand struct {
	Args struct {
		Name []string `positional-arg-name:"unit"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// TimelineCommand prints today's merged event timeline.
type TimelineCommand struct {
	globals *GlobalFlags
	version string
}

// AnalyticsCommand prints streaks, averages and daily totals.
type AnalyticsCommand struct {
	Range string `long:"range" description:"week | month" default:"week"`

	globals *GlobalFlags
	version string
}

// ChartCommand prints the symptom chart series.
type ChartCommand struct {
	Range string `long:"range" description:"today | yesterday | week" default:"today"`

	globals *GlobalFlags
	version string
}

// ExportCommand writes every stored record as one JSON document.
type ExportCommand struct {
	Output string `long:"output" short:"o" description:"Write to file instead of stdout"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics and today's progress.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// PurgeCommand deletes ALL hydrolog data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader   // injectable for testing; nil means os.Stdin
	isTTY   func() bool // injectable for testing; nil checks os.Stdin
}

// WatchCommand re-renders the timeline whenever the database changes.
type WatchCommand struct {
	Debounce string `long:"debounce" description:"Quiet period before re-rendering" default:"250ms"`

	globals *GlobalFlags
	version string
}
