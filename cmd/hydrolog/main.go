// Command hydrolog tracks water intake, medications and symptoms locally.
package main

import (
	"os"

	_ "time/tzdata"

	"github.com/runnerr0/hydrolog/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
