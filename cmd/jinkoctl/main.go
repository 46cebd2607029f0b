// jinkoctl - command-line client for the Jinko trial simulation API
package main

import (
	"github.com/novainsilico/jinkoctl/pkg/cli"
)

// Build-time variables set via ldflags
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = buildDate
	cli.Execute()
}
