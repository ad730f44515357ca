// appbridge-mock controls the WireMock server used by AppBridge connector
// tests.
package main

import (
	"os"

	"github.com/standout/appbridge-testkit/internal/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	os.Exit(cli.Execute())
}
