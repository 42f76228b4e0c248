// Command shipout exports, builds, and publishes a curated copy of a
// repository.
package main

import (
	"os"

	"github.com/kilupskalvis/shipout/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
