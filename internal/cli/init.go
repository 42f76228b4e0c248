package cli

import (
	"fmt"

	"github.com/kilupskalvis/shipout/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize shipout configuration",
	Long: `Create a .shipout directory at the repository root with a starter
configuration: ignore directory, build commands, and the dev/publish
target locations. The run journal is stored alongside it.`,
	Run: runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	cfg, err := config.Initialize()
	if err != nil {
		exitError("%v", err)
	}

	fmt.Printf("Initialized shipout configuration in %s/\n\n", config.ShipoutDir)
	for _, flow := range []string{"dev", "publish"} {
		target, err := cfg.Target(flow)
		if err != nil {
			continue
		}
		fmt.Printf("  %s target: %s\n", flow, target.Path)
	}
	fmt.Printf("\nEdit %s/%s to set target paths and remote URLs.\n", config.ShipoutDir, config.ConfigFile)
}
