package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shipout/internal/models"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the source repository status",
	Long: `Show the source repository's branch, latest tag, and uncommitted
files, with paths under the configured ignore directory excluded.`,
	Run: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initContext()
	defer c.Close()

	branch, err := c.Source.CurrentBranch(ctx)
	if err != nil {
		exitError("%v", err)
	}
	tag, err := c.Source.LatestTag(ctx)
	if err != nil {
		exitError("%v", err)
	}

	fmt.Printf("On branch %s\n", branch)
	if tag != "" {
		fmt.Printf("Latest tag: %s\n", tag)
	} else {
		fmt.Println("Latest tag: No tags found")
	}

	status, err := c.Source.Status(ctx)
	if err != nil {
		exitError("%v", err)
	}
	if status.IsClean() {
		fmt.Println("\nNothing to commit, working tree clean")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	fmt.Println("\nUncommitted changes:")
	kindColors := map[models.ChangeKind]*color.Color{
		models.ChangeModified:  yellow,
		models.ChangeAdded:     green,
		models.ChangeDeleted:   red,
		models.ChangeRenamed:   yellow,
		models.ChangeUntracked: red,
	}
	for _, kind := range models.ChangeKinds {
		for _, path := range status.Paths(kind) {
			kindColors[kind].Printf("        %-10s %s\n", string(kind)+":", path)
		}
	}

	ignored := status.Total() - len(status.PathsOutside(c.Config.IgnoreDir))
	if ignored > 0 {
		cyan.Printf("\n  (%d change(s) under ./%s ignored for deployment)\n", ignored, c.Config.IgnoreDir)
	}

	fmt.Printf("\n%d uncommitted change(s)\n", status.Total())
}
