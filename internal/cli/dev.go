package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shipout/internal/core"
	"github.com/spf13/cobra"
)

var (
	devRef   string
	devWatch bool
)

var devCmd = &cobra.Command{
	Use:   "dev [message words...]",
	Short: "Deploy to the development target without prompting",
	Long: `Export, build, and publish to the development target. Never prompts:
the commit message is generated from the current timestamp (or taken
from the positional arguments), a diverged remote is force-pushed, and
a failed source build check only warns.

Examples:
  shipout dev                       Deploy HEAD with a generated message
  shipout dev fix nav layout        Deploy with a custom commit message
  shipout dev --ref v1.2.0          Deploy a specific revision
  shipout dev --watch               Redeploy on every new commit`,
	Run: runDev,
}

func init() {
	devCmd.Flags().StringVar(&devRef, "ref", "", "Revision to export (default HEAD)")
	devCmd.Flags().BoolVar(&devWatch, "watch", false, "Watch the repository and redeploy on new commits")
}

func runDev(cmd *cobra.Command, args []string) {
	c := initContextWithJournal()
	defer c.Close()

	ctx, stop := signalContext()
	defer stop()

	p := newPipeline(c, core.DevProfile)
	printBanner("Development Deployment", p)

	opts := core.RunOptions{
		Ref:     devRef,
		Message: strings.Join(args, " "),
	}

	if !devWatch {
		err := p.Run(ctx, opts)
		if err == nil {
			color.New(color.FgGreen).Println("\nDevelopment deployment completed!")
		}
		finish(err)
		return
	}

	finish(watchLoop(ctx, c, p, opts))
}

// watchLoop redeploys on every debounced commit signal until interrupted.
// Runs stay serialized: a signal arriving mid-run is picked up by the next
// loop iteration, further ones are dropped.
func watchLoop(ctx context.Context, c *cmdContext, p *core.Pipeline, opts core.RunOptions) error {
	commonDir, err := c.Source.CommonDir(ctx)
	if err != nil {
		return err
	}

	watcher, err := core.NewCommitWatcher(commonDir, p.Logf)
	if err != nil {
		return err
	}
	defer watcher.Close()
	go watcher.Run(ctx)

	if err := p.Run(ctx, opts); err != nil {
		// In watch mode a failed deployment is reported, not fatal;
		// the next commit gets a fresh attempt.
		fmt.Printf("Deployment failed: %v\n", err)
	}

	fmt.Println("\nWatching for new commits (Ctrl-C to stop)...")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-watcher.Events:
			fmt.Println("\nChange detected, redeploying...")
			if err := p.Run(ctx, opts); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Printf("Deployment failed: %v\n", err)
			} else {
				color.New(color.FgGreen).Println("Deployment completed.")
			}
			fmt.Println("\nWatching for new commits (Ctrl-C to stop)...")
		}
	}
}
