package cli

import (
	"github.com/fatih/color"
	"github.com/kilupskalvis/shipout/internal/core"
	"github.com/spf13/cobra"
)

var (
	publishRef string
	publishTag string
	publishYes bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Deploy to the public target interactively",
	Long: `Export, build, and publish to the public target. Prompts for the
export revision when the working tree is dirty, for confirmation after
a failed build check, for the commit message, for an optional release
tag, and for a final go/no-go. Never force-pushes.

Examples:
  shipout publish                   Interactive deployment
  shipout publish --ref v1.2.0      Publish a specific revision
  shipout publish --tag v1.2.0      Tag the published commit
  shipout publish --yes             Skip the final confirmation`,
	Run: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishRef, "ref", "", "Revision to export (default: HEAD, or an interactive choice)")
	publishCmd.Flags().StringVar(&publishTag, "tag", "", "Annotated tag to create and push")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "Skip the final confirmation prompt")
}

func runPublish(cmd *cobra.Command, args []string) {
	c := initContextWithJournal()
	defer c.Close()

	ctx, stop := signalContext()
	defer stop()

	p := newPipeline(c, core.PublishProfile)
	printBanner("Public Deployment", p)

	err := p.Run(ctx, core.RunOptions{
		Ref:       publishRef,
		Tag:       publishTag,
		AssumeYes: publishYes,
	})
	if err == nil {
		color.New(color.FgGreen).Println("\nDeployment completed successfully!")
	}
	finish(err)
}
