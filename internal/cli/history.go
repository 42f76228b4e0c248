package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shipout/internal/models"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past deployment runs",
	Long:  `Display the run journal: every recorded deployment, newest first.`,
	Run:   runHistory,
}

var (
	historyOneline bool
	historyLimit   int
)

func init() {
	historyCmd.Flags().BoolVar(&historyOneline, "oneline", false, "Show each run on a single line")
	historyCmd.Flags().IntVarP(&historyLimit, "n", "n", 0, "Limit the number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	c := initContextWithJournal()
	defer c.Close()

	if c.Store == nil {
		exitError("no run journal (run 'shipout init' to enable it)")
	}

	runs, err := c.Store.ListRuns(historyLimit)
	if err != nil {
		exitError("failed to read journal: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No deployments recorded yet")
		return
	}

	yellow := color.New(color.FgYellow)

	for _, run := range runs {
		if historyOneline {
			yellow.Printf("%s ", run.ShortID())
			outcomeColor(run.Outcome).Printf("[%s] ", run.Outcome)
			fmt.Printf("%s %s", run.Flow, run.Ref)
			if run.Message != "" {
				fmt.Printf(" %s", run.Message)
			}
			fmt.Println()
			continue
		}

		yellow.Printf("run %s", run.ID)
		if run.Tag != "" {
			color.New(color.FgCyan).Printf(" (tag: %s)", run.Tag)
		}
		fmt.Println()
		fmt.Printf("Flow:   %s\n", run.Flow)
		fmt.Printf("Ref:    %s", run.Ref)
		if run.Commit != "" {
			fmt.Printf(" (%s)", run.ShortCommit())
		}
		fmt.Println()
		fmt.Printf("Date:   %s (%s)\n", run.StartedAt.Local().Format("Mon Jan 2 15:04:05 2006"), run.Duration().Round(100*time.Millisecond))
		fmt.Print("Result: ")
		outcomeColor(run.Outcome).Println(string(run.Outcome))
		if run.Message != "" {
			fmt.Printf("\n    %s\n", run.Message)
		}
		if run.Error != "" {
			color.New(color.FgRed).Printf("\n    %s\n", run.Error)
		}
		fmt.Println()
	}
}

func outcomeColor(outcome models.RunOutcome) *color.Color {
	switch outcome {
	case models.RunOK:
		return color.New(color.FgGreen)
	case models.RunFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
