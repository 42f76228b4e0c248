// Package cli implements the command-line interface for shipout.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/kilupskalvis/shipout/internal/config"
	"github.com/kilupskalvis/shipout/internal/core"
	"github.com/kilupskalvis/shipout/internal/git"
	"github.com/kilupskalvis/shipout/internal/store"
	"github.com/spf13/cobra"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Store  *store.Store // nil when the repository has no .shipout directory
	Source *git.Client
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// initContext initializes config and the source repository client
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	return &cmdContext{Config: cfg, Source: git.NewClient(cfg.Root())}
}

// initContextWithJournal additionally opens the run journal. A repository
// without a .shipout directory runs with journaling disabled; a broken
// journal warns but never blocks a deployment.
func initContextWithJournal() *cmdContext {
	c := initContext()

	dbPath := c.Config.DatabasePath()
	if dbPath == "" {
		return c
	}

	st, err := openJournal(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run journal unavailable: %v\n", err)
		return c
	}
	c.Store = st
	return c
}

func openJournal(dbPath string) (*store.Store, error) {
	st, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := st.Initialize(); err != nil {
		st.Close()
		return nil, err
	}
	if err := st.RunMigrations(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// signalContext returns a context cancelled by Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

var rootCmd = &cobra.Command{
	Use:   "shipout",
	Short: "Export and publish a curated copy of a repository",
	Long: `Shipout exports a filtered snapshot of the current repository into a
separate target repository, builds it, and publishes the result via
commit and push. Filtering follows the repository's own export-filter
rules (gitattributes export-ignore).`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(devCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(historyCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// finish maps a pipeline result onto the process exit status: operator
// cancellation (prompt decline or Ctrl-C) is a clean exit, anything else
// non-nil is a failure.
func finish(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, core.ErrCancelled) || errors.Is(err, context.Canceled) {
		fmt.Println("\nDeployment cancelled.")
		os.Exit(0)
	}
	exitError("%v", err)
}
