package cli

import (
	"fmt"
	"os"

	"github.com/kilupskalvis/shipout/internal/core"
	"github.com/kilupskalvis/shipout/internal/forge"
	"github.com/kilupskalvis/shipout/internal/git"
)

// newPipeline wires one deployment pipeline for the profile's flow: target
// lookup, target client, builder, journal, prompts, and the forge client
// for the dev flow's missing-remote recovery.
func newPipeline(c *cmdContext, profile core.Profile) *core.Pipeline {
	target, err := c.Config.Target(profile.Flow)
	if err != nil {
		exitError("%v", err)
	}

	targetClient := git.NewClient(target.Path)
	targetClient.SetEcho(os.Stdout)

	p := &core.Pipeline{
		Profile:    profile,
		Config:     c.Config,
		Source:     c.Source,
		Target:     targetClient,
		TargetPath: target.Path,
		RemoteURL:  target.Remote,
		Builder:    core.NewBuilder(c.Config.Build),
		Journal:    c.Store,
		Prompt:     core.NewPrompter(os.Stdin, os.Stdout),
		Logf: func(format string, args ...any) {
			fmt.Printf(format+"\n", args...)
		},
	}
	if profile.AllowForcePush {
		if fc := forge.NewFromEnv(); fc != nil {
			p.Forge = fc
		}
	}
	return p
}

// printBanner shows where a deployment reads from and writes to.
func printBanner(title string, p *core.Pipeline) {
	fmt.Println(title)
	fmt.Println("========================================")
	fmt.Printf("Source repository: %s\n", p.Config.Root())
	fmt.Printf("Target repository: %s\n", p.TargetPath)
	if p.RemoteURL != "" {
		fmt.Printf("Remote repository: %s\n", p.RemoteURL)
	}
	fmt.Println()
}
