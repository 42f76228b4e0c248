package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kilupskalvis/shipout/internal/config"
	"github.com/kilupskalvis/shipout/internal/git"
	"github.com/kilupskalvis/shipout/internal/models"
	"github.com/kilupskalvis/shipout/internal/store"
)

// statusSample is how many uncommitted paths the status banner shows before
// truncating.
const statusSample = 5

// RepoCreator creates a missing remote repository from its URL. The forge
// client implements it; a nil creator disables the recovery.
type RepoCreator interface {
	CreateFromURL(ctx context.Context, remoteURL string) error
}

// Pipeline drives one deployment: status report, export, build, publish,
// journal. The profile decides where it prompts and what it tolerates.
type Pipeline struct {
	Profile    Profile
	Config     *config.Config
	Source     git.ClientInterface
	Target     git.ClientInterface
	TargetPath string
	RemoteURL  string
	Builder    *Builder
	Journal    *store.Store // nil disables journaling
	Prompt     *Prompter    // required for interactive profiles
	Forge      RepoCreator  // nil disables missing-remote creation
	Logf       func(format string, args ...any)
}

// RunOptions are the per-invocation inputs.
type RunOptions struct {
	// Ref is the revision to export; empty means HEAD (or an interactive
	// choice when the source is dirty).
	Ref string
	// Message is a pre-supplied commit message.
	Message string
	// Tag names an annotated tag to create and push.
	Tag string
	// AssumeYes skips the final go/no-go confirmation.
	AssumeYes bool
}

// Run executes the pipeline. ErrCancelled means the operator declined;
// every other error is a failure.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) error {
	uncommitted, err := p.reportStatus(ctx)
	if err != nil {
		return err
	}

	ref, err := p.chooseRef(ctx, opts.Ref, len(uncommitted) > 0)
	if err != nil {
		return err
	}

	if p.Config.Build.Check {
		if err := p.buildCheck(ctx); err != nil {
			return err
		}
	}

	if p.Profile.Interactive && !opts.AssumeYes {
		if err := p.confirmDeployment(ref); err != nil {
			return err
		}
	}

	started := time.Now()
	run := &models.Run{
		ID:        uuid.NewString(),
		Flow:      p.Profile.Flow,
		Ref:       ref,
		Target:    p.TargetPath,
		StartedAt: started,
	}
	err = p.deploy(ctx, ref, opts, run)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Outcome = models.RunFailed
		run.Error = err.Error()
	}
	p.journal(run)
	return err
}

// deploy runs the stages that mutate the target: export, build, publish.
func (p *Pipeline) deploy(ctx context.Context, ref string, opts RunOptions, run *models.Run) error {
	exported, err := Export(ctx, p.Source, ExportOptions{
		Ref:        ref,
		TargetPath: p.TargetPath,
		RemoteURL:  p.RemoteURL,
	}, p.Logf)
	if err != nil {
		return err
	}
	run.Commit = exported.Commit
	p.Logf("Export completed")

	p.Logf("Building the project...")
	if err := p.Builder.Run(ctx, p.TargetPath); err != nil {
		return err
	}
	p.Logf("Build completed successfully")

	tag, err := p.chooseTag(opts.Tag)
	if err != nil {
		return err
	}
	run.Tag = tag

	result, err := Publish(ctx, p.Target, PublishOptions{
		Message:        p.messageSource(opts.Message),
		Tag:            tag,
		AllowForcePush: p.Profile.AllowForcePush,
	}, p.Logf)
	if err != nil {
		var missing *git.MissingRemoteError
		if errors.As(err, &missing) {
			if rerr := p.recoverMissingRemote(ctx, missing); rerr != nil {
				return rerr
			}
			run.Outcome = models.RunOK
			return nil
		}
		return err
	}

	if result.NoChanges {
		run.Outcome = models.RunNoChanges
		return nil
	}
	run.Message = result.Message
	run.Outcome = models.RunOK
	p.Logf("Successfully pushed to remote!")
	return nil
}

// reportStatus prints the source repository banner and returns the
// uncommitted paths outside the ignore directory.
func (p *Pipeline) reportStatus(ctx context.Context) ([]string, error) {
	branch, err := p.Source.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := p.Source.LatestTag(ctx)
	if err != nil {
		return nil, err
	}

	p.Logf("Git Status:")
	p.Logf("  Current branch: %s", branch)
	if tag == "" {
		p.Logf("  Latest tag: No tags found")
	} else {
		p.Logf("  Latest tag: %s", tag)
	}

	uncommitted, err := p.Source.UncommittedPaths(ctx, p.Config.IgnoreDir)
	if err != nil {
		return nil, err
	}
	if len(uncommitted) > 0 {
		p.Logf("Uncommitted files detected (excluding ./%s):", p.Config.IgnoreDir)
		for i, path := range uncommitted {
			if i == statusSample {
				p.Logf("  ... and %d more", len(uncommitted)-statusSample)
				break
			}
			p.Logf("  - %s", path)
		}
	}
	return uncommitted, nil
}

// chooseRef settles the export revision. The interactive flow offers the
// latest tag as an alternative when the working tree is dirty.
func (p *Pipeline) chooseRef(ctx context.Context, ref string, dirty bool) (string, error) {
	if ref != "" {
		return ref, nil
	}
	if !p.Profile.Interactive || !dirty {
		if dirty {
			p.Logf("Using HEAD (includes uncommitted changes)")
		}
		return "HEAD", nil
	}

	tag, err := p.Source.LatestTag(ctx)
	if err != nil {
		return "", err
	}

	p.Logf("Options:")
	p.Logf("  1. Continue with HEAD (includes uncommitted changes)")
	if tag != "" {
		p.Logf("  2. Use latest tag (%s)", tag)
	} else {
		p.Logf("  2. Use latest tag (no tags available)")
	}
	p.Logf("  3. Cancel deployment")

	choice, err := p.Prompt.Ask("\nChoose option (1/2/3): ")
	if err != nil {
		return "", err
	}
	switch {
	case choice == "2" && tag != "":
		p.Logf("Using tag %s for export", tag)
		return tag, nil
	case choice == "3":
		return "", ErrCancelled
	default:
		p.Logf("Using HEAD (includes uncommitted changes)")
		return "HEAD", nil
	}
}

// buildCheck gates the run on a source-side build. The dev flow tolerates a
// failure with a warning; the interactive flow asks the operator.
func (p *Pipeline) buildCheck(ctx context.Context) error {
	p.Logf("Running build check...")
	err := p.Builder.Check(ctx, p.Config.Root())
	if err == nil {
		p.Logf("Build check passed")
		return nil
	}

	p.Logf("Build check failed: %v", err)
	if p.Profile.TolerateCheckFailure {
		p.Logf("Build check failed, but continuing with deployment...")
		return nil
	}
	if p.Profile.Interactive {
		ok, perr := p.Prompt.Confirm("\nBuild failed. Continue anyway? (yes/no): ")
		if perr != nil {
			return perr
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("build check failed: %w", err)
}

func (p *Pipeline) confirmDeployment(ref string) error {
	p.Logf("Deployment Summary:")
	p.Logf("  Export from: %s", ref)
	p.Logf("  Target path: %s", p.TargetPath)
	p.Logf("  Actions:")
	p.Logf("    1. Export repository using export-filter rules")
	p.Logf("    2. Build project in target directory")
	p.Logf("    3. Commit and push to remote repository")

	ok, err := p.Prompt.Confirm("\nProceed with deployment? (yes/no): ")
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// chooseTag settles the annotated tag name; the interactive flow may ask.
func (p *Pipeline) chooseTag(tag string) (string, error) {
	if tag != "" || !p.Profile.Interactive {
		return tag, nil
	}
	wantTag, err := p.Prompt.Confirm("\nCreate a tag for this release? (yes/no): ")
	if err != nil {
		return "", err
	}
	if !wantTag {
		return "", nil
	}
	return p.Prompt.Ask("Enter tag name (e.g., v1.0.0): ")
}

// messageSource builds the commit-message supplier for Publish: supplied
// beats generated beats prompted.
func (p *Pipeline) messageSource(supplied string) func() (string, error) {
	return func() (string, error) {
		if supplied != "" {
			return supplied, nil
		}
		if p.Profile.AutoMessage {
			return "Dev deployment - " + time.Now().Format("2006-01-02 15:04:05"), nil
		}
		message, err := p.Prompt.Ask("\nEnter commit message for the public repo: ")
		if err != nil {
			return "", err
		}
		if message == "" {
			return "", ErrEmptyMessage
		}
		return message, nil
	}
}

// recoverMissingRemote handles a push against a remote repository that does
// not exist. With a forge client wired it creates the repository and retries
// the push once; otherwise it reports a remediation hint.
func (p *Pipeline) recoverMissingRemote(ctx context.Context, missing *git.MissingRemoteError) error {
	if p.Forge == nil || p.RemoteURL == "" {
		p.Logf("Remote repository doesn't exist.")
		p.Logf("Please create it at: https://github.com/new")
		return missing
	}

	p.Logf("Remote repository doesn't exist. Creating it...")
	if err := p.Forge.CreateFromURL(ctx, p.RemoteURL); err != nil {
		p.Logf("Could not create remote repository: %v", err)
		p.Logf("Please create it at: https://github.com/new")
		return missing
	}

	branch := currentBranchOr(ctx, p.Target, "main")
	if err := p.Target.PushUpstream(ctx, branch); err != nil {
		return err
	}
	p.Logf("Successfully pushed to remote!")
	return nil
}

// journal records the run. Journaling failures only warn: the deployment
// itself already happened.
func (p *Pipeline) journal(run *models.Run) {
	if p.Journal == nil {
		return
	}
	if err := p.Journal.SaveRun(run); err != nil {
		p.Logf("Warning: could not record run in journal: %v", err)
	}
}
