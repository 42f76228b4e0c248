package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilupskalvis/shipout/internal/git"
	"github.com/kilupskalvis/shipout/internal/models"
)

// summarySample is how many paths per change kind the pre-commit summary
// shows before truncating.
const summarySample = 3

// PublishOptions configures a commit-and-push operation.
type PublishOptions struct {
	// Message supplies the commit message. It is consulted only after
	// staging confirms there is something to commit, so interactive
	// prompts never fire on a no-op run.
	Message func() (string, error)
	// Tag, when non-empty, creates an annotated tag on the new commit
	// and pushes it separately.
	Tag string
	// AllowForcePush enables the force-push recovery on a diverged
	// remote. The public flow leaves this off.
	AllowForcePush bool
	// DefaultBranch is pushed when the repository reports no current
	// branch (detached or unborn HEAD).
	DefaultBranch string
}

// PublishResult contains the outcome of a commit-and-push operation.
type PublishResult struct {
	// NoChanges reports that the target was clean and nothing was done.
	NoChanges bool
	// Message is the commit message actually used.
	Message string
	// UpstreamSet reports the no-upstream recovery ran.
	UpstreamSet bool
	// Forced reports the diverged-remote recovery ran.
	Forced bool
	// TagPushErr records a failed tag push. The commit itself already
	// succeeded, so this is a warning, not a failure.
	TagPushErr error
}

// PublishProgress is called during publish to report progress.
type PublishProgress func(format string, args ...any)

// Publish stages, commits, optionally tags, and pushes the target
// repository. Push failures are recovered per the options; anything else
// surfaces to the caller.
func Publish(ctx context.Context, client git.ClientInterface, opts PublishOptions, progress PublishProgress) (*PublishResult, error) {
	if progress == nil {
		progress = func(string, ...any) {}
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = "main"
	}

	status, err := client.Status(ctx)
	if err != nil {
		return nil, err
	}
	if status.IsClean() {
		progress("No changes to commit.")
		return &PublishResult{NoChanges: true}, nil
	}

	progress("Changes to be committed:")
	summarizeStatus(status, progress)

	progress("Staging all changes...")
	if err := client.AddAll(ctx); err != nil {
		return nil, err
	}

	message, err := opts.Message()
	if err != nil {
		return nil, err
	}
	progress("Commit message: %s", message)

	if err := client.Commit(ctx, message); err != nil {
		return nil, err
	}
	result := &PublishResult{Message: message}

	if opts.Tag != "" {
		progress("Creating tag %s...", opts.Tag)
		if err := client.Tag(ctx, opts.Tag, "Release "+opts.Tag); err != nil {
			return nil, err
		}
	}

	progress("Pushing to remote...")
	if err := pushWithRecovery(ctx, client, opts, result, progress); err != nil {
		return nil, err
	}

	if opts.Tag != "" {
		progress("Pushing tag %s...", opts.Tag)
		if err := client.PushTag(ctx, opts.Tag); err != nil {
			progress("Warning: tag push failed: %v", err)
			result.TagPushErr = err
		}
	}

	return result, nil
}

// pushWithRecovery pushes the current branch, retrying once for the two
// recoverable failure classes. Each recovery path runs at most once.
func pushWithRecovery(ctx context.Context, client git.ClientInterface, opts PublishOptions, result *PublishResult, progress PublishProgress) error {
	err := client.Push(ctx)
	if err == nil {
		return nil
	}

	var noUpstream *git.NoUpstreamError
	var diverged *git.DivergedError
	switch {
	case errors.As(err, &noUpstream):
		branch := currentBranchOr(ctx, client, opts.DefaultBranch)
		progress("Setting upstream branch and pushing...")
		if err := client.PushUpstream(ctx, branch); err != nil {
			return err
		}
		result.UpstreamSet = true
		return nil
	case errors.As(err, &diverged):
		if !opts.AllowForcePush {
			return fmt.Errorf("remote has diverged and force push is not allowed in this flow: %w", err)
		}
		branch := currentBranchOr(ctx, client, opts.DefaultBranch)
		progress("Remote has diverged. Force pushing...")
		if err := client.ForcePush(ctx, branch); err != nil {
			return err
		}
		result.Forced = true
		return nil
	default:
		return err
	}
}

func currentBranchOr(ctx context.Context, client git.ClientInterface, fallback string) string {
	branch, err := client.CurrentBranch(ctx)
	if err != nil || branch == "" {
		return fallback
	}
	return branch
}

// summarizeStatus reports per-kind counts with a truncated path sample.
func summarizeStatus(status *models.RepoStatus, progress PublishProgress) {
	for _, kind := range models.ChangeKinds {
		paths := status.Paths(kind)
		if len(paths) == 0 {
			continue
		}
		progress("  %s: %d file(s)", kind, len(paths))
		for i, path := range paths {
			if i == summarySample {
				progress("    ... and %d more", len(paths)-summarySample)
				break
			}
			progress("    - %s", path)
		}
	}
}
