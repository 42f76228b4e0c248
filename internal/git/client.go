// Package git wraps the git command line for repository inspection,
// archiving and publishing, plus go-git for target repository setup.
package git

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/kilupskalvis/shipout/internal/execx"
	"github.com/kilupskalvis/shipout/internal/models"
)

// Client runs git subcommands inside one repository directory.
type Client struct {
	dir  string
	echo io.Writer
}

// NewClient creates a client bound to a repository directory.
func NewClient(dir string) *Client {
	return &Client{dir: dir}
}

// SetEcho makes mutating commands print their command line to w.
// Inspection commands stay silent.
func (c *Client) SetEcho(w io.Writer) { c.echo = w }

// Dir returns the repository directory the client is bound to.
func (c *Client) Dir() string { return c.dir }

func (c *Client) cmd(args ...string) execx.Command {
	return execx.Command{Name: "git", Args: args, Dir: c.dir}
}

func (c *Client) echoed(args ...string) execx.Command {
	cmd := c.cmd(args...)
	cmd.Echo = c.echo
	return cmd
}

// CurrentBranch returns the active branch name, empty on a detached HEAD.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	res, err := execx.RunStrict(ctx, c.cmd("branch", "--show-current"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// LatestTag returns the most recent reachable tag. Having no tags is not an
// error; the result is just empty.
func (c *Client) LatestTag(ctx context.Context) (string, error) {
	res, err := execx.Run(ctx, c.cmd("describe", "--tags", "--abbrev=0"))
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ResolveRef resolves a ref to its commit hash. A ref that does not resolve
// yields a *RefNotFoundError.
func (c *Client) ResolveRef(ctx context.Context, ref string) (string, error) {
	res, err := execx.RunStrict(ctx, c.cmd("rev-parse", ref))
	if err != nil {
		return "", &RefNotFoundError{Ref: ref, Err: err}
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Status scans the working tree and classifies uncommitted paths.
func (c *Client) Status(ctx context.Context) (*models.RepoStatus, error) {
	res, err := execx.RunStrict(ctx, c.cmd("status", "--porcelain"))
	if err != nil {
		return nil, err
	}
	return ParseStatus(res.Stdout), nil
}

// HasChanges reports whether the working tree has any uncommitted entries.
// It checks the raw porcelain output, so entries the classifier skips still
// count.
func (c *Client) HasChanges(ctx context.Context) (bool, error) {
	res, err := execx.RunStrict(ctx, c.cmd("status", "--porcelain"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// UncommittedPaths flattens Status in kind order, excluding paths under the
// ignore directory.
func (c *Client) UncommittedPaths(ctx context.Context, ignoreDir string) ([]string, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.PathsOutside(ignoreDir), nil
}

// Archive produces a tar stream of the given ref, honoring the source
// repository's export-filter attributes.
func (c *Client) Archive(ctx context.Context, ref string) ([]byte, error) {
	res, err := execx.RunStrict(ctx, c.echoed("archive", "--format=tar", ref))
	if err != nil {
		return nil, err
	}
	return []byte(res.Stdout), nil
}

// AddAll stages every change in the working tree.
func (c *Client) AddAll(ctx context.Context) error {
	_, err := execx.RunStrict(ctx, c.echoed("add", "-A"))
	return err
}

// Commit records the staged changes with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := execx.RunStrict(ctx, c.echoed("commit", "-m", message))
	return err
}

// Tag creates an annotated tag on the current commit.
func (c *Client) Tag(ctx context.Context, name, message string) error {
	_, err := execx.RunStrict(ctx, c.echoed("tag", "-a", name, "-m", message))
	return err
}

// Push pushes the current branch to its upstream. Failures are classified
// into the typed push errors where the stderr text allows.
func (c *Client) Push(ctx context.Context) error {
	return c.push(ctx, c.cmd("push"))
}

// PushUpstream pushes the branch and sets origin as its upstream.
func (c *Client) PushUpstream(ctx context.Context, branch string) error {
	return c.push(ctx, c.echoed("push", "-u", "origin", branch))
}

// ForcePush force-pushes the branch to origin.
func (c *Client) ForcePush(ctx context.Context, branch string) error {
	return c.push(ctx, c.echoed("push", "-f", "origin", branch))
}

func (c *Client) push(ctx context.Context, cmd execx.Command) error {
	res, err := execx.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if res.ExitCode == 0 {
		return nil
	}
	cmdErr := &execx.CommandError{
		Cmd:      cmd.String(),
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
	return classifyPushError(res.Stderr, cmdErr)
}

// PushTag pushes a single tag to origin.
func (c *Client) PushTag(ctx context.Context, name string) error {
	_, err := execx.RunStrict(ctx, c.echoed("push", "origin", name))
	return err
}

// CommonDir returns the repository's common git directory, resolved to an
// absolute path. Watch mode monitors this directory for new commits.
func (c *Client) CommonDir(ctx context.Context) (string, error) {
	res, err := execx.RunStrict(ctx, c.cmd("rev-parse", "--git-common-dir"))
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(res.Stdout)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.dir, dir)
	}
	return dir, nil
}
