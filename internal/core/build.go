package core

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/kilupskalvis/shipout/internal/config"
	"github.com/kilupskalvis/shipout/internal/execx"
)

// Builder runs the dependency-sync and build collaborators. Their output is
// relayed to Out/Err as it happens.
type Builder struct {
	Build config.BuildConfig
	Out   io.Writer
	Err   io.Writer
}

// NewBuilder creates a Builder relaying collaborator output to stdout/stderr.
func NewBuilder(build config.BuildConfig) *Builder {
	return &Builder{Build: build, Out: os.Stdout, Err: os.Stderr}
}

// Run syncs dependencies when the manifest is present, then runs the build
// command in dir. Either step failing fails the build.
func (b *Builder) Run(ctx context.Context, dir string) error {
	if b.manifestPresent(dir) {
		if err := b.shell(ctx, dir, b.Build.SyncCommand); err != nil {
			return err
		}
	}
	return b.shell(ctx, dir, b.Build.Command)
}

// Check runs the build command against the source repository as a
// pre-flight gate. The flow decides what a failure means.
func (b *Builder) Check(ctx context.Context, dir string) error {
	return b.shell(ctx, dir, b.Build.Command)
}

func (b *Builder) manifestPresent(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, b.Build.Manifest))
	return err == nil
}

func (b *Builder) shell(ctx context.Context, dir, cmdline string) error {
	cmd := execx.Shell(dir, cmdline)
	cmd.TeeStdout = b.Out
	cmd.TeeStderr = b.Err
	cmd.Echo = b.Out
	_, err := execx.RunStrict(ctx, cmd)
	return err
}
