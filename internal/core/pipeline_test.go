package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kilupskalvis/shipout/internal/config"
	"github.com/kilupskalvis/shipout/internal/git"
	"github.com/kilupskalvis/shipout/internal/models"
	"github.com/kilupskalvis/shipout/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	pipeline *Pipeline
	source   *git.MockClient
	target   *git.MockClient
	journal  *store.Store
	log      *[]string
}

func newPipelineFixture(t *testing.T, profile Profile, input string) *pipelineFixture {
	t.Helper()

	root := t.TempDir()
	cfg := config.Defaults(root)
	cfg.Build.Check = false

	source := git.NewMockClient()
	source.Branch = "main"
	source.ArchiveTar = buildTar(t, map[string]string{"index.html": "<html></html>"})

	target := git.NewMockClient()
	target.Branch = "main"
	target.Changes = &models.RepoStatus{Modified: []string{"index.html"}}

	journal, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, journal.Initialize())
	t.Cleanup(func() { journal.Close() })

	var log []string
	var buildOut bytes.Buffer
	p := &Pipeline{
		Profile:    profile,
		Config:     cfg,
		Source:     source,
		Target:     target,
		TargetPath: filepath.Join(root, "..", filepath.Base(root)+"-dev"),
		Builder: &Builder{
			Build: config.BuildConfig{Command: "true", SyncCommand: "true", Manifest: "pyproject.toml"},
			Out:   &buildOut,
			Err:   &buildOut,
		},
		Journal: journal,
		Prompt:  NewPrompter(strings.NewReader(input), &bytes.Buffer{}),
		Logf: func(format string, args ...any) {
			log = append(log, fmt.Sprintf(format, args...))
		},
	}
	return &pipelineFixture{pipeline: p, source: source, target: target, journal: journal, log: &log}
}

func TestPipeline_DevFlow(t *testing.T) {
	f := newPipelineFixture(t, DevProfile, "")

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	// Export landed in the target directory
	assert.FileExists(t, filepath.Join(f.pipeline.TargetPath, "index.html"))

	// Commit message was auto-generated
	require.Len(t, f.target.Committed, 1)
	assert.True(t, strings.HasPrefix(f.target.Committed[0], "Dev deployment - "))

	// One journal row with the resolved commit
	runs, err := f.journal.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.FlowDev, runs[0].Flow)
	assert.Equal(t, models.RunOK, runs[0].Outcome)
	assert.Equal(t, "HEAD", runs[0].Ref)
	assert.Equal(t, f.source.Refs["HEAD"], runs[0].Commit)
}

func TestPipeline_DevFlowCustomMessage(t *testing.T) {
	f := newPipelineFixture(t, DevProfile, "")

	err := f.pipeline.Run(context.Background(), RunOptions{Message: "fix nav layout"})
	require.NoError(t, err)

	assert.Equal(t, []string{"fix nav layout"}, f.target.Committed)
}

func TestPipeline_PublishFlowPrompts(t *testing.T) {
	// Dirty source: ref choice (1=HEAD), proceed (yes), tag (no),
	// commit message.
	f := newPipelineFixture(t, PublishProfile, "1\nyes\nno\nPublic release\n")
	f.source.Changes = &models.RepoStatus{Modified: []string{"main.py"}}

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Public release"}, f.target.Committed)
	assert.Empty(t, f.target.Tagged)

	runs, err := f.journal.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.FlowPublish, runs[0].Flow)
	assert.Equal(t, "Public release", runs[0].Message)
}

func TestPipeline_PublishFlowTagging(t *testing.T) {
	// Clean source: proceed (yes), tag (yes) + name, commit message.
	f := newPipelineFixture(t, PublishProfile, "yes\nyes\nv1.0.0\nRelease one\n")

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"v1.0.0|Release v1.0.0"}, f.target.Tagged)
	assert.Equal(t, []string{"push origin v1.0.0"}, f.target.CallsMatching("push origin"))

	runs, err := f.journal.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "v1.0.0", runs[0].Tag)
}

func TestPipeline_PublishDeclinedIsCancellation(t *testing.T) {
	f := newPipelineFixture(t, PublishProfile, "no\n")

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.ErrorIs(t, err, ErrCancelled)

	// Nothing was exported and nothing journaled
	assert.NoDirExists(t, f.pipeline.TargetPath)
	runs, jerr := f.journal.ListRuns(0)
	require.NoError(t, jerr)
	assert.Empty(t, runs)
}

func TestPipeline_EmptyMessageIsFatal(t *testing.T) {
	// Proceed (yes), no tag, then a blank commit message.
	f := newPipelineFixture(t, PublishProfile, "yes\nno\n\n")

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.ErrorIs(t, err, ErrEmptyMessage)

	assert.Empty(t, f.target.Committed)

	runs, jerr := f.journal.ListRuns(0)
	require.NoError(t, jerr)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunFailed, runs[0].Outcome)
}

func TestPipeline_NoChangesOutcome(t *testing.T) {
	f := newPipelineFixture(t, DevProfile, "")
	f.target.Changes = &models.RepoStatus{}

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Empty(t, f.target.Committed)
	runs, jerr := f.journal.ListRuns(0)
	require.NoError(t, jerr)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunNoChanges, runs[0].Outcome)
}

type stubCreator struct {
	urls []string
	err  error
}

func (s *stubCreator) CreateFromURL(ctx context.Context, remoteURL string) error {
	s.urls = append(s.urls, remoteURL)
	return s.err
}

func TestPipeline_MissingRemoteCreatesAndRetries(t *testing.T) {
	f := newPipelineFixture(t, DevProfile, "")
	f.pipeline.RemoteURL = "https://github.com/daeh/memo-demo-test.git"
	creator := &stubCreator{}
	f.pipeline.Forge = creator
	f.target.PushErr = &git.MissingRemoteError{Err: os.ErrNotExist}

	err := f.pipeline.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://github.com/daeh/memo-demo-test.git"}, creator.urls)
	// A fresh remote means the branch has no upstream yet
	assert.Equal(t, []string{"push -u origin main"}, f.target.CallsMatching("push -u"))

	runs, jerr := f.journal.ListRuns(0)
	require.NoError(t, jerr)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunOK, runs[0].Outcome)
}

func TestPipeline_MissingRemoteWithoutForgeHints(t *testing.T) {
	f := newPipelineFixture(t, DevProfile, "")
	f.target.PushErr = &git.MissingRemoteError{Err: os.ErrNotExist}

	err := f.pipeline.Run(context.Background(), RunOptions{})

	var missing *git.MissingRemoteError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, strings.Join(*f.log, "\n"), "https://github.com/new")
}
