package core

import (
	"context"
	"errors"
	"testing"

	"github.com/kilupskalvis/shipout/internal/git"
	"github.com/kilupskalvis/shipout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticMessage(msg string) func() (string, error) {
	return func() (string, error) { return msg, nil }
}

func dirtyClient() *git.MockClient {
	m := git.NewMockClient()
	m.Branch = "main"
	m.Changes = &models.RepoStatus{Modified: []string{"index.html"}}
	return m
}

func TestPublish_NoChanges(t *testing.T) {
	m := git.NewMockClient()
	m.Changes = &models.RepoStatus{}

	result, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("unused"),
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.NoChanges)
	// A clean target performs zero staging/commit/push calls.
	assert.Empty(t, m.Calls)
}

func TestPublish_CommitAndPush(t *testing.T) {
	m := dirtyClient()

	result, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("Update site"),
	}, nil)
	require.NoError(t, err)

	assert.False(t, result.NoChanges)
	assert.Equal(t, "Update site", result.Message)
	assert.Equal(t, []string{"add -A", "commit", "push"}, m.Calls)
	assert.Equal(t, []string{"Update site"}, m.Committed)
}

func TestPublish_MessageErrorAbortsBeforeCommit(t *testing.T) {
	m := dirtyClient()

	_, err := Publish(context.Background(), m, PublishOptions{
		Message: func() (string, error) { return "", ErrEmptyMessage },
	}, nil)
	require.ErrorIs(t, err, ErrEmptyMessage)

	assert.Empty(t, m.Committed)
	assert.Empty(t, m.CallsMatching("push"))
}

func TestPublish_NoUpstreamRetriesOnce(t *testing.T) {
	m := dirtyClient()
	m.PushErr = &git.NoUpstreamError{Err: errors.New("fatal: The current branch main has no upstream branch")}

	result, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("first push"),
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.UpstreamSet)
	assert.Equal(t, []string{"push -u origin main"}, m.CallsMatching("push -u"))
	assert.Len(t, m.CallsMatching("push"), 2) // original + one retry
}

func TestPublish_DivergedForcePushesOnce(t *testing.T) {
	m := dirtyClient()
	m.PushErr = &git.DivergedError{Err: errors.New("! [rejected] main -> main (fetch first)")}

	result, err := Publish(context.Background(), m, PublishOptions{
		Message:        staticMessage("dev deploy"),
		AllowForcePush: true,
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Forced)
	assert.Equal(t, []string{"push -f origin main"}, m.CallsMatching("push -f"))
	assert.Len(t, m.CallsMatching("push"), 2)
}

func TestPublish_DivergedWithoutForceFails(t *testing.T) {
	m := dirtyClient()
	m.PushErr = &git.DivergedError{Err: errors.New("! [rejected]")}

	_, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("public deploy"),
	}, nil)
	require.Error(t, err)

	assert.Empty(t, m.CallsMatching("push -f"))
	assert.Empty(t, m.CallsMatching("push -u"))
}

func TestPublish_DetachedHeadFallsBackToDefaultBranch(t *testing.T) {
	m := dirtyClient()
	m.Branch = ""
	m.PushErr = &git.NoUpstreamError{Err: errors.New("no upstream branch")}

	_, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("msg"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"push -u origin main"}, m.CallsMatching("push -u"))
}

func TestPublish_TagCreatedAndPushed(t *testing.T) {
	m := dirtyClient()

	result, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("release"),
		Tag:     "v1.0.0",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, result.TagPushErr)

	assert.Equal(t, []string{"v1.0.0|Release v1.0.0"}, m.Tagged)
	assert.Equal(t, []string{"push origin v1.0.0"}, m.CallsMatching("push origin"))
}

func TestPublish_TagPushFailureIsWarning(t *testing.T) {
	m := dirtyClient()
	m.PushTagErr = errors.New("network down")

	result, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("release"),
		Tag:     "v2.0.0",
	}, nil)
	require.NoError(t, err)

	assert.Error(t, result.TagPushErr)
	assert.Equal(t, []string{"v2.0.0|Release v2.0.0"}, m.Tagged)
}

func TestPublish_MissingRemoteSurfaces(t *testing.T) {
	m := dirtyClient()
	m.PushErr = &git.MissingRemoteError{Err: errors.New("ERROR: Repository not found")}

	_, err := Publish(context.Background(), m, PublishOptions{
		Message: staticMessage("msg"),
	}, nil)

	var missing *git.MissingRemoteError
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, m.CallsMatching("push -"))
}
