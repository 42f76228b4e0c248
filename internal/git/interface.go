package git

import (
	"context"

	"github.com/kilupskalvis/shipout/internal/models"
)

// ClientInterface defines the contract for git operations used by the
// pipeline. This interface enables mocking for testing the core package.
type ClientInterface interface {
	// Inspection
	CurrentBranch(ctx context.Context) (string, error)
	LatestTag(ctx context.Context) (string, error)
	Status(ctx context.Context) (*models.RepoStatus, error)
	HasChanges(ctx context.Context) (bool, error)
	UncommittedPaths(ctx context.Context, ignoreDir string) ([]string, error)
	ResolveRef(ctx context.Context, ref string) (string, error)

	// Archiving
	Archive(ctx context.Context, ref string) ([]byte, error)

	// Publishing
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context) error
	PushUpstream(ctx context.Context, branch string) error
	ForcePush(ctx context.Context, branch string) error
	PushTag(ctx context.Context, name string) error
}

// Verify that *Client implements ClientInterface at compile time
var _ ClientInterface = (*Client)(nil)
