package git

import (
	"context"
	"strings"

	"github.com/kilupskalvis/shipout/internal/models"
)

// MockClient is a mock implementation of ClientInterface for testing.
type MockClient struct {
	// Branch is the current branch name
	Branch string
	// TagName is the latest reachable tag
	TagName string
	// Changes is the working-tree state returned by Status
	Changes *models.RepoStatus
	// Refs maps resolvable refs to commit hashes
	Refs map[string]string
	// ArchiveTar is the tar stream returned by Archive
	ArchiveTar []byte
	// Err can be set to make every method return an error
	Err error

	// Per-push-variant errors, for exercising the recovery paths
	PushErr         error
	PushUpstreamErr error
	ForcePushErr    error
	PushTagErr      error

	// Calls records every mutating invocation in order
	Calls []string
	// Committed collects commit messages received
	Committed []string
	// Tagged collects "name|message" pairs received
	Tagged []string
}

// NewMockClient creates a new MockClient for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		Changes: &models.RepoStatus{},
		Refs:    map[string]string{"HEAD": "aaaabbbbccccddddeeeeffff0000111122223333"},
	}
}

func (m *MockClient) record(call string) {
	m.Calls = append(m.Calls, call)
}

// CallsMatching returns recorded calls with the given prefix.
func (m *MockClient) CallsMatching(prefix string) []string {
	var out []string
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// CurrentBranch returns the mock branch name.
func (m *MockClient) CurrentBranch(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Branch, nil
}

// LatestTag returns the mock tag.
func (m *MockClient) LatestTag(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.TagName, nil
}

// Status returns the mock working-tree state.
func (m *MockClient) Status(ctx context.Context) (*models.RepoStatus, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Changes == nil {
		return &models.RepoStatus{}, nil
	}
	return m.Changes, nil
}

// HasChanges reports whether the mock state holds any paths.
func (m *MockClient) HasChanges(ctx context.Context) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Changes != nil && !m.Changes.IsClean(), nil
}

// UncommittedPaths flattens the mock state with the ignore filter applied.
func (m *MockClient) UncommittedPaths(ctx context.Context, ignoreDir string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Changes == nil {
		return nil, nil
	}
	return m.Changes.PathsOutside(ignoreDir), nil
}

// ResolveRef resolves against the Refs map.
func (m *MockClient) ResolveRef(ctx context.Context, ref string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	commit, ok := m.Refs[ref]
	if !ok {
		return "", &RefNotFoundError{Ref: ref}
	}
	return commit, nil
}

// Archive returns the mock tar stream.
func (m *MockClient) Archive(ctx context.Context, ref string) ([]byte, error) {
	m.record("archive " + ref)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ArchiveTar, nil
}

// AddAll records the staging call.
func (m *MockClient) AddAll(ctx context.Context) error {
	m.record("add -A")
	return m.Err
}

// Commit records the commit and its message.
func (m *MockClient) Commit(ctx context.Context, message string) error {
	m.record("commit")
	if m.Err != nil {
		return m.Err
	}
	m.Committed = append(m.Committed, message)
	return nil
}

// Tag records the tag creation.
func (m *MockClient) Tag(ctx context.Context, name, message string) error {
	m.record("tag " + name)
	if m.Err != nil {
		return m.Err
	}
	m.Tagged = append(m.Tagged, name+"|"+message)
	return nil
}

// Push records the plain push and returns PushErr.
func (m *MockClient) Push(ctx context.Context) error {
	m.record("push")
	if m.Err != nil {
		return m.Err
	}
	return m.PushErr
}

// PushUpstream records the upstream-setting push.
func (m *MockClient) PushUpstream(ctx context.Context, branch string) error {
	m.record("push -u origin " + branch)
	if m.Err != nil {
		return m.Err
	}
	return m.PushUpstreamErr
}

// ForcePush records the force push.
func (m *MockClient) ForcePush(ctx context.Context, branch string) error {
	m.record("push -f origin " + branch)
	if m.Err != nil {
		return m.Err
	}
	return m.ForcePushErr
}

// PushTag records the tag push.
func (m *MockClient) PushTag(ctx context.Context, name string) error {
	m.record("push origin " + name)
	if m.Err != nil {
		return m.Err
	}
	return m.PushTagErr
}

// Verify MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)
