package git

import (
	"fmt"
	"strings"
)

// RefNotFoundError reports an export ref that does not resolve to a
// revision in the source repository.
type RefNotFoundError struct {
	Ref string
	Err error
}

func (e *RefNotFoundError) Error() string { return fmt.Sprintf("ref %q not found", e.Ref) }
func (e *RefNotFoundError) Unwrap() error { return e.Err }

// NoUpstreamError reports a push that failed because the current branch has
// no upstream configured yet.
type NoUpstreamError struct {
	Err error
}

func (e *NoUpstreamError) Error() string { return fmt.Sprintf("no upstream branch: %v", e.Err) }
func (e *NoUpstreamError) Unwrap() error { return e.Err }

// DivergedError reports a push rejected because the remote holds commits the
// local branch does not.
type DivergedError struct {
	Err error
}

func (e *DivergedError) Error() string { return fmt.Sprintf("remote has diverged: %v", e.Err) }
func (e *DivergedError) Unwrap() error { return e.Err }

// MissingRemoteError reports a push against a remote repository that does
// not exist or could not be read.
type MissingRemoteError struct {
	Err error
}

func (e *MissingRemoteError) Error() string { return fmt.Sprintf("remote repository unavailable: %v", e.Err) }
func (e *MissingRemoteError) Unwrap() error { return e.Err }

// classifyPushError maps push failures onto typed variants by matching the
// stderr text. Git's push output carries no structured error information, so
// text matching is the only signal available; the match set is a known
// limitation, not a contract.
func classifyPushError(stderr string, err error) error {
	if err == nil {
		return nil
	}
	l := strings.ToLower(stderr)
	switch {
	case strings.Contains(l, "no upstream branch"):
		return &NoUpstreamError{Err: err}
	case strings.Contains(l, "rejected"), strings.Contains(l, "fetch first"):
		return &DivergedError{Err: err}
	case strings.Contains(l, "repository not found"), strings.Contains(l, "could not read from remote"):
		return &MissingRemoteError{Err: err}
	default:
		return err
	}
}
