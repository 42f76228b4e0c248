package models

import "time"

// Flow names for the two deployment pipelines.
const (
	FlowDev     = "dev"
	FlowPublish = "publish"
)

// RunOutcome describes how a deployment run ended.
type RunOutcome string

const (
	RunOK        RunOutcome = "ok"
	RunFailed    RunOutcome = "failed"
	RunNoChanges RunOutcome = "nochanges"
)

// Run records a single deployment pipeline invocation.
type Run struct {
	ID         string     `json:"id"`
	Flow       string     `json:"flow"`
	Ref        string     `json:"ref"`
	Commit     string     `json:"commit,omitempty"`
	Target     string     `json:"target"`
	Message    string     `json:"message,omitempty"`
	Tag        string     `json:"tag,omitempty"`
	Outcome    RunOutcome `json:"outcome"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// ShortID returns a truncated run ID for display.
func (r *Run) ShortID() string {
	if len(r.ID) >= 8 {
		return r.ID[:8]
	}
	return r.ID
}

// ShortCommit returns an abbreviated commit hash for display.
func (r *Run) ShortCommit() string {
	if len(r.Commit) >= 7 {
		return r.Commit[:7]
	}
	return r.Commit
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
