// Package core implements the shared deployment pipeline: status
// inspection, export, build and publish. The two CLI flows drive it with
// different profiles.
package core

import "github.com/kilupskalvis/shipout/internal/models"

// Profile captures the policy differences between the two flows.
type Profile struct {
	// Flow names the pipeline variant, used for target lookup and the
	// run journal.
	Flow string
	// Interactive enables operator prompts (ref choice, confirmations,
	// commit message, tagging).
	Interactive bool
	// AllowForcePush enables the force-push recovery when the remote has
	// diverged. Only the dev flow may overwrite the remote.
	AllowForcePush bool
	// AutoMessage generates a timestamped commit message when none was
	// supplied instead of prompting.
	AutoMessage bool
	// TolerateCheckFailure downgrades a failed source build check to a
	// warning instead of requiring confirmation.
	TolerateCheckFailure bool
}

// DevProfile is the unattended development flow.
var DevProfile = Profile{
	Flow:                 models.FlowDev,
	AllowForcePush:       true,
	AutoMessage:          true,
	TolerateCheckFailure: true,
}

// PublishProfile is the interactive public flow.
var PublishProfile = Profile{
	Flow:        models.FlowPublish,
	Interactive: true,
}
