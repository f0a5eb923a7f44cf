package types

import "time"

// DeploymentMode distinguishes a forward promotion from a rollback.
type DeploymentMode string

const (
	ModeDeploy   DeploymentMode = "deploy"
	ModeRollback DeploymentMode = "rollback"
)

// DeploymentStatus is the lifecycle state of a tracked promotion.
type DeploymentStatus string

const (
	StatusScheduled DeploymentStatus = "scheduled"
	StatusApproved  DeploymentStatus = "approved"
	StatusApplied   DeploymentStatus = "applied"
	StatusFailed    DeploymentStatus = "failed"
	StatusCancelled DeploymentStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are legal from this
// status. A new deployment must be created to retry.
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case StatusApplied, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Deployment is a durable record of one promotion through scheduling and
// approval. Mode is immutable after creation; Source may be rewritten only
// during approval.
type Deployment struct {
	ID             string           `json:"id"`
	Mode           DeploymentMode   `json:"mode"`
	Source         string           `json:"source"`
	Status         DeploymentStatus `json:"status"`
	ScheduledFor   *time.Time       `json:"scheduledFor,omitempty"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty"`
	AppliedAt      *time.Time       `json:"appliedAt,omitempty"`
	Error          string           `json:"error,omitempty"`
	DryRun         bool             `json:"dryRun"`
	Strict         bool             `json:"strict"`
	IncludeSecrets bool             `json:"includeSecrets"`
	Yes            bool             `json:"yes"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}
