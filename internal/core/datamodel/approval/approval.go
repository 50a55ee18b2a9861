package approval

import (
	"encoding/json"
	"time"

	userDatamodel "github.com/gradsync/portal/internal/core/datamodel/user"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// GroupInvitation invites a student into a project group. Group stays raw
// JSON for the same reason as notification references: the backend embeds a
// full group object on some endpoints and a bare id on others.
type GroupInvitation struct {
	ID             int64               `json:"invitation_id"`
	Group          json.RawMessage     `json:"group,omitempty"`
	InvitedStudent *userDatamodel.User `json:"invited_student,omitempty"`
	InvitedBy      *userDatamodel.User `json:"invited_by,omitempty"`
	Status         InvitationStatus    `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	ExpiresAt      time.Time           `json:"expires_at"`
}

// ApprovalRequest is a pending workflow approval (group creation, project
// proposal, supervisor assignment) routed to the current approver.
type ApprovalRequest struct {
	ID              int64               `json:"approval_id"`
	Type            string              `json:"approval_type"`
	Group           json.RawMessage     `json:"group,omitempty"`
	Project         json.RawMessage     `json:"project,omitempty"`
	RequestedBy     *userDatamodel.User `json:"requested_by,omitempty"`
	CurrentApprover *userDatamodel.User `json:"current_approver,omitempty"`
	ApprovalLevel   int                 `json:"approval_level"`
	Status          ApprovalStatus      `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
}
