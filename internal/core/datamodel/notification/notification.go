package notification

import (
	"encoding/json"
	"time"
)

type Type string

const (
	TypeInvitation         Type = "invitation"
	TypeInvitationAccepted Type = "invitation_accepted"
	TypeInvitationRejected Type = "invitation_rejected"
	TypeApprovalRequest    Type = "approval_request"
	TypeApprovalApproved   Type = "approval_approved"
	TypeApprovalRejected   Type = "approval_rejected"
	TypeSystemAlert        Type = "system_alert"
	TypeSystemInfo         Type = "system_info"
	TypeReminder           Type = "reminder"
)

// Notification is the read-model record fetched from the backend. The
// related_* references are loosely typed: the backend sometimes sends a bare
// id and sometimes an embedded object, so they stay raw JSON.
type Notification struct {
	ID             int64           `json:"notification_id"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Type           Type            `json:"notification_type"`
	IsRead         bool            `json:"is_read"`
	CreatedAt      time.Time       `json:"created_at"`
	RelatedGroup   json.RawMessage `json:"related_group,omitempty"`
	RelatedProject json.RawMessage `json:"related_project,omitempty"`
	RelatedUser    json.RawMessage `json:"related_user,omitempty"`
}
