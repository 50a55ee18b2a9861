package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the session and notification layers.
const (
	TypeSessionLogin           = "session.login"
	TypeSessionLogout          = "session.logout"
	TypeNotificationsRefreshed = "notifications.refreshed"
	TypeInvitationResponded    = "invitation.responded"
	TypeApprovalResponded      = "approval.responded"
)

// New builds a BaseEvent with a fresh id and timestamp.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
