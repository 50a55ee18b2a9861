package approvals

import (
	"context"
	"log/slog"

	approvalDatamodel "github.com/gradsync/portal/internal/core/datamodel/approval"
	"github.com/gradsync/portal/internal/core/events"
)

type ClientAPI interface {
	Invitations(ctx context.Context) ([]approvalDatamodel.GroupInvitation, error)
	RespondInvitation(ctx context.Context, id int64, accept bool) error
	PendingApprovals(ctx context.Context) ([]approvalDatamodel.ApprovalRequest, error)
	RespondApproval(ctx context.Context, id int64, approve bool) error
}

// Service keeps the invitation and approval stores fed and applies
// responses optimistically, the same contract as the notification service:
// local state first, backend call logged on failure, reconciliation on the
// next refresh.
type Service struct {
	client      ClientAPI
	invitations *InvitationStore
	approvals   *ApprovalStore
	bus         *events.EventBus
	logger      *slog.Logger
}

func NewService(client ClientAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		client:      client,
		invitations: NewInvitationStore(),
		approvals:   NewApprovalStore(),
		bus:         bus,
		logger:      logger,
	}
}

func (s *Service) Invitations() *InvitationStore { return s.invitations }
func (s *Service) Approvals() *ApprovalStore     { return s.approvals }

func (s *Service) RefreshInvitations(ctx context.Context) error {
	list, err := s.client.Invitations(ctx)
	if err != nil {
		return err
	}
	s.invitations.ReplaceAll(list)
	return nil
}

func (s *Service) RefreshApprovals(ctx context.Context) error {
	list, err := s.client.PendingApprovals(ctx)
	if err != nil {
		return err
	}
	s.approvals.ReplaceAll(list)
	return nil
}

// RespondInvitation records the answer locally and forwards it.
func (s *Service) RespondInvitation(ctx context.Context, id int64, accept bool) {
	status := approvalDatamodel.InvitationRejected
	if accept {
		status = approvalDatamodel.InvitationAccepted
	}
	s.invitations.UpdateStatus(id, status)

	if err := s.client.RespondInvitation(ctx, id, accept); err != nil {
		s.logger.Warn("invitation response not acknowledged by backend, local state may diverge",
			"invitation_id", id, "error", err)
		return
	}

	s.publish(events.TypeInvitationResponded, map[string]interface{}{
		"invitation_id": id,
		"status":        string(status),
	})
}

func (s *Service) RespondApproval(ctx context.Context, id int64, approve bool) {
	status := approvalDatamodel.ApprovalRejected
	if approve {
		status = approvalDatamodel.ApprovalApproved
	}
	s.approvals.UpdateStatus(id, status)

	if err := s.client.RespondApproval(ctx, id, approve); err != nil {
		s.logger.Warn("approval response not acknowledged by backend, local state may diverge",
			"approval_id", id, "error", err)
		return
	}

	s.publish(events.TypeApprovalResponded, map[string]interface{}{
		"approval_id": id,
		"status":      string(status),
	})
}

// publish delivers synchronously; the respond commands exit right after the
// mutation and would otherwise race their own listeners.
func (s *Service) publish(eventType string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(context.Background(), events.New(eventType, data)); err != nil {
		s.logger.Warn("failed to publish approval event", "event_type", eventType, "error", err)
	}
}
