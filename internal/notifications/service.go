package notifications

import (
	"context"
	"log/slog"
	"sync"

	notificationDatamodel "github.com/gradsync/portal/internal/core/datamodel/notification"
)

// ClientAPI is the slice of the backend client this service consumes.
type ClientAPI interface {
	Notifications(ctx context.Context, limit int) ([]notificationDatamodel.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id int64) error
}

// Service layers the backend calls over the store. Mutations are optimistic:
// the store changes first and the backend call is fire-and-forget; a failure
// is logged as divergence and healed by the next poll's ReplaceAll.
type Service struct {
	client ClientAPI
	store  *Store
	logger *slog.Logger
	limit  int

	// fetchSeq tags each refresh; applySeq records the newest one whose
	// response has been applied. A response that resolves after a newer
	// fetch was issued is dropped instead of clobbering fresher state.
	seqMu    sync.Mutex
	fetchSeq uint64
	applySeq uint64
}

func NewService(client ClientAPI, store *Store, limit int, logger *slog.Logger) *Service {
	if limit <= 0 {
		limit = 50
	}
	return &Service{
		client: client,
		store:  store,
		logger: logger,
		limit:  limit,
	}
}

func (s *Service) Store() *Store {
	return s.store
}

// Refresh fetches the list and replaces the store, unless a newer refresh
// overtook this one while its request was in flight.
func (s *Service) Refresh(ctx context.Context) error {
	s.seqMu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.seqMu.Unlock()

	list, err := s.client.Notifications(ctx, s.limit)
	if err != nil {
		return err
	}

	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if seq < s.applySeq {
		s.logger.Debug("dropping stale notification response", "seq", seq, "applied_seq", s.applySeq)
		return nil
	}
	s.applySeq = seq
	s.store.ReplaceAll(list)
	return nil
}

// UnreadCount asks the backend for the authoritative unread counter.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	return s.client.UnreadCount(ctx)
}

// MarkRead marks locally first, then tells the backend. The local state is
// not rolled back on failure; the divergence is logged and the next poll
// restores server truth.
func (s *Service) MarkRead(ctx context.Context, id int64) {
	s.store.MarkRead(id)
	if err := s.client.MarkNotificationRead(ctx, id); err != nil {
		s.logger.Warn("mark-read not acknowledged by backend, local state may diverge until next poll",
			"notification_id", id, "error", err)
	}
}

func (s *Service) MarkAllRead(ctx context.Context) {
	s.store.MarkAllRead()
	if err := s.client.MarkAllNotificationsRead(ctx); err != nil {
		s.logger.Warn("mark-all-read not acknowledged by backend, local state may diverge until next poll",
			"error", err)
	}
}

func (s *Service) Delete(ctx context.Context, id int64) {
	s.store.Remove(id)
	if err := s.client.DeleteNotification(ctx, id); err != nil {
		s.logger.Warn("delete not acknowledged by backend, local state may diverge until next poll",
			"notification_id", id, "error", err)
	}
}
