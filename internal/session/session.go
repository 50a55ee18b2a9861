// Package session owns the auth lifecycle: the anonymous/authenticated state
// machine, user normalization at the login boundary, and the role and
// permission predicates the rest of the client gates on.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gradsync/portal/internal"
	userDatamodel "github.com/gradsync/portal/internal/core/datamodel/user"
	"github.com/gradsync/portal/internal/core/events"
)

// StorageAPI is the slice of the credential store the session needs.
type StorageAPI interface {
	PersistToken(token string) error
	PersistRefreshToken(token string) error
	LoadOnStartup() string
	SaveUser(u *userDatamodel.User) error
	LoadUser() *userDatamodel.User
	ClearUser() error
}

// Tokens is the pair returned by the login endpoint. Refresh may be empty;
// only Access gates authentication.
type Tokens struct {
	Access  string
	Refresh string
}

// Service is a process-wide singleton guarding the session state with a
// mutex: either no user (anonymous) or exactly one normalized user
// (authenticated). IsAuthenticated is derived from the user being present,
// so the two can never disagree.
type Service struct {
	storage StorageAPI
	bus     *events.EventBus
	logger  *slog.Logger

	mu   sync.RWMutex
	user *userDatamodel.User
}

func NewService(storage StorageAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		bus:     bus,
		logger:  logger,
	}
}

// Restore rebuilds the session from the durable cache at startup. The
// session is authenticated only when a non-expired token and a readable
// cached user are both present; a token without a user (or the reverse) is
// treated as no session and the leftovers are cleared.
func (s *Service) Restore() {
	token := s.storage.LoadOnStartup()
	if token == "" {
		return
	}

	if tokenExpired(token) {
		s.logger.Info("cached access token expired, discarding session")
		if err := s.storage.PersistToken(""); err != nil {
			s.logger.Warn("failed to clear expired token", "error", err)
		}
		return
	}

	cached := s.storage.LoadUser()
	if cached == nil {
		s.logger.Warn("cached token present but no usable cached user, discarding session")
		if err := s.storage.PersistToken(""); err != nil {
			s.logger.Warn("failed to clear orphaned token", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.user = cached
	s.mu.Unlock()

	s.logger.Info("session restored", "user_id", cached.ID, "primary_role", cached.PrimaryRole())
}

// Login normalizes the raw payload, persists the credential and user, and
// swaps the in-memory state. Side-effect order matters: token first (so the
// header is installed), then the user cache, then memory. A second rapid
// Login simply overwrites everything: last write wins.
func (s *Service) Login(raw userDatamodel.APIUser, roles []userDatamodel.Role, tokens Tokens) (*userDatamodel.User, error) {
	normalized, err := Normalize(raw, roles)
	if err != nil {
		return nil, err
	}
	if tokens.Access == "" {
		return nil, internal.ErrInvalidToken
	}

	if err := s.storage.PersistToken(tokens.Access); err != nil {
		s.logger.Warn("token not persisted, session will not survive restart", "error", err)
	}
	if err := s.storage.PersistRefreshToken(tokens.Refresh); err != nil {
		s.logger.Warn("refresh token not persisted", "error", err)
	}
	if err := s.storage.SaveUser(normalized); err != nil {
		s.logger.Warn("user not cached, session will not survive restart", "error", err)
	}

	s.mu.Lock()
	s.user = normalized
	s.mu.Unlock()

	s.logger.Info("logged in",
		"user_id", normalized.ID,
		"username", normalized.Username,
		"primary_role", normalized.PrimaryRole())

	s.publish(events.TypeSessionLogin, map[string]interface{}{
		"user_id":      normalized.ID,
		"username":     normalized.Username,
		"primary_role": normalized.PrimaryRole(),
	})

	return normalized, nil
}

// Logout clears the credential, the cached user, and the in-memory state.
// Calling it while anonymous does nothing.
func (s *Service) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.user != nil
	previous := s.user
	s.user = nil
	s.mu.Unlock()

	if !wasAuthenticated {
		return
	}

	if err := s.storage.PersistToken(""); err != nil {
		s.logger.Warn("failed to clear persisted token", "error", err)
	}
	if err := s.storage.PersistRefreshToken(""); err != nil {
		s.logger.Warn("failed to clear persisted refresh token", "error", err)
	}
	if err := s.storage.ClearUser(); err != nil {
		s.logger.Warn("failed to clear cached user", "error", err)
	}

	s.logger.Info("logged out", "user_id", previous.ID)

	s.publish(events.TypeSessionLogout, map[string]interface{}{
		"user_id": previous.ID,
	})
}

// Current returns the authenticated user, or nil when anonymous.
func (s *Service) Current() *userDatamodel.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// HasCredential satisfies the polling driver's credential check.
func (s *Service) HasCredential() bool {
	return s.IsAuthenticated()
}

// RequireAuth returns ErrNotAuthenticated while anonymous, for callers that
// need an error value rather than a boolean.
func (s *Service) RequireAuth() error {
	if !s.IsAuthenticated() {
		return internal.ErrNotAuthenticated
	}
	return nil
}

// HasRole reports whether the user carries the role. Always false while
// anonymous; never panics.
func (s *Service) HasRole(role string) bool {
	return s.Current().HasRole(role)
}

func (s *Service) HasAnyRole(roles []string) bool {
	return s.Current().HasAnyRole(roles)
}

func (s *Service) HasPermission(permission string) bool {
	return s.Current().HasPermission(permission)
}

// publish delivers synchronously so listeners run even when the process
// exits right after the login or logout that published.
func (s *Service) publish(eventType string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(context.Background(), events.New(eventType, data)); err != nil {
		s.logger.Warn("failed to publish session event", "event_type", eventType, "error", err)
	}
}
