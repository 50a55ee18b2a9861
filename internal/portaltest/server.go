// Package portaltest provides an in-process fake of the portal backend for
// tests: the login endpoint, the notification collection with both response
// shapes (bare array and DRF results envelope), and the invitation/approval
// endpoints, plus counters for asserting on poll traffic.
package portaltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi"

	approvalDatamodel "github.com/gradsync/portal/internal/core/datamodel/approval"
	notificationDatamodel "github.com/gradsync/portal/internal/core/datamodel/notification"
)

const (
	// DefaultAccessToken is the bearer credential the fake issues at login
	// and expects on protected endpoints.
	DefaultAccessToken  = "test-access-token"
	DefaultRefreshToken = "test-refresh-token"
)

type Server struct {
	httpServer *httptest.Server

	mu            sync.Mutex
	notifications []notificationDatamodel.Notification
	invitations   []approvalDatamodel.GroupInvitation
	approvals     []approvalDatamodel.ApprovalRequest
	paginated     bool
	loginUser     map[string]interface{}
	accessToken   string

	notificationFetches atomic.Int64
	lastAuthorization   atomic.Value
}

func NewServer() *Server {
	s := &Server{
		notifications: []notificationDatamodel.Notification{},
		invitations:   []approvalDatamodel.GroupInvitation{},
		approvals:     []approvalDatamodel.ApprovalRequest{},
		accessToken:   DefaultAccessToken,
		loginUser: map[string]interface{}{
			"id":       1,
			"username": "amal",
			"name":     "Amal Haddad",
			"email":    "amal@example.edu",
			"roles": []map[string]interface{}{
				{"role__role_ID": 1, "role__type": "student"},
			},
		},
	}

	router := chi.NewRouter()
	router.Post("/auth/login/", s.handleLogin)
	router.Get("/notifications/", s.handleNotifications)
	router.Get("/notifications/unread-count/", s.handleUnreadCount)
	router.Post("/notifications/{id}/mark-read/", s.handleMarkRead)
	router.Post("/notifications/mark-all-read/", s.handleMarkAllRead)
	router.Delete("/notifications/{id}/", s.handleDelete)
	router.Get("/invitations/", s.handleInvitations)
	router.Post("/invitations/{id}/respond/", s.handleInvitationRespond)
	router.Get("/approvals/pending/", s.handleApprovals)
	router.Post("/approvals/{id}/respond/", s.handleApprovalRespond)

	s.httpServer = httptest.NewServer(router)
	return s
}

func (s *Server) URL() string { return s.httpServer.URL }

func (s *Server) Close() { s.httpServer.Close() }

// NotificationFetches reports how many times GET /notifications/ was hit,
// for asserting that a stopped poller stays stopped.
func (s *Server) NotificationFetches() int64 {
	return s.notificationFetches.Load()
}

// LastAuthorization returns the Authorization header of the most recent
// protected request.
func (s *Server) LastAuthorization() string {
	if v, ok := s.lastAuthorization.Load().(string); ok {
		return v
	}
	return ""
}

func (s *Server) SetNotifications(list []notificationDatamodel.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = list
}

func (s *Server) SetInvitations(list []approvalDatamodel.GroupInvitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations = list
}

func (s *Server) SetApprovals(list []approvalDatamodel.ApprovalRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals = list
}

// SetPaginated switches list endpoints to the {"results": [...]} envelope.
func (s *Server) SetPaginated(paginated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paginated = paginated
}

// SetLoginUser overrides the raw user payload the login endpoint returns.
func (s *Server) SetLoginUser(payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginUser = payload
}

// SetAccessToken overrides the token issued at login and required on
// protected endpoints.
func (s *Server) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *Server) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	s.lastAuthorization.Store(auth)
	s.mu.Lock()
	defer s.mu.Unlock()
	return auth == "Bearer "+s.accessToken
}

// unauthorized mimics DRF: a present-but-rejected token gets the simplejwt
// token_not_valid envelope, a missing one the plain credentials message.
func unauthorized(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
		return
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeList(w http.ResponseWriter, list interface{}) {
	s.mu.Lock()
	paginated := s.paginated
	s.mu.Unlock()

	if paginated {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   nil,
			"next":    nil,
			"results": list,
		})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed request"})
		return
	}
	if body.Username == "" || body.Password == "" || body.Password == "wrong" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	s.mu.Lock()
	payload := map[string]interface{}{
		"access":  s.accessToken,
		"refresh": DefaultRefreshToken,
		"user":    s.loginUser,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}
	s.notificationFetches.Add(1)

	s.mu.Lock()
	list := make([]notificationDatamodel.Notification, len(s.notifications))
	copy(list, s.notifications)
	s.mu.Unlock()

	s.writeList(w, list)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	s.mu.Lock()
	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			found = true
		}
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No Notification matches the given query."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	found := false
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No Notification matches the given query."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvitations(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	s.mu.Lock()
	list := make([]approvalDatamodel.GroupInvitation, len(s.invitations))
	copy(list, s.invitations)
	s.mu.Unlock()

	s.writeList(w, list)
}

func (s *Server) handleApprovals(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	s.mu.Lock()
	list := make([]approvalDatamodel.ApprovalRequest, len(s.approvals))
	copy(list, s.approvals)
	s.mu.Unlock()

	s.writeList(w, list)
}

func (s *Server) handleInvitationRespond(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	action, ok := decodeAction(w, r)
	if !ok {
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	found := false
	for i := range s.invitations {
		if s.invitations[i].ID == id {
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No GroupInvitation matches the given query."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": action})
}

func (s *Server) handleApprovalRespond(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		unauthorized(w, r)
		return
	}

	action, ok := decodeAction(w, r)
	if !ok {
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	found := false
	for i := range s.approvals {
		if s.approvals[i].ID == id {
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No ApprovalRequest matches the given query."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": action})
}

func decodeAction(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "action is required"})
		return "", false
	}
	return body.Action, true
}
