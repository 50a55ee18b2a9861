package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gradsync/portal/internal"
	approvalDatamodel "github.com/gradsync/portal/internal/core/datamodel/approval"
	notificationDatamodel "github.com/gradsync/portal/internal/core/datamodel/notification"
)

// Client is the shared HTTP client for the portal backend. Once a bearer
// token is installed via SetAuthToken it is attached to every outgoing
// request, mirroring an axios default header.
type Client struct {
	baseURL        string
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         *slog.Logger

	mu        sync.RWMutex
	authToken string
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(config.BaseURL, "/"),
		requestTimeout: timeout,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// SetAuthToken installs token as the default Authorization credential for
// all subsequent requests. An empty token clears the header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// HasAuthToken reports whether a default credential is installed.
func (c *Client) HasAuthToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken != ""
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return internal.NewInternalError("failed to marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return internal.NewInternalError("failed to create HTTP request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace-ID", uuid.NewString())

	c.mu.RLock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internal.NewExternalError("request to backend failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return internal.NewExternalError("failed to decode backend response", resp.StatusCode, err)
	}

	return nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	message := fmt.Sprintf("backend returned status %d", resp.StatusCode)
	if json.Unmarshal(bodyBytes, &envelope) == nil {
		if envelope.Detail != "" {
			message = envelope.Detail
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}

	c.logger.Error("backend error response",
		"status", resp.StatusCode,
		"method", resp.Request.Method,
		"url", resp.Request.URL.Path,
		"message", message)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// simplejwt flags a dead token with code "token_not_valid";
		// anything else on 401 is a credential problem
		if envelope.Code == "token_not_valid" {
			return internal.ErrTokenExpired
		}
		return internal.NewUnauthorizedError(message, internal.ErrCodeInvalidCredentials)
	case http.StatusForbidden:
		return internal.NewForbiddenError(message, internal.ErrCodeInvalidToken)
	case http.StatusNotFound:
		return internal.NewNotFoundError(message, internal.ErrCodeBackendError)
	default:
		return internal.NewExternalError(message, resp.StatusCode, nil)
	}
}

// notFoundAs rewrites a generic 404 into the calling endpoint's lookup code
// so callers can tell a missing resource from a missing route.
func notFoundAs(err error, code internal.ErrorCode) error {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
		return internal.NewNotFoundError(appErr.Message, code)
	}
	return err
}

// Login authenticates against the backend and returns the raw login
// envelope. The token is not installed automatically; the session layer owns
// that side effect so persistence and the header stay in sync.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	req := LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "auth/login/", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, internal.NewExternalError("login response missing access token", http.StatusOK, nil)
	}
	return &resp, nil
}

// Notifications fetches the notification list, newest first. The backend
// returns either a bare array or a DRF-style {"results": [...]} envelope;
// both decode into a plain slice.
func (c *Client) Notifications(ctx context.Context, limit int) ([]notificationDatamodel.Notification, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "notifications/", query, nil, &raw); err != nil {
		return nil, err
	}

	return decodeNotificationList(raw), nil
}

func decodeNotificationList(raw json.RawMessage) []notificationDatamodel.Notification {
	var list []notificationDatamodel.Notification
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var envelope struct {
		Results []notificationDatamodel.Notification `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results
	}

	// not sequence-shaped at all: treat as empty rather than failing the poll
	return []notificationDatamodel.Notification{}
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "notifications/unread-count/", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("notifications/%d/mark-read/", id), nil, struct{}{}, nil)
	return notFoundAs(err, internal.ErrCodeNotificationNotFound)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "notifications/mark-all-read/", nil, struct{}{}, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("notifications/%d/", id), nil, nil, nil)
	return notFoundAs(err, internal.ErrCodeNotificationNotFound)
}

func (c *Client) Invitations(ctx context.Context) ([]approvalDatamodel.GroupInvitation, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "invitations/", nil, nil, &raw); err != nil {
		return nil, err
	}

	var list []approvalDatamodel.GroupInvitation
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Results []approvalDatamodel.GroupInvitation `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}
	return []approvalDatamodel.GroupInvitation{}, nil
}

func (c *Client) RespondInvitation(ctx context.Context, id int64, accept bool) error {
	action := "reject"
	if accept {
		action = "accept"
	}
	body := map[string]string{"action": action}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("invitations/%d/respond/", id), nil, body, nil)
	return notFoundAs(err, internal.ErrCodeInvitationNotFound)
}

func (c *Client) PendingApprovals(ctx context.Context) ([]approvalDatamodel.ApprovalRequest, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "approvals/pending/", nil, nil, &raw); err != nil {
		return nil, err
	}

	var list []approvalDatamodel.ApprovalRequest
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Results []approvalDatamodel.ApprovalRequest `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}
	return []approvalDatamodel.ApprovalRequest{}, nil
}

func (c *Client) RespondApproval(ctx context.Context, id int64, approve bool) error {
	action := "reject"
	if approve {
		action = "approve"
	}
	body := map[string]string{"action": action}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("approvals/%d/respond/", id), nil, body, nil)
	return notFoundAs(err, internal.ErrCodeApprovalNotFound)
}
