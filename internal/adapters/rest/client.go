// Package rest implements the FleetAPI port over the backend's JSON REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/ctxutil"
	"github.com/example/fleetops/internal/models"
	"github.com/example/fleetops/internal/ports/secondary"
	"github.com/example/fleetops/internal/version"
)

const maxErrorBody = 4 << 10

// Client talks to the fleet backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  secondary.TokenSource
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens secondary.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ secondary.FleetAPI = (*Client)(nil)

// Login exchanges credentials for a token. A body with ok=false is an auth error.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp models.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if !resp.OK || resp.Token == "" {
		msg := resp.Error
		if msg == "" {
			msg = "login rejected"
		}
		return nil, &apperr.Error{Kind: apperr.KindAuth, Op: "login", Status: http.StatusUnauthorized, Msg: msg}
	}
	return &resp, nil
}

func (c *Client) ListBins(ctx context.Context) (models.BinList, error) {
	var out models.BinList
	if err := c.do(ctx, "list bins", http.MethodGet, "/api/bins", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDrivers(ctx context.Context) (models.DriverList, error) {
	var out models.DriverList
	if err := c.do(ctx, "list drivers", http.MethodGet, "/api/drivers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListShifts(ctx context.Context) (models.ShiftList, error) {
	var out models.ShiftList
	if err := c.do(ctx, "list shifts", http.MethodGet, "/api/shifts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetShift(ctx context.Context, id string) (*models.Shift, error) {
	var out models.Shift
	if err := c.do(ctx, "get shift", http.MethodGet, "/api/shifts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMoveRequests(ctx context.Context, filter models.MoveRequestFilter) (models.MoveRequestList, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.ShiftID != "" {
		q.Set("shift_id", filter.ShiftID)
	}
	if filter.BinID != "" {
		q.Set("bin_id", filter.BinID)
	}
	path := "/api/move-requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out models.MoveRequestList
	if err := c.do(ctx, "list move requests", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMoveRequest(ctx context.Context, id string) (*models.MoveRequest, error) {
	return c.moveRequest(ctx, "get move request", http.MethodGet, id, "", nil)
}

func (c *Client) AssignMoveRequest(ctx context.Context, req models.AssignRequest) (*models.MoveRequest, error) {
	return c.moveRequest(ctx, "assign move request", http.MethodPut, req.MoveRequestID, "/assign", req)
}

func (c *Client) ClearAssignment(ctx context.Context, id string) (*models.MoveRequest, error) {
	return c.moveRequest(ctx, "clear assignment", http.MethodPost, id, "/clear-assignment", nil)
}

func (c *Client) UpdateMoveRequestStatus(ctx context.Context, id, status string) (*models.MoveRequest, error) {
	return c.moveRequest(ctx, "update move request status", http.MethodPatch, id, "/status",
		map[string]string{"status": status})
}

func (c *Client) CancelMoveRequest(ctx context.Context, id, reason string) (*models.MoveRequest, error) {
	var body any
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	return c.moveRequest(ctx, "cancel move request", http.MethodPost, id, "/cancel", body)
}

func (c *Client) ListAuditEvents(ctx context.Context, subjectID string) (models.AuditEventList, error) {
	path := "/api/audit?" + url.Values{"subject_id": {subjectID}}.Encode()
	var out models.AuditEventList
	if err := c.do(ctx, "list audit events", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) moveRequest(ctx context.Context, op, method, id, suffix string, body any) (*models.MoveRequest, error) {
	if id == "" {
		return nil, apperr.Validation(op, "move request id required")
	}
	var out models.MoveRequest
	path := "/api/move-requests/" + url.PathEscape(id) + suffix
	if err := c.do(ctx, op, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request and decodes a 2xx body into out.
// An empty 2xx body leaves out untouched.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}
	if rid := ctxutil.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperr.Wrap(apperr.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.KindNetwork, op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apperr.Error{Kind: apperr.KindServer, Op: op, Status: resp.StatusCode,
			Msg: "malformed response body", Err: err}
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := errorMessage(data)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	kind := apperr.KindServer
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = apperr.KindAuth
	}
	return &apperr.Error{Kind: kind, Op: op, Status: resp.StatusCode, Msg: msg}
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// IsUnauthorized reports whether err is an auth failure from the backend.
func IsUnauthorized(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Kind == apperr.KindAuth
}

// StaticToken is a TokenSource with a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
