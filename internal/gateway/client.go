// Package gateway is the single point of outbound HTTP calls to the
// backend REST API. It attaches the bearer token held by the session
// store to every request, extracts structured failures from the
// response envelope, and performs the one reactive session teardown
// when the backend answers 401.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"admin-console/internal/model"
	"admin-console/pkg/apierror"
)

// SessionStore is the slice of the durable store the client needs:
// reading the current tokens and clearing them on auth failure.
type SessionStore interface {
	Load() model.Session
	Clear() error
}

// Credentials is the payload of a successful login or registration.
type Credentials struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// UserPage is one page of the admin user listing. The backend answers
// either {users, totalCount} or a bare array; both decode into this.
type UserPage struct {
	Users      []model.User
	TotalCount int
}

type Client struct {
	baseURL       string
	http          *http.Client
	store         SessionStore
	onAuthFailure func()
}

func New(baseURL string, timeout time.Duration, store SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
	}
}

// OnAuthFailure registers the hook fired after a 401 teardown, once
// the durable store has been cleared. The auth container uses it to
// drop its in-memory session so the next guarded page load redirects
// to the login entry point.
func (c *Client) OnAuthFailure(fn func()) {
	c.onAuthFailure = fn
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.store.Load().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		c.teardown()
		return apierror.New(resp.StatusCode, env.code(), env.message("session expired"))
	}

	if resp.StatusCode >= 400 {
		return apierror.New(resp.StatusCode, env.code(), env.message(http.StatusText(resp.StatusCode)))
	}

	if out == nil {
		return nil
	}

	data := env.Data
	if data == nil {
		// Some backends answer without the envelope.
		data = raw
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}

	return nil
}

// teardown clears the durable session exactly once per failed request
// and notifies the auth container. A 401 on login (no session held)
// is a credential failure, not a session death, and is left alone.
func (c *Client) teardown() {
	if c.store.Load().RefreshToken == "" {
		return
	}

	_ = c.store.Clear()
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

func (e envelope) code() string {
	if e.Error != nil {
		return e.Error.Code
	}

	return ""
}

func (e envelope) message(fallback string) string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}

	if e.Message != "" {
		return e.Message
	}

	return fallback
}

// Auth operations.

func (c *Client) Login(ctx context.Context, email string, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &creds)

	return creds, err
}

func (c *Client) Register(ctx context.Context, name string, email string, password string, inviteToken string) (Credentials, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}
	if inviteToken != "" {
		body["inviteToken"] = inviteToken
	}

	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &creds)

	return creds, err
}

// Logout tells the backend to drop the session. Callers treat it as
// best-effort; local session state is cleared regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Profile(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user)

	return user, err
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodPut, "/auth/profile", nil, map[string]string{"name": name}, &user)

	return user, err
}

// Project operations. Project payloads are normalized at this boundary:
// every project handed to callers has a populated ID even when the
// backend keys records as "_id".

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var wire []wireProject
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &wire); err != nil {
		return nil, err
	}

	return normalizeProjects(wire), nil
}

func (c *Client) GetProject(ctx context.Context, id string) (model.Project, error) {
	var wire wireProject
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, nil, &wire); err != nil {
		return model.Project{}, err
	}

	return wire.normalize(), nil
}

func (c *Client) CreateProject(ctx context.Context, name string, description string) (model.Project, error) {
	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}

	var wire wireProject
	if err := c.do(ctx, http.MethodPost, "/projects", nil, body, &wire); err != nil {
		return model.Project{}, err
	}

	return wire.normalize(), nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, fields map[string]any) (model.Project, error) {
	var wire wireProject
	if err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(id), nil, fields, &wire); err != nil {
		return model.Project{}, err
	}

	return wire.normalize(), nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) AddTeamMember(ctx context.Context, projectID string, memberID string, role string) (model.Project, error) {
	body := map[string]string{"memberId": memberID}
	if role != "" {
		body["role"] = role
	}

	var wire wireProject
	err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/team-members", nil, body, &wire)
	if err != nil {
		return model.Project{}, err
	}

	return wire.normalize(), nil
}

func (c *Client) RemoveTeamMember(ctx context.Context, projectID string, memberID string) (model.Project, error) {
	var wire wireProject
	err := c.do(ctx, http.MethodDelete,
		"/projects/"+url.PathEscape(projectID)+"/team-members/"+url.PathEscape(memberID), nil, nil, &wire)
	if err != nil {
		return model.Project{}, err
	}

	return wire.normalize(), nil
}

// User administration operations.

func (c *Client) ListUsers(ctx context.Context, page int, limit int) (UserPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &raw); err != nil {
		return UserPage{}, err
	}

	return decodeUserPage(raw)
}

func (c *Client) SetUserStatus(ctx context.Context, userID string, status model.UserStatus) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/status", nil,
		map[string]string{"status": string(status)}, &user)

	return user, err
}

func (c *Client) SetUserRole(ctx context.Context, userID string, role model.Role) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/role", nil,
		map[string]string{"role": string(role)}, &user)

	return user, err
}

// Invite operations.

func (c *Client) CreateInvite(ctx context.Context, email string, role model.Role) (model.Invite, error) {
	var invite model.Invite
	err := c.do(ctx, http.MethodPost, "/users/invites/create", nil, map[string]string{
		"email": email,
		"role":  string(role),
	}, &invite)

	return invite, err
}

func (c *Client) ListInvites(ctx context.Context) ([]model.Invite, error) {
	var invites []model.Invite
	err := c.do(ctx, http.MethodGet, "/users/invites", nil, nil, &invites)

	return invites, err
}

func (c *Client) RevokeInvite(ctx context.Context, inviteID string) error {
	return c.do(ctx, http.MethodDelete, "/users/invites/"+url.PathEscape(inviteID), nil, nil, nil)
}

func (c *Client) InviteStatus(ctx context.Context, token string) (model.Invite, error) {
	query := url.Values{"inviteToken": []string{token}}

	var invite model.Invite
	err := c.do(ctx, http.MethodGet, "/users/invites/status", query, nil, &invite)

	return invite, err
}
