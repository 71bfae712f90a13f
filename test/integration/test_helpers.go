//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"admin-console/internal/config"
	"admin-console/internal/gateway"
	"admin-console/internal/model"
	"admin-console/internal/router"
	"admin-console/internal/session"
	"admin-console/internal/state"
	"admin-console/internal/web"
)

// fakeBackend plays the REST API the console talks to. Accounts are
// keyed by email; any of them signs in with the shared test password.
type fakeBackend struct {
	server   *httptest.Server
	accounts map[string]model.User
	projects []model.Project
	invites  []model.Invite

	// when set, every request answers 401 to simulate a dead session
	expired atomic.Bool
}

const testPassword = "console-test-password"

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		accounts: map[string]model.User{
			"admin@example.com": {ID: "u-admin", Name: "Ada Admin", Email: "admin@example.com", Role: model.RoleAdmin, Status: model.UserActive},
			"staff@example.com": {ID: "u-staff", Name: "Sam Staff", Email: "staff@example.com", Role: model.RoleStaff, Status: model.UserActive},
		},
		projects: []model.Project{
			{ID: "p-1", Name: "Atlas", Status: model.ProjectActive},
			{ID: "p-2", Name: "Borealis", Status: model.ProjectOnHold},
		},
		invites: []model.Invite{
			{ID: "inv-1", Email: "new@example.com", Role: model.RoleStaff, Status: model.InvitePending},
		},
	}

	mux := http.NewServeMux()
	// method-prefixed ServeMux patterns need go1.22+; guard the method by
	// hand so the fake backend also runs under go1.21
	handle := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
				return
			}
			h(w, r)
		})
	}
	handle(http.MethodPost, "/auth/login", b.handleLogin)
	handle(http.MethodPost, "/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		b.writeData(w, http.StatusOK, nil)
	})
	handle(http.MethodGet, "/auth/profile", b.authed(func(w http.ResponseWriter, r *http.Request) {
		b.writeData(w, http.StatusOK, b.accounts[userFromToken(r)])
	}))
	handle(http.MethodGet, "/projects", b.authed(func(w http.ResponseWriter, _ *http.Request) {
		b.writeData(w, http.StatusOK, b.projects)
	}))
	handle(http.MethodGet, "/users", b.authed(func(w http.ResponseWriter, _ *http.Request) {
		users := make([]model.User, 0, len(b.accounts))
		for _, u := range b.accounts {
			users = append(users, u)
		}
		b.writeData(w, http.StatusOK, map[string]any{"users": users, "totalCount": len(users)})
	}))
	handle(http.MethodGet, "/users/invites", b.authed(func(w http.ResponseWriter, _ *http.Request) {
		b.writeData(w, http.StatusOK, b.invites)
	}))

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)

	return b
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	user, ok := b.accounts[creds.Email]
	if !ok || creds.Password != testPassword {
		b.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	b.writeData(w, http.StatusOK, map[string]any{
		"user":         user,
		"accessToken":  "access-" + user.Email,
		"refreshToken": "refresh-" + user.Email,
	})
}

// authed rejects requests without a bearer token, or everything when
// the backend has been flipped into expired mode.
func (b *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.expired.Load() || userFromToken(r) == "" {
			b.writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "session expired")
			return
		}
		next(w, r)
	}
}

func userFromToken(r *http.Request) string {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return strings.TrimPrefix(token, "access-")
}

func (b *fakeBackend) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func (b *fakeBackend) writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

// newConsole wires a full console against the fake backend and returns
// the serving test server plus the session database path so tests can
// reopen the store and inspect persisted state.
func newConsole(t *testing.T, backend *fakeBackend) (*httptest.Server, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "console.db")
	store, err := session.Open(dbPath, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		ServerPort:         "8090",
		ServerReadTimeout:  15 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		ServerIdleTimeout:  120 * time.Second,
		RequestTimeout:     10 * time.Second,
		APIBaseURL:         backend.server.URL,
		APITimeout:         5 * time.Second,
		StateDBPath:        dbPath,
		CORSOrigins:        []string{"*"},
		RateLimitRPM:       6000,
		LoginRateLimitRPM:  600,
	}

	client := gateway.New(cfg.APIBaseURL, cfg.APITimeout, store)
	auth := state.NewAuth(client, store)
	client.OnAuthFailure(auth.DropSession)
	projects := state.NewProjects(client)
	users := state.NewUsers(client)
	invites := state.NewInvites(client)

	handler := web.NewHandler(auth, projects, users, invites, client)
	server := httptest.NewServer(router.New(cfg, auth, handler))
	t.Cleanup(server.Close)

	return server, dbPath
}

// noRedirectClient returns the final response of the first hop so tests
// can assert on redirect targets.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, client *http.Client, serverURL string, email string) *http.Response {
	t.Helper()

	form := url.Values{"email": {email}, "password": {testPassword}}
	resp, err := client.PostForm(serverURL+"/login", form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}
