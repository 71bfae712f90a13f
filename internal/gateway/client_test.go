package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/model"
	"admin-console/pkg/apierror"
)

type memStore struct {
	mu     sync.Mutex
	sess   model.Session
	clears int
}

func (m *memStore) Load() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = model.Session{}
	m.clears++
	return nil
}

func authedStore() *memStore {
	return &memStore{sess: model.Session{
		User:         &model.User{ID: "u-1", Role: model.RoleAdmin},
		AccessToken:  "token-abc",
		RefreshToken: "refresh-xyz",
	}}
}

func newTestClient(t *testing.T, store SessionStore, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(server.URL, 5*time.Second, store)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, authedStore(), func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []model.Project{}})
	})

	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_NoBearerWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, &memStore{}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": model.Invite{ID: "i-1"}})
	})

	_, err := client.InviteStatus(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ExtractsErrorMessageFromEnvelope(t *testing.T) {
	client := newTestClient(t, authedStore(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"code": "ALREADY_EXISTS", "message": "project name is taken"},
		})
	})

	_, err := client.CreateProject(context.Background(), "dupe", "")
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus)
	assert.Equal(t, "project name is taken", apiErr.Message)
}

func TestClient_FallsBackToGenericMessage(t *testing.T) {
	client := newTestClient(t, authedStore(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus)
	assert.NotEmpty(t, apiErr.Message)
}

func TestClient_UnauthorizedTearsDownSessionOnce(t *testing.T) {
	store := authedStore()
	hooks := 0

	client := newTestClient(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"code": "UNAUTHORIZED", "message": "token expired"},
		})
	})
	client.OnAuthFailure(func() { hooks++ })

	_, err := client.ListProjects(context.Background())
	require.True(t, apierror.IsUnauthorized(err))
	assert.Equal(t, 1, store.clears, "durable session must be cleared")
	assert.Equal(t, 1, hooks, "auth failure hook must fire exactly once")
	assert.False(t, store.Load().IsAuthenticated())
}

func TestClient_UnauthorizedLoginDoesNotTearDown(t *testing.T) {
	// A failed login is a credential error, not a session death: there
	// is no held session to tear down.
	store := &memStore{}
	hooks := 0

	client := newTestClient(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"code": "UNAUTHORIZED", "message": "invalid credentials"},
		})
	})
	client.OnAuthFailure(func() { hooks++ })

	_, err := client.Login(context.Background(), "a@b.c", "nope")
	require.True(t, apierror.IsUnauthorized(err))
	assert.Zero(t, store.clears)
	assert.Zero(t, hooks)
}

func TestClient_NormalizesWireIDs(t *testing.T) {
	client := newTestClient(t, authedStore(), func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"_id": "p-1", "name": "Alpha", "status": "ACTIVE"},
				{"id": "p-2", "name": "Beta", "status": "ON_HOLD"},
			},
		})
	})

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p-1", projects[0].ID)
	assert.Equal(t, "p-2", projects[1].ID)
}

func TestClient_DecodesBothUserListingShapes(t *testing.T) {
	t.Run("paged object", func(t *testing.T) {
		client := newTestClient(t, authedStore(), func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"users":      []model.User{{ID: "u-1"}, {ID: "u-2"}},
					"totalCount": 42,
				},
			})
		})

		page, err := client.ListUsers(context.Background(), 2, 10)
		require.NoError(t, err)
		assert.Len(t, page.Users, 2)
		assert.Equal(t, 42, page.TotalCount)
	})

	t.Run("bare array", func(t *testing.T) {
		client := newTestClient(t, authedStore(), func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    []model.User{{ID: "u-1"}},
			})
		})

		page, err := client.ListUsers(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Len(t, page.Users, 1)
		assert.Equal(t, 1, page.TotalCount)
	})
}
