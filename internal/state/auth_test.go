package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/gateway"
	"admin-console/internal/model"
	"admin-console/pkg/apierror"
)

type memSessionStore struct {
	mu     sync.Mutex
	sess   model.Session
	saves  int
	clears int
}

func (m *memSessionStore) Load() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

func (m *memSessionStore) Save(sess model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
	m.saves++
	return nil
}

func (m *memSessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = model.Session{}
	m.clears++
	return nil
}

type fakeAuthGateway struct {
	creds     gateway.Credentials
	user      model.User
	err       error
	logoutErr error
}

func (f *fakeAuthGateway) Login(context.Context, string, string) (gateway.Credentials, error) {
	return f.creds, f.err
}

func (f *fakeAuthGateway) Register(context.Context, string, string, string, string) (gateway.Credentials, error) {
	return f.creds, f.err
}

func (f *fakeAuthGateway) Profile(context.Context) (model.User, error) {
	return f.user, f.err
}

func (f *fakeAuthGateway) UpdateProfile(context.Context, string) (model.User, error) {
	return f.user, f.err
}

func (f *fakeAuthGateway) Logout(context.Context) error {
	return f.logoutErr
}

func adminCredentials() gateway.Credentials {
	return gateway.Credentials{
		User:         model.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin},
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
	}
}

func TestAuth_LoginPopulatesSessionAndStore(t *testing.T) {
	store := &memSessionStore{}
	auth := NewAuth(&fakeAuthGateway{creds: adminCredentials()}, store)

	require.NoError(t, auth.Login(context.Background(), "ada@example.com", "secret"))

	sess := auth.Session()
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "access-123", sess.AccessToken)
	assert.Equal(t, model.RoleAdmin, sess.Role())

	persisted := store.Load()
	assert.Equal(t, "access-123", persisted.AccessToken, "store must mirror the session")
	assert.Equal(t, "refresh-456", persisted.RefreshToken)
	require.NotNil(t, persisted.User)
	assert.Equal(t, "u-1", persisted.User.ID)
}

func TestAuth_LoginFailureRecordsError(t *testing.T) {
	store := &memSessionStore{}
	auth := NewAuth(&fakeAuthGateway{err: apierror.New(401, "UNAUTHORIZED", "invalid credentials")}, store)

	require.Error(t, auth.Login(context.Background(), "ada@example.com", "wrong"))

	snap := auth.Snapshot()
	assert.False(t, snap.Session.IsAuthenticated())
	assert.False(t, snap.IsLoading)
	assert.Equal(t, "invalid credentials", snap.Err)
	assert.Zero(t, store.saves)
}

func TestAuth_RegisterPopulatesSession(t *testing.T) {
	store := &memSessionStore{}
	auth := NewAuth(&fakeAuthGateway{creds: adminCredentials()}, store)

	require.NoError(t, auth.Register(context.Background(), "Ada", "ada@example.com", "secret", "invite-tok"))

	assert.True(t, auth.Session().IsAuthenticated())
	assert.Equal(t, 1, store.saves)
}

func TestAuth_HydratesFromStoreAtStartup(t *testing.T) {
	store := &memSessionStore{sess: model.Session{
		User:         &model.User{ID: "u-1", Role: model.RoleStaff},
		AccessToken:  "persisted-token",
		RefreshToken: "persisted-refresh",
	}}

	auth := NewAuth(&fakeAuthGateway{}, store)

	sess := auth.Session()
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, model.RoleStaff, sess.Role())
}

func TestAuth_LogoutClearsEvenWhenRemoteFails(t *testing.T) {
	store := &memSessionStore{}
	gw := &fakeAuthGateway{creds: adminCredentials(), logoutErr: apierror.New(502, "BAD_GATEWAY", "backend down")}
	auth := NewAuth(gw, store)

	require.NoError(t, auth.Login(context.Background(), "ada@example.com", "secret"))
	require.True(t, auth.Session().IsAuthenticated())

	auth.Logout(context.Background())

	assert.False(t, auth.Session().IsAuthenticated())
	assert.False(t, store.Load().IsAuthenticated(), "durable store cleared despite remote failure")
	assert.Equal(t, 1, store.clears)
}

func TestAuth_DropSessionDiscardsMemoryOnly(t *testing.T) {
	store := &memSessionStore{}
	auth := NewAuth(&fakeAuthGateway{creds: adminCredentials()}, store)
	require.NoError(t, auth.Login(context.Background(), "ada@example.com", "secret"))

	auth.DropSession()

	assert.False(t, auth.Session().IsAuthenticated())
	// The durable clear on 401 belongs to the gateway; DropSession only
	// drops the in-memory copy.
	assert.Zero(t, store.clears)
}

func TestAuth_FetchProfileRefreshesUser(t *testing.T) {
	store := &memSessionStore{}
	gw := &fakeAuthGateway{creds: adminCredentials(), user: model.User{ID: "u-1", Name: "Ada Lovelace", Role: model.RoleAdmin}}
	auth := NewAuth(gw, store)
	require.NoError(t, auth.Login(context.Background(), "ada@example.com", "secret"))

	require.NoError(t, auth.FetchProfile(context.Background()))

	sess := auth.Session()
	require.NotNil(t, sess.User)
	assert.Equal(t, "Ada Lovelace", sess.User.Name)
	assert.Equal(t, "access-123", sess.AccessToken, "token fields untouched by profile refresh")
	require.NotNil(t, store.Load().User)
	assert.Equal(t, "Ada Lovelace", store.Load().User.Name, "mirror follows the user change")
}

func TestAuth_TokenExpiry(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		auth := NewAuth(&fakeAuthGateway{}, &memSessionStore{})
		_, ok := auth.TokenExpiry()
		assert.False(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		store := &memSessionStore{sess: model.Session{AccessToken: "not-a-jwt"}}
		auth := NewAuth(&fakeAuthGateway{}, store)
		_, ok := auth.TokenExpiry()
		assert.False(t, ok)
	})
}
