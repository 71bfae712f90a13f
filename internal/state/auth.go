package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"admin-console/internal/gateway"
	"admin-console/internal/model"
)

// SessionStore is the durable mirror the auth container writes through.
// *session.Store satisfies it.
type SessionStore interface {
	Load() model.Session
	Save(model.Session) error
	Clear() error
}

// AuthGateway is the slice of the backend client the auth container
// uses.
type AuthGateway interface {
	Login(ctx context.Context, email string, password string) (gateway.Credentials, error)
	Register(ctx context.Context, name string, email string, password string, inviteToken string) (gateway.Credentials, error)
	Profile(ctx context.Context) (model.User, error)
	UpdateProfile(ctx context.Context, name string) (model.User, error)
	Logout(ctx context.Context) error
}

// Auth owns the session: it is the only writer of the token fields and
// of the durable store. It hydrates from the store at construction so
// a restart resumes the previous session.
type Auth struct {
	mu      sync.Mutex
	gateway AuthGateway
	store   SessionStore
	sess    model.Session
	phase
}

type AuthSnapshot struct {
	Session   model.Session
	IsLoading bool
	Err       string
}

func NewAuth(gw AuthGateway, store SessionStore) *Auth {
	return &Auth{
		gateway: gw,
		store:   store,
		sess:    store.Load(),
	}
}

// DropSession discards the in-memory session without touching the
// store. The gateway fires this after a 401 teardown, when the store
// is already cleared.
func (a *Auth) DropSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = model.Session{}
}

func (a *Auth) Login(ctx context.Context, email string, password string) error {
	a.beginOp()

	creds, err := a.gateway.Login(ctx, email, password)
	if err != nil {
		a.rejectOp(err)
		return err
	}

	a.adoptSession(creds)
	return nil
}

func (a *Auth) Register(ctx context.Context, name string, email string, password string, inviteToken string) error {
	a.beginOp()

	creds, err := a.gateway.Register(ctx, name, email, password, inviteToken)
	if err != nil {
		a.rejectOp(err)
		return err
	}

	a.adoptSession(creds)
	return nil
}

// FetchProfile refreshes the session user from the backend.
func (a *Auth) FetchProfile(ctx context.Context) error {
	a.beginOp()

	user, err := a.gateway.Profile(ctx)
	if err != nil {
		a.rejectOp(err)
		return err
	}

	a.adoptUser(user)
	return nil
}

func (a *Auth) UpdateProfile(ctx context.Context, name string) error {
	a.beginOp()

	user, err := a.gateway.UpdateProfile(ctx, name)
	if err != nil {
		a.rejectOp(err)
		return err
	}

	a.adoptUser(user)
	return nil
}

// Logout is best-effort remote, guaranteed local: the session and the
// durable store are cleared even when the backend call fails.
func (a *Auth) Logout(ctx context.Context) {
	if err := a.gateway.Logout(ctx); err != nil {
		slog.Warn("remote logout failed, clearing local session anyway", "error", err)
	}

	if err := a.store.Clear(); err != nil {
		slog.Warn("failed to clear session store", "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = model.Session{}
	a.fulfill()
}

// Session returns the current session snapshot for the guard.
func (a *Auth) Session() model.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess
}

func (a *Auth) Snapshot() AuthSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AuthSnapshot{Session: a.sess, IsLoading: a.isLoading, Err: a.err}
}

func (a *Auth) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = ""
}

// TokenExpiry reads the exp claim of the held access token for display
// purposes. The token is not verified here; the backend stays the
// authority on validity.
func (a *Auth) TokenExpiry() (time.Time, bool) {
	sess := a.Session()
	if sess.AccessToken == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(sess.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

func (a *Auth) beginOp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.begin()
}

func (a *Auth) rejectOp(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reject(err)
}

func (a *Auth) adoptSession(creds gateway.Credentials) {
	user := creds.User
	sess := model.Session{User: &user, AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken}

	// Mirror before publishing so a crash between the two leaves the
	// durable copy ahead of, never behind, the in-memory one.
	if err := a.store.Save(sess); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = sess
	a.fulfill()
}

func (a *Auth) adoptUser(user model.User) {
	a.mu.Lock()
	sess := a.sess
	sess.User = &user
	a.sess = sess
	a.fulfill()
	a.mu.Unlock()

	if err := a.store.Save(sess); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}
}
