package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"admin-console/internal/model"
)

func authedSession(role model.Role) model.Session {
	return model.Session{
		User:        &model.User{ID: "u-1", Role: role},
		AccessToken: "token",
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		session      model.Session
		requiredRole model.Role
		want         Decision
	}{
		{
			name:         "unauthenticated always redirects to login",
			session:      model.Session{},
			requiredRole: "",
			want:         RedirectLogin,
		},
		{
			name:         "unauthenticated redirects to login even for role-gated routes",
			session:      model.Session{},
			requiredRole: model.RoleAdmin,
			want:         RedirectLogin,
		},
		{
			name:         "authenticated with no required role is allowed",
			session:      authedSession(model.RoleStaff),
			requiredRole: "",
			want:         Allow,
		},
		{
			name:         "staff on an admin route redirects home",
			session:      authedSession(model.RoleStaff),
			requiredRole: model.RoleAdmin,
			want:         RedirectHome,
		},
		{
			name:         "manager on an admin route redirects home",
			session:      authedSession(model.RoleManager),
			requiredRole: model.RoleAdmin,
			want:         RedirectHome,
		},
		{
			name:         "admin on an admin route is allowed",
			session:      authedSession(model.RoleAdmin),
			requiredRole: model.RoleAdmin,
			want:         Allow,
		},
		{
			name: "token without user fails role-gated routes",
			session: model.Session{
				AccessToken: "token",
			},
			requiredRole: model.RoleAdmin,
			want:         RedirectHome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.session, tt.requiredRole))
		})
	}
}

type staticSource struct {
	sess model.Session
}

func (s staticSource) Session() model.Session { return s.sess }

func TestProtect(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("redirects unauthenticated to login", func(t *testing.T) {
		handler := Protect(staticSource{}, "")(next)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("redirects wrong role to dashboard", func(t *testing.T) {
		handler := Protect(staticSource{sess: authedSession(model.RoleStaff)}, model.RoleAdmin)(next)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("passes through when allowed", func(t *testing.T) {
		handler := Protect(staticSource{sess: authedSession(model.RoleAdmin)}, model.RoleAdmin)(next)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
