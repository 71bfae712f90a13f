package guard

import (
	"net/http"

	"admin-console/internal/model"
)

const (
	loginPath = "/login"
	homePath  = "/dashboard"
)

// SessionSource yields the current session snapshot; the auth state
// container satisfies it.
type SessionSource interface {
	Session() model.Session
}

// Protect wraps a route with a guard decision: unauthenticated
// visitors land on the login page, authenticated visitors missing the
// required role land back on the dashboard.
func Protect(source SessionSource, requiredRole model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch Decide(source.Session(), requiredRole) {
			case RedirectLogin:
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			case RedirectHome:
				http.Redirect(w, r, homePath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
