// Package guard decides whether a route may render for the current
// session. Decide is pure so the decision table can be tested without
// an HTTP stack; the middleware translates decisions into redirects.
package guard

import "admin-console/internal/model"

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decide gates a navigation target. requiredRole == "" means any
// authenticated session may pass. The role check is exact equality;
// there is no role hierarchy.
func Decide(sess model.Session, requiredRole model.Role) Decision {
	if !sess.IsAuthenticated() {
		return RedirectLogin
	}

	if requiredRole != "" && sess.Role() != requiredRole {
		return RedirectHome
	}

	return Allow
}
