// Package web is the console's thin view layer: handlers read state
// container snapshots, dispatch operations from form posts, and render
// server-side templates. All remote work happens through the state
// containers; handlers never talk to the backend directly except for
// the pre-session invite status lookup.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"admin-console/internal/gateway"
	"admin-console/internal/model"
	"admin-console/internal/state"
	"admin-console/pkg/apierror"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	auth      *state.Auth
	projects  *state.Projects
	users     *state.Users
	invites   *state.Invites
	gateway   *gateway.Client
	templates *template.Template
}

func NewHandler(auth *state.Auth, projects *state.Projects, users *state.Users, invites *state.Invites, gw *gateway.Client) *Handler {
	return &Handler{
		auth:      auth,
		projects:  projects,
		users:     users,
		invites:   invites,
		gateway:   gw,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// page is the data every template receives.
type page struct {
	Title string
	// Flash is a validation message shown above the form; remote
	// failures surface through the container snapshots instead.
	Flash string
	User  any
	Data  any
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	if p.User == nil {
		if sess := h.auth.Session(); sess.User != nil {
			p.User = sess.User
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, p); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
	}
}

// redirectIfSessionDead sends the visitor to the login page when err
// is a 401 teardown; the session is already gone by the time the slice
// reports it. Returns true when the response has been written.
func redirectIfSessionDead(w http.ResponseWriter, r *http.Request, err error) bool {
	if apierror.IsUnauthorized(err) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return true
	}

	return false
}

// validationMessage extracts the message of a local validation
// failure, or "" when err came from the backend.
func validationMessage(err error) string {
	if errors.Is(err, model.ErrInvalidInput) {
		return err.Error()
	}

	return ""
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
