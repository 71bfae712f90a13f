package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"admin-console/internal/config"
	"admin-console/internal/guard"
	"admin-console/internal/middleware"
	"admin-console/internal/model"
	"admin-console/internal/state"
	"admin-console/internal/web"
)

// New assembles the console's route table. Guard requirements mirror
// the navigation rules: /login and /invite are open, /users and
// project editing are ADMIN-only, everything else needs any
// authenticated session.
func New(cfg *config.Config, auth *state.Auth, h *web.Handler) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.LoginRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(rateLimit.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", h.Health)
	r.With(middleware.CORS(cfg.CORSOrigins)).Get("/api/state", h.State)

	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/invite", h.InvitePage)
	r.Post("/invite", h.Register)

	r.Group(func(authed chi.Router) {
		authed.Use(guard.Protect(auth, ""))

		authed.Get("/", h.Root)
		authed.Get("/dashboard", h.Dashboard)
		authed.Get("/profile", h.ProfilePage)
		authed.Post("/profile", h.UpdateProfile)
		authed.Get("/projects", h.ProjectsPage)
		authed.Post("/projects", h.CreateProject)
		authed.Get("/projects/{id}", h.ProjectDetail)
		authed.Post("/projects/{id}/team-members", h.AddTeamMember)
		authed.Post("/projects/{id}/team-members/{memberId}/remove", h.RemoveTeamMember)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(guard.Protect(auth, model.RoleAdmin))

		admin.Get("/projects/{id}/edit", h.EditProjectPage)
		admin.Post("/projects/{id}/edit", h.UpdateProject)
		admin.Post("/projects/{id}/delete", h.DeleteProject)
		admin.Get("/users", h.UsersPage)
		admin.Post("/users/{id}/role", h.ChangeUserRole)
		admin.Post("/users/{id}/status", h.ChangeUserStatus)
		admin.Post("/users/invites", h.CreateInvite)
		admin.Post("/users/invites/{id}/revoke", h.RevokeInvite)
	})

	return r
}
