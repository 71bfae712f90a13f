package web

import (
	"net/http"
	"time"

	"admin-console/internal/model"
	"admin-console/internal/state"
)

type dashboardView struct {
	Auth        state.AuthSnapshot
	Projects    state.ProjectsSnapshot
	TokenExpiry time.Time
	HasExpiry   bool
	ActiveCount int
	OnHoldCount int
	IsAdmin     bool
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.FetchProfile(r.Context()); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	if err := h.projects.FetchAll(r.Context()); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	view := dashboardView{
		Auth:     h.auth.Snapshot(),
		Projects: h.projects.Snapshot(),
		IsAdmin:  h.auth.Session().Role() == model.RoleAdmin,
	}
	view.TokenExpiry, view.HasExpiry = h.auth.TokenExpiry()

	for _, project := range view.Projects.Projects {
		switch project.Status {
		case model.ProjectActive:
			view.ActiveCount++
		case model.ProjectOnHold:
			view.OnHoldCount++
		}
	}

	h.render(w, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Data: view})
}
