package web

import (
	"net/http"
	"strings"

	"admin-console/internal/state"
)

type profileView struct {
	Auth state.AuthSnapshot
}

func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.FetchProfile(r.Context()); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	h.renderProfile(w, http.StatusOK, "")
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))

	if name == "" {
		h.renderProfile(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	if err := h.auth.UpdateProfile(r.Context(), name); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		h.renderProfile(w, statusFor(err), "")
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) renderProfile(w http.ResponseWriter, status int, flash string) {
	h.render(w, status, "profile.html", page{
		Title: "Profile",
		Flash: flash,
		Data:  profileView{Auth: h.auth.Snapshot()},
	})
}
