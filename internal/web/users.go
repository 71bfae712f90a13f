package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"admin-console/internal/model"
	"admin-console/internal/state"
)

type usersView struct {
	Users   state.UsersSnapshot
	Invites state.InvitesSnapshot
	Flash   string
	Roles   []model.Role
}

func (h *Handler) UsersPage(w http.ResponseWriter, r *http.Request) {
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if err := h.users.Fetch(r.Context(), pageNum, limit); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	if err := h.invites.FetchAll(r.Context()); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	h.renderUsers(w, http.StatusOK, "")
}

func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	role := model.Role(strings.TrimSpace(r.FormValue("role")))

	if !model.ValidRole(role) {
		h.renderUsers(w, http.StatusUnprocessableEntity, "unknown role")
		return
	}

	if err := h.users.SetRole(r.Context(), userID, role); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		h.renderUsers(w, statusFor(err), "")
		return
	}

	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) ChangeUserStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	status := model.UserStatus(strings.TrimSpace(r.FormValue("status")))

	if status != model.UserActive && status != model.UserInactive {
		h.renderUsers(w, http.StatusUnprocessableEntity, "unknown status")
		return
	}

	if err := h.users.SetStatus(r.Context(), userID, status); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		h.renderUsers(w, statusFor(err), "")
		return
	}

	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	role := model.Role(strings.TrimSpace(r.FormValue("role")))

	if err := h.invites.Create(r.Context(), email, role); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		if flash := validationMessage(err); flash != "" {
			h.renderUsers(w, http.StatusUnprocessableEntity, flash)
			return
		}
		h.renderUsers(w, statusFor(err), "")
		return
	}

	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	inviteID := chi.URLParam(r, "id")

	if err := h.invites.Revoke(r.Context(), inviteID); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		h.renderUsers(w, statusFor(err), "")
		return
	}

	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) renderUsers(w http.ResponseWriter, status int, flash string) {
	h.render(w, status, "users.html", page{
		Title: "Users",
		Flash: flash,
		Data: usersView{
			Users:   h.users.Snapshot(),
			Invites: h.invites.Snapshot(),
			Roles:   []model.Role{model.RoleAdmin, model.RoleManager, model.RoleStaff},
		},
	})
}
