package web

import (
	"net/http"
	"strings"

	"admin-console/internal/model"
)

type loginForm struct {
	Email string
	Err   string
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.auth.Session().IsAuthenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "login.html", page{Title: "Sign in", Data: loginForm{}})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	// Validation failures never leave the console.
	if email == "" || password == "" {
		h.render(w, http.StatusUnprocessableEntity, "login.html", page{
			Title: "Sign in",
			Flash: "email and password are required",
			Data:  loginForm{Email: email},
		})
		return
	}

	if err := h.auth.Login(r.Context(), email, password); err != nil {
		h.render(w, http.StatusUnauthorized, "login.html", page{
			Title: "Sign in",
			Data:  loginForm{Email: email, Err: h.auth.Snapshot().Err},
		})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type inviteForm struct {
	Token  string
	Invite *model.Invite
	Name   string
	Email  string
	Err    string
}

// InvitePage looks up the invite named by ?token= and shows the
// registration form when it is still PENDING.
func (h *Handler) InvitePage(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		h.render(w, http.StatusBadRequest, "invite.html", page{
			Title: "Join",
			Data:  inviteForm{Err: "missing invite token"},
		})
		return
	}

	invite, err := h.gateway.InviteStatus(r.Context(), token)
	if err != nil {
		h.render(w, http.StatusOK, "invite.html", page{
			Title: "Join",
			Data:  inviteForm{Token: token, Err: "this invitation could not be found or has expired"},
		})
		return
	}

	h.render(w, http.StatusOK, "invite.html", page{
		Title: "Join",
		Data:  inviteForm{Token: token, Invite: &invite, Email: invite.Email},
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.FormValue("token"))
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	form := inviteForm{Token: token, Name: name, Email: email}

	switch {
	case name == "" || email == "" || password == "":
		form.Err = "name, email and password are required"
	case password != confirm:
		form.Err = "passwords do not match"
	}
	if form.Err != "" {
		h.render(w, http.StatusUnprocessableEntity, "invite.html", page{Title: "Join", Data: form})
		return
	}

	if err := h.auth.Register(r.Context(), name, email, password, token); err != nil {
		form.Err = h.auth.Snapshot().Err
		h.render(w, http.StatusBadRequest, "invite.html", page{Title: "Join", Data: form})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
