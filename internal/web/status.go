package web

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type sliceStatus struct {
	Count     int    `json:"count"`
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error,omitempty"`
}

type stateReport struct {
	Authenticated bool                   `json:"authenticated"`
	Role          string                 `json:"role,omitempty"`
	Slices        map[string]sliceStatus `json:"slices"`
}

// State reports session and per-container status as JSON for external
// monitors. Tokens are never included.
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	sess := h.auth.Session()
	authSnap := h.auth.Snapshot()
	projectsSnap := h.projects.Snapshot()
	usersSnap := h.users.Snapshot()
	invitesSnap := h.invites.Snapshot()

	report := stateReport{
		Authenticated: sess.IsAuthenticated(),
		Role:          string(sess.Role()),
		Slices: map[string]sliceStatus{
			"auth":     {IsLoading: authSnap.IsLoading, Error: authSnap.Err},
			"projects": {Count: len(projectsSnap.Projects), IsLoading: projectsSnap.IsLoading, Error: projectsSnap.Err},
			"users":    {Count: len(usersSnap.Users), IsLoading: usersSnap.IsLoading, Error: usersSnap.Err},
			"invites":  {Count: len(invitesSnap.Invites), IsLoading: invitesSnap.IsLoading, Error: invitesSnap.Err},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
