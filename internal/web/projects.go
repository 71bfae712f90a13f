package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"admin-console/internal/model"
	"admin-console/internal/state"
	"admin-console/pkg/apierror"
)

type projectsView struct {
	Snapshot state.ProjectsSnapshot
	Flash    string
	IsAdmin  bool
}

func (h *Handler) ProjectsPage(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.FetchAll(r.Context()); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	h.renderProjects(w, http.StatusOK, "")
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))

	if name == "" {
		h.renderProjects(w, http.StatusUnprocessableEntity, "project name is required")
		return
	}

	if err := h.projects.Create(r.Context(), name, description); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		h.renderProjects(w, statusFor(err), "")
		return
	}

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (h *Handler) renderProjects(w http.ResponseWriter, status int, flash string) {
	h.render(w, status, "projects.html", page{
		Title: "Projects",
		Flash: flash,
		Data: projectsView{
			Snapshot: h.projects.Snapshot(),
			IsAdmin:  h.auth.Session().Role() == model.RoleAdmin,
		},
	})
}

type projectDetailView struct {
	Project *model.Project
	Err     string
	IsAdmin bool
}

func (h *Handler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.projects.FetchOne(r.Context(), id); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		if apierror.IsNotFound(err) {
			// A missing project is a state, not an error banner.
			h.render(w, http.StatusNotFound, "project_notfound.html", page{Title: "Project not found"})
			return
		}
	}

	snap := h.projects.Snapshot()
	h.render(w, http.StatusOK, "project_detail.html", page{
		Title: "Project",
		Data: projectDetailView{
			Project: snap.Selected,
			Err:     snap.Err,
			IsAdmin: h.auth.Session().Role() == model.RoleAdmin,
		},
	})
}

func (h *Handler) EditProjectPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.projects.FetchOne(r.Context(), id); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		if apierror.IsNotFound(err) {
			h.render(w, http.StatusNotFound, "project_notfound.html", page{Title: "Project not found"})
			return
		}
	}

	snap := h.projects.Snapshot()
	h.render(w, http.StatusOK, "project_edit.html", page{
		Title: "Edit project",
		Data:  projectDetailView{Project: snap.Selected, Err: snap.Err, IsAdmin: true},
	})
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields := map[string]any{}
	if name := strings.TrimSpace(r.FormValue("name")); name != "" {
		fields["name"] = name
	}
	if description, ok := formValue(r, "description"); ok {
		fields["description"] = strings.TrimSpace(description)
	}
	if status := strings.TrimSpace(r.FormValue("status")); status != "" {
		fields["status"] = status
	}

	if len(fields) == 0 {
		http.Redirect(w, r, "/projects/"+id+"/edit", http.StatusSeeOther)
		return
	}

	if err := h.projects.Update(r.Context(), id, fields); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
		snap := h.projects.Snapshot()
		h.render(w, statusFor(err), "project_edit.html", page{
			Title: "Edit project",
			Data:  projectDetailView{Project: snap.Selected, Err: snap.Err, IsAdmin: true},
		})
		return
	}

	http.Redirect(w, r, "/projects/"+id, http.StatusSeeOther)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.projects.Delete(r.Context(), id); err != nil {
		if redirectIfSessionDead(w, r, err) {
			return
		}
	}

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (h *Handler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	memberID := strings.TrimSpace(r.FormValue("memberId"))
	role := strings.TrimSpace(r.FormValue("role"))

	if memberID != "" {
		if err := h.projects.AddMember(r.Context(), id, memberID, role); err != nil && redirectIfSessionDead(w, r, err) {
			return
		}
	}

	http.Redirect(w, r, "/projects/"+id, http.StatusSeeOther)
}

func (h *Handler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	if err := h.projects.RemoveMember(r.Context(), id, memberID); err != nil && redirectIfSessionDead(w, r, err) {
		return
	}

	http.Redirect(w, r, "/projects/"+id, http.StatusSeeOther)
}

// formValue distinguishes "field absent" from "field present but
// empty": clearing a project description is a legitimate patch.
func formValue(r *http.Request, key string) (string, bool) {
	if r.Form == nil {
		_ = r.ParseForm()
	}

	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// statusFor picks the render status for a failed mutation: remote
// failures keep the page renderable with the slice error shown.
func statusFor(err error) int {
	if status := apierror.StatusOf(err); status >= 400 && status < 500 {
		return status
	}

	return http.StatusBadGateway
}
