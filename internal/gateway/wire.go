package gateway

import (
	"encoding/json"
	"fmt"

	"admin-console/internal/model"
)

// wireProject tolerates backends that key records as "_id" instead of
// "id". normalize always yields a project with a populated ID.
type wireProject struct {
	model.Project
	MongoID string `json:"_id"`
}

func (w wireProject) normalize() model.Project {
	project := w.Project
	if project.ID == "" {
		project.ID = w.MongoID
	}

	return project
}

func normalizeProjects(wire []wireProject) []model.Project {
	projects := make([]model.Project, 0, len(wire))
	for _, w := range wire {
		projects = append(projects, w.normalize())
	}

	return projects
}

// decodeUserPage accepts both listing shapes the backend is known to
// produce: {"users": [...], "totalCount": n} and a bare user array.
func decodeUserPage(raw json.RawMessage) (UserPage, error) {
	var paged struct {
		Users      []model.User `json:"users"`
		TotalCount int          `json:"totalCount"`
	}
	if err := json.Unmarshal(raw, &paged); err == nil && paged.Users != nil {
		return UserPage{Users: paged.Users, TotalCount: paged.TotalCount}, nil
	}

	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return UserPage{}, fmt.Errorf("decode user listing: %w", err)
	}

	return UserPage{Users: users, TotalCount: len(users)}, nil
}
