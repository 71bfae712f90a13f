package model

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectArchived  ProjectStatus = "ARCHIVED"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
)

type TeamMember struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedBy   string        `json:"createdBy"`
	TeamMembers []TeamMember  `json:"teamMembers,omitempty"`
	IsDeleted   bool          `json:"isDeleted"`
	CreatedAt   time.Time     `json:"createdAt,omitzero"`
	UpdatedAt   time.Time     `json:"updatedAt,omitzero"`
}
