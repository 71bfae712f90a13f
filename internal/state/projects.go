package state

import (
	"context"
	"slices"
	"sync"

	"admin-console/internal/model"
)

type ProjectGateway interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	CreateProject(ctx context.Context, name string, description string) (model.Project, error)
	UpdateProject(ctx context.Context, id string, fields map[string]any) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AddTeamMember(ctx context.Context, projectID string, memberID string, role string) (model.Project, error)
	RemoveTeamMember(ctx context.Context, projectID string, memberID string) (model.Project, error)
}

// Projects mirrors the backend project collection plus a separate
// selected pointer for the detail view. An update that touches the
// selected project's id refreshes both; the two views of one entity
// never diverge.
type Projects struct {
	mu       sync.Mutex
	gateway  ProjectGateway
	projects []model.Project
	selected *model.Project
	phase
}

type ProjectsSnapshot struct {
	Projects  []model.Project
	Selected  *model.Project
	IsLoading bool
	Err       string
}

func NewProjects(gw ProjectGateway) *Projects {
	return &Projects{gateway: gw}
}

// FetchAll replaces the whole collection with the server-provided
// list, in server-provided order.
func (s *Projects) FetchAll(ctx context.Context) error {
	s.beginOp()

	list, err := s.gateway.ListProjects(ctx)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = list
	s.fulfill()
	return nil
}

// FetchOne sets the selected pointer; the list is left alone.
func (s *Projects) FetchOne(ctx context.Context, id string) error {
	s.beginOp()

	project, err := s.gateway.GetProject(ctx, id)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &project
	s.fulfill()
	return nil
}

func (s *Projects) Create(ctx context.Context, name string, description string) error {
	s.beginOp()

	project, err := s.gateway.CreateProject(ctx, name, description)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, project)
	s.fulfill()
	return nil
}

func (s *Projects) Update(ctx context.Context, id string, fields map[string]any) error {
	s.beginOp()

	project, err := s.gateway.UpdateProject(ctx, id, fields)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.adopt(project)
	return nil
}

// Delete removes the project with the given id from the collection.
// Absence of a match is not an error.
func (s *Projects) Delete(ctx context.Context, id string) error {
	s.beginOp()

	if err := s.gateway.DeleteProject(ctx, id); err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = slices.DeleteFunc(s.projects, func(p model.Project) bool { return p.ID == id })
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
	s.fulfill()
	return nil
}

func (s *Projects) AddMember(ctx context.Context, projectID string, memberID string, role string) error {
	s.beginOp()

	project, err := s.gateway.AddTeamMember(ctx, projectID, memberID, role)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.adopt(project)
	return nil
}

func (s *Projects) RemoveMember(ctx context.Context, projectID string, memberID string) error {
	s.beginOp()

	project, err := s.gateway.RemoveTeamMember(ctx, projectID, memberID)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.adopt(project)
	return nil
}

func (s *Projects) Snapshot() ProjectsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := ProjectsSnapshot{
		Projects:  slices.Clone(s.projects),
		IsLoading: s.isLoading,
		Err:       s.err,
	}
	if s.selected != nil {
		selected := *s.selected
		snap.Selected = &selected
	}

	return snap
}

func (s *Projects) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// adopt is the update-in-place rule: replace the list entry with a
// matching id (order preserved) and refresh the selected pointer when
// it references the same entity.
func (s *Projects) adopt(project model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == project.ID {
			s.projects[i] = project
			break
		}
	}

	if s.selected != nil && s.selected.ID == project.ID {
		s.selected = &project
	}

	s.fulfill()
}

func (s *Projects) beginOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin()
}

func (s *Projects) rejectOp(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject(err)
}
