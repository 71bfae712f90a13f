package state

import (
	"context"
	"slices"
	"sync"

	"admin-console/internal/gateway"
	"admin-console/internal/model"
)

type UserGateway interface {
	ListUsers(ctx context.Context, page int, limit int) (gateway.UserPage, error)
	SetUserStatus(ctx context.Context, userID string, status model.UserStatus) (model.User, error)
	SetUserRole(ctx context.Context, userID string, role model.Role) (model.User, error)
}

const defaultPageSize = 10

// Users mirrors the paginated admin user listing.
type Users struct {
	mu         sync.Mutex
	gateway    UserGateway
	users      []model.User
	totalCount int
	page       int
	pageSize   int
	phase
}

type UsersSnapshot struct {
	Users      []model.User
	TotalCount int
	Page       int
	PageSize   int
	IsLoading  bool
	Err        string
}

func NewUsers(gw UserGateway) *Users {
	return &Users{gateway: gw, page: 1, pageSize: defaultPageSize}
}

// Fetch replaces the listing with the requested page.
func (s *Users) Fetch(ctx context.Context, page int, limit int) error {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	s.beginOp()

	result, err := s.gateway.ListUsers(ctx, page, limit)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = result.Users
	s.totalCount = result.TotalCount
	s.page = page
	s.pageSize = limit
	s.fulfill()
	return nil
}

// SetStatus activates or deactivates a user; the returned entity
// replaces the listed one in place.
func (s *Users) SetStatus(ctx context.Context, userID string, status model.UserStatus) error {
	s.beginOp()

	user, err := s.gateway.SetUserStatus(ctx, userID, status)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.adopt(user)
	return nil
}

func (s *Users) SetRole(ctx context.Context, userID string, role model.Role) error {
	s.beginOp()

	user, err := s.gateway.SetUserRole(ctx, userID, role)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.adopt(user)
	return nil
}

func (s *Users) Snapshot() UsersSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return UsersSnapshot{
		Users:      slices.Clone(s.users),
		TotalCount: s.totalCount,
		Page:       s.page,
		PageSize:   s.pageSize,
		IsLoading:  s.isLoading,
		Err:        s.err,
	}
}

func (s *Users) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *Users) adopt(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == user.ID {
			s.users[i] = user
			break
		}
	}

	s.fulfill()
}

func (s *Users) beginOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin()
}

func (s *Users) rejectOp(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject(err)
}
