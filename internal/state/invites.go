package state

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"admin-console/internal/model"
)

type InviteGateway interface {
	CreateInvite(ctx context.Context, email string, role model.Role) (model.Invite, error)
	ListInvites(ctx context.Context) ([]model.Invite, error)
	RevokeInvite(ctx context.Context, inviteID string) error
}

// Invites mirrors the pending-invitation collection.
type Invites struct {
	mu      sync.Mutex
	gateway InviteGateway
	invites []model.Invite
	phase
}

type InvitesSnapshot struct {
	Invites   []model.Invite
	IsLoading bool
	Err       string
}

func NewInvites(gw InviteGateway) *Invites {
	return &Invites{gateway: gw}
}

func (s *Invites) FetchAll(ctx context.Context) error {
	s.beginOp()

	list, err := s.gateway.ListInvites(ctx)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invites = list
	s.fulfill()
	return nil
}

// Create validates before dispatch; an invalid invite never reaches
// the gateway.
func (s *Invites) Create(ctx context.Context, email string, role model.Role) error {
	if err := validateInvite(email, role); err != nil {
		return err
	}

	s.beginOp()

	invite, err := s.gateway.CreateInvite(ctx, email, role)
	if err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invites = append(s.invites, invite)
	s.fulfill()
	return nil
}

// Revoke removes the invite locally only after the remote call
// succeeds; there is no optimistic removal.
func (s *Invites) Revoke(ctx context.Context, inviteID string) error {
	s.beginOp()

	if err := s.gateway.RevokeInvite(ctx, inviteID); err != nil {
		s.rejectOp(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invites = slices.DeleteFunc(s.invites, func(i model.Invite) bool { return i.ID == inviteID })
	s.fulfill()
	return nil
}

func (s *Invites) Snapshot() InvitesSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return InvitesSnapshot{
		Invites:   slices.Clone(s.invites),
		IsLoading: s.isLoading,
		Err:       s.err,
	}
}

func (s *Invites) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func validateInvite(email string, role model.Role) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}

	if !model.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
	}

	return nil
}

func (s *Invites) beginOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin()
}

func (s *Invites) rejectOp(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject(err)
}
