package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/model"
	"admin-console/pkg/apierror"
)

type fakeInviteGateway struct {
	listResult []model.Invite
	result     model.Invite
	err        error
	calls      int
}

func (f *fakeInviteGateway) CreateInvite(context.Context, string, model.Role) (model.Invite, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeInviteGateway) ListInvites(context.Context) ([]model.Invite, error) {
	f.calls++
	return f.listResult, f.err
}

func (f *fakeInviteGateway) RevokeInvite(context.Context, string) error {
	f.calls++
	return f.err
}

func TestInvites_FetchAllReplacesCollection(t *testing.T) {
	gw := &fakeInviteGateway{listResult: []model.Invite{
		{ID: "i-2", Status: model.InvitePending},
		{ID: "i-1", Status: model.InviteAccepted},
	}}
	s := NewInvites(gw)
	s.invites = []model.Invite{{ID: "stale"}}

	require.NoError(t, s.FetchAll(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.Invites, 2)
	assert.Equal(t, "i-2", snap.Invites[0].ID)
	assert.False(t, snap.IsLoading)
}

func TestInvites_CreateValidatesBeforeDispatch(t *testing.T) {
	t.Run("empty email never reaches the gateway", func(t *testing.T) {
		gw := &fakeInviteGateway{}
		s := NewInvites(gw)

		err := s.Create(context.Background(), "   ", model.RoleStaff)
		require.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Zero(t, gw.calls)
		assert.Empty(t, s.Snapshot().Err, "validation failures are not remote failures")
	})

	t.Run("unknown role never reaches the gateway", func(t *testing.T) {
		gw := &fakeInviteGateway{}
		s := NewInvites(gw)

		err := s.Create(context.Background(), "new@example.com", "SUPERUSER")
		require.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Zero(t, gw.calls)
	})
}

func TestInvites_CreateAppends(t *testing.T) {
	gw := &fakeInviteGateway{result: model.Invite{ID: "i-3", Email: "new@example.com", Status: model.InvitePending}}
	s := NewInvites(gw)
	s.invites = []model.Invite{{ID: "i-1"}, {ID: "i-2"}}

	require.NoError(t, s.Create(context.Background(), "new@example.com", model.RoleManager))

	snap := s.Snapshot()
	require.Len(t, snap.Invites, 3)
	assert.Equal(t, "i-3", snap.Invites[2].ID)
}

func TestInvites_RevokeRemovesOnlyAfterSuccess(t *testing.T) {
	t.Run("remote failure keeps the invite", func(t *testing.T) {
		gw := &fakeInviteGateway{err: apierror.New(409, "CONFLICT", "invite already accepted")}
		s := NewInvites(gw)
		s.invites = []model.Invite{{ID: "i-1"}}

		require.Error(t, s.Revoke(context.Background(), "i-1"))

		snap := s.Snapshot()
		require.Len(t, snap.Invites, 1, "no optimistic removal")
		assert.Equal(t, "invite already accepted", snap.Err)
	})

	t.Run("success removes the invite", func(t *testing.T) {
		gw := &fakeInviteGateway{}
		s := NewInvites(gw)
		s.invites = []model.Invite{{ID: "i-1"}, {ID: "i-2"}}

		require.NoError(t, s.Revoke(context.Background(), "i-1"))

		snap := s.Snapshot()
		require.Len(t, snap.Invites, 1)
		assert.Equal(t, "i-2", snap.Invites[0].ID)
	})

	t.Run("revoking an absent id is not an error", func(t *testing.T) {
		gw := &fakeInviteGateway{}
		s := NewInvites(gw)
		s.invites = []model.Invite{{ID: "i-1"}}

		require.NoError(t, s.Revoke(context.Background(), "missing"))
		assert.Len(t, s.Snapshot().Invites, 1)
	})
}
