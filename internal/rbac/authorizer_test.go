package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

type membershipKey struct {
	userID    int64
	projectID int64
}

type stubMemberships struct {
	perms map[membershipKey][]Permission
	err   error
	calls int
}

func (s *stubMemberships) LookupPermissions(ctx context.Context, userID, projectID int64) ([]Permission, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	perms, ok := s.perms[membershipKey{userID, projectID}]
	return perms, ok, nil
}

func TestAuthorizeNoPermissionRequired(t *testing.T) {
	lookup := &stubMemberships{}
	a := NewAuthorizer(lookup)
	ok, err := a.Authorize(context.Background(), UserPrincipal(1, "u@test.local", UserTypeGeneral), 0, false, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, lookup.calls)
}

func TestAuthorizeSuperBypassesEverything(t *testing.T) {
	lookup := &stubMemberships{err: errors.New("must not be called")}
	a := NewAuthorizer(lookup)
	super := UserPrincipal(1, "root@test.local", UserTypeSuper)
	for _, projectID := range []int64{1, 2, 99} {
		for _, p := range AllPermissions() {
			ok, err := a.Authorize(context.Background(), super, projectID, true, p)
			require.NoError(t, err)
			assert.True(t, ok, p)
		}
	}
	ok, err := a.Authorize(context.Background(), super, 0, false, PermProjectDelete)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, lookup.calls)
}

func TestAuthorizeRequiresProjectID(t *testing.T) {
	a := NewAuthorizer(&stubMemberships{})
	_, err := a.Authorize(context.Background(), UserPrincipal(2, "u@test.local", UserTypeGeneral), 0, false, PermProjectUpdate)
	require.ErrorIs(t, err, ErrProjectIDRequired)
	assert.ErrorIs(t, err, shared.ErrBadRequest)
}

func TestAuthorizeMembershipPermissions(t *testing.T) {
	granted := []Permission{PermProjectMemberRead, PermProjectRoleRead, PermIssueCreate}
	lookup := &stubMemberships{perms: map[membershipKey][]Permission{{userID: 5, projectID: 1}: granted}}
	a := NewAuthorizer(lookup)
	user := UserPrincipal(5, "u@test.local", UserTypeGeneral)

	for _, p := range AllPermissions() {
		ok, err := a.Authorize(context.Background(), user, 1, true, p)
		require.NoError(t, err)
		assert.Equal(t, Contains(granted, p), ok, p)
	}
	assert.Equal(t, len(AllPermissions()), lookup.calls)
}

func TestAuthorizeWithoutMembershipDenies(t *testing.T) {
	lookup := &stubMemberships{perms: map[membershipKey][]Permission{{userID: 5, projectID: 1}: AllPermissions()}}
	a := NewAuthorizer(lookup)
	ok, err := a.Authorize(context.Background(), UserPrincipal(5, "u@test.local", UserTypeGeneral), 2, true, PermProjectMemberRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizeLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	a := NewAuthorizer(&stubMemberships{err: boom})
	_, err := a.Authorize(context.Background(), UserPrincipal(5, "u@test.local", UserTypeGeneral), 1, true, PermProjectUpdate)
	require.ErrorIs(t, err, boom)
}

func TestAuthorizeAPIKeyPrincipal(t *testing.T) {
	a := NewAuthorizer(&stubMemberships{err: errors.New("must not be called")})

	ok, err := a.Authorize(context.Background(), APIKeyPrincipal(3, false), 3, true, PermProjectTrackerRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Authorize(context.Background(), APIKeyPrincipal(3, false), 4, true, PermProjectTrackerRead)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Authorize(context.Background(), APIKeyPrincipal(0, true), 4, true, PermProjectTrackerRead)
	require.NoError(t, err)
	assert.True(t, ok)
}
