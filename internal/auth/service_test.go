package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/users"
)

type stubUsers struct {
	byID map[int64]users.User
}

func (s *stubUsers) FindByID(ctx context.Context, id int64) (users.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (users.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, users.ErrUserNotFound
}

type stubRoles map[int64][]roles.Role

func (s stubRoles) FindByUserID(ctx context.Context, userID int64) ([]roles.Role, error) {
	return s[userID], nil
}

func newTestService(t *testing.T) (*Service, *Tokens) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	us := &stubUsers{byID: map[int64]users.User{
		1: {ID: 1, Email: "ana@example.com", Type: rbac.UserTypeGeneral, State: users.StateActive, PasswordHash: string(hash)},
		2: {ID: 2, Email: "bo@example.com", Type: rbac.UserTypeGeneral, State: users.StateBlocked, PasswordHash: string(hash)},
	}}
	rs := stubRoles{1: {
		{ID: 3, Name: "Editor", ProjectID: 1, Permissions: []rbac.Permission{rbac.PermIssueCreate, rbac.PermFeedbackUpdate}},
		{ID: 8, Name: "Viewer", ProjectID: 2, Permissions: []rbac.Permission{rbac.PermIssueCreate}},
	}}
	tokens := NewTokens("unit-test-secret")
	tokens.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return NewService(us, rs, tokens), tokens
}

func TestSignInWithEmail(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	pair, err := svc.SignInWithEmail(ctx, "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	claims, err := tokens.Verify(pair.AccessToken, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "Editor", claims.RoleName)
	assert.ElementsMatch(t, []rbac.Permission{rbac.PermIssueCreate, rbac.PermFeedbackUpdate}, claims.Permissions)

	_, err = svc.SignInWithEmail(ctx, "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignInWithEmail(ctx, "nobody@example.com", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignInWithEmail(ctx, "bo@example.com", "s3cret-pass")
	require.ErrorIs(t, err, ErrUserBlocked)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pair, err := svc.SignInWithEmail(ctx, "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}
