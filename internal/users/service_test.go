package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

type mockRepository struct {
	users []User
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *mockRepository) ListUsers(ctx context.Context) ([]User, error) {
	return m.users, nil
}

func TestFindByEmailNormalizesInput(t *testing.T) {
	svc := NewService(&mockRepository{users: []User{
		{ID: 1, Email: "root@example.com", Type: rbac.UserTypeSuper, State: StateActive},
		{ID: 2, Email: "ana@example.com", Type: rbac.UserTypeGeneral, State: StateBlocked},
	}})
	ctx := context.Background()

	u, err := svc.FindByEmail(ctx, "  Root@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.False(t, u.IsBlocked())

	blocked, err := svc.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked())

	_, err = svc.FindByID(ctx, 99)
	require.ErrorIs(t, err, ErrUserNotFound)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
