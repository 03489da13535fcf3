package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndIdentity(t *testing.T) {
	errDup := NewError(ErrConflict, "RoleAlreadyExists", "role already exists")
	wrapped := fmt.Errorf("roles: create: %w", errDup)

	assert.ErrorIs(t, wrapped, errDup)
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "RoleAlreadyExists", ErrorCode(wrapped))
	assert.Equal(t, "role already exists", errDup.Error())
	assert.Empty(t, ErrorCode(errors.New("plain")))
}
