package users

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// State is the account state of a user.
type State string

const (
	StateActive  State = "ACTIVE"
	StateBlocked State = "BLOCKED"
)

// User represents a user account.
type User struct {
	ID           int64         `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Type         rbac.UserType `json:"type"`
	State        State         `json:"state"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// IsBlocked reports whether sign-in is disallowed.
func (u User) IsBlocked() bool {
	return u.State == StateBlocked
}

// ErrUserNotFound indicates the referenced user does not exist.
var ErrUserNotFound = shared.NewError(shared.ErrNotFound, "UserNotFound", "user not found")
