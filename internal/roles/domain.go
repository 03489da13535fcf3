package roles

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// Role is a named, project-scoped bundle of permissions.
type Role struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Permissions []rbac.Permission `json:"permissions"`
	ProjectID   int64             `json:"projectId"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CreateRoleInput describes a role to insert.
type CreateRoleInput struct {
	Name        string
	Permissions []rbac.Permission
	ProjectID   int64
}

// UpdateRoleInput replaces the mutable attributes of a role.
type UpdateRoleInput struct {
	Name        string
	Permissions []rbac.Permission
}

var (
	ErrRoleAlreadyExists = shared.NewError(shared.ErrConflict, "RoleAlreadyExists", "role already exists")
	ErrRoleNotFound      = shared.NewError(shared.ErrNotFound, "RoleNotFound", "role not found")
	ErrInvalidRoleName   = shared.NewError(shared.ErrBadRequest, "InvalidRoleName", "role name is required")
	ErrInvalidPermission = shared.NewError(shared.ErrBadRequest, "InvalidPermission", "unknown permission")
)
