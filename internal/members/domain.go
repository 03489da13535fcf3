package members

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// Member binds one user to one role, and through the role to one project.
type Member struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	RoleID    int64     `json:"roleId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemberDetail is a member joined to its user and role for listings.
type MemberDetail struct {
	Member
	UserEmail       string            `json:"userEmail"`
	UserName        string            `json:"userName"`
	RoleName        string            `json:"roleName"`
	RolePermissions []rbac.Permission `json:"rolePermissions"`
	ProjectID       int64             `json:"projectId"`
}

// CreateMemberInput describes a membership to insert. ProjectID is filled by
// the service from the resolved role; callers leave it zero.
type CreateMemberInput struct {
	UserID    int64
	RoleID    int64
	ProjectID int64
}

// UpdateMemberInput reassigns the role of an existing membership.
type UpdateMemberInput struct {
	MemberID int64
	RoleID   int64
}

var (
	ErrMemberAlreadyExists = shared.NewError(shared.ErrConflict, "MemberAlreadyExists", "member already exists")
	ErrMemberNotFound      = shared.NewError(shared.ErrNotFound, "MemberNotFound", "member not found")
	ErrMemberInvalidUser   = shared.NewError(shared.ErrInvalidRelationship, "MemberInvalidUser", "invalid user")

	// ErrMemberUpdateRoleNotMatchedProject rejects moving a membership across projects.
	ErrMemberUpdateRoleNotMatchedProject = shared.NewError(shared.ErrInvalidRelationship, "MemberUpdateRoleNotMatchedProject", "role does not belong to the member's project")
)
