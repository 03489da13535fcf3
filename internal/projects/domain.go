package projects

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/apikeys"
	"github.com/feedbackhub/feedbackhub/internal/issuetrackers"
	"github.com/feedbackhub/feedbackhub/internal/members"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// Project is the tenant-owned unit every role, member and key is scoped to.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Timezone    string    `json:"timezone"`
	TenantID    int64     `json:"tenantId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoleSpec is a caller-supplied role created with the project.
type RoleSpec struct {
	Name        string
	Permissions []rbac.Permission
}

// MemberSpec binds a user to one of the supplied roles by name.
type MemberSpec struct {
	UserID   int64
	RoleName string
}

// CreateProjectInput describes a project and its initial access setup.
// A nil Roles creates the Admin/Editor/Viewer defaults and Members is ignored;
// a non-nil empty Roles creates no roles. A nil IssueTracker creates no
// tracker settings.
type CreateProjectInput struct {
	Name         string
	Description  string
	Timezone     string
	Roles        []RoleSpec
	Members      []MemberSpec
	APIKeys      []string
	IssueTracker map[string]any
}

// UpdateProjectInput carries the fields to merge. Nil fields are kept.
type UpdateProjectInput struct {
	ID          int64
	Name        *string
	Description *string
	Timezone    *string
}

// Provisioned is everything a successful Create wrote.
type Provisioned struct {
	Project      Project                     `json:"project"`
	Roles        []roles.Role                `json:"roles"`
	Members      []members.Member            `json:"members"`
	APIKeys      []apikeys.APIKey            `json:"apiKeys"`
	IssueTracker *issuetrackers.IssueTracker `json:"issueTracker,omitempty"`
}

// DefaultTimezone applies when a project is created without one.
const DefaultTimezone = "UTC"

var (
	ErrProjectAlreadyExists = shared.NewError(shared.ErrConflict, "ProjectAlreadyExists", "project already exists")
	ErrProjectNotFound      = shared.NewError(shared.ErrNotFound, "ProjectNotFound", "project not found")
	ErrProjectInvalidName   = shared.NewError(shared.ErrConflict, "ProjectInvalidName", "Duplicated name")
	ErrProjectNameRequired  = shared.NewError(shared.ErrBadRequest, "ProjectNameRequired", "project name is required")
	ErrInvalidRoleName      = shared.NewError(shared.ErrBadRequest, "InvalidRoleName", "Invalid role name")
	ErrInvalidTimezone      = shared.NewError(shared.ErrBadRequest, "InvalidTimezone", "unknown timezone")
)
