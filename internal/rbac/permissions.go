package rbac

import "strings"

// Permission is a capability token from a fixed catalog. Values are
// resource_action pairs and are persisted verbatim on roles.
type Permission string

// Permission catalog. Adding a permission is a code change.
const (
	PermFeedbackDownloadRead Permission = "feedback_download_read"
	PermFeedbackUpdate       Permission = "feedback_update"
	PermFeedbackDelete       Permission = "feedback_delete"
	PermFeedbackIssueUpdate  Permission = "feedback_issue_update"

	PermIssueCreate Permission = "issue_create"
	PermIssueUpdate Permission = "issue_update"
	PermIssueDelete Permission = "issue_delete"

	PermProjectUpdate Permission = "project_update"
	PermProjectDelete Permission = "project_delete"

	PermProjectMemberRead   Permission = "project_member_read"
	PermProjectMemberCreate Permission = "project_member_create"
	PermProjectMemberUpdate Permission = "project_member_update"
	PermProjectMemberDelete Permission = "project_member_delete"

	PermProjectRoleRead   Permission = "project_role_read"
	PermProjectRoleCreate Permission = "project_role_create"
	PermProjectRoleUpdate Permission = "project_role_update"
	PermProjectRoleDelete Permission = "project_role_delete"

	PermProjectAPIKeyRead   Permission = "project_apikey_read"
	PermProjectAPIKeyCreate Permission = "project_apikey_create"
	PermProjectAPIKeyUpdate Permission = "project_apikey_update"
	PermProjectAPIKeyDelete Permission = "project_apikey_delete"

	PermProjectTrackerRead   Permission = "project_tracker_read"
	PermProjectTrackerUpdate Permission = "project_tracker_update"

	PermProjectWebhookRead   Permission = "project_webhook_read"
	PermProjectWebhookCreate Permission = "project_webhook_create"
	PermProjectWebhookUpdate Permission = "project_webhook_update"
	PermProjectWebhookDelete Permission = "project_webhook_delete"

	PermChannelCreate      Permission = "channel_create"
	PermChannelUpdate      Permission = "channel_update"
	PermChannelDelete      Permission = "channel_delete"
	PermChannelFieldRead   Permission = "channel_field_read"
	PermChannelFieldUpdate Permission = "channel_field_update"
	PermChannelImageRead   Permission = "channel_image_read"
	PermChannelImageUpdate Permission = "channel_image_update"
)

var catalog = []Permission{
	PermFeedbackDownloadRead,
	PermFeedbackUpdate,
	PermFeedbackDelete,
	PermFeedbackIssueUpdate,
	PermIssueCreate,
	PermIssueUpdate,
	PermIssueDelete,
	PermProjectUpdate,
	PermProjectDelete,
	PermProjectMemberRead,
	PermProjectMemberCreate,
	PermProjectMemberUpdate,
	PermProjectMemberDelete,
	PermProjectRoleRead,
	PermProjectRoleCreate,
	PermProjectRoleUpdate,
	PermProjectRoleDelete,
	PermProjectAPIKeyRead,
	PermProjectAPIKeyCreate,
	PermProjectAPIKeyUpdate,
	PermProjectAPIKeyDelete,
	PermProjectTrackerRead,
	PermProjectTrackerUpdate,
	PermProjectWebhookRead,
	PermProjectWebhookCreate,
	PermProjectWebhookUpdate,
	PermProjectWebhookDelete,
	PermChannelCreate,
	PermChannelUpdate,
	PermChannelDelete,
	PermChannelFieldRead,
	PermChannelFieldUpdate,
	PermChannelImageRead,
	PermChannelImageUpdate,
}

var catalogIndex = func() map[Permission]struct{} {
	idx := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		idx[p] = struct{}{}
	}
	return idx
}()

// AllPermissions returns a copy of the full catalog in declaration order.
func AllPermissions() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	_, ok := catalogIndex[p]
	return ok
}

func (p Permission) String() string {
	return string(p)
}

// Dedup returns perms without duplicates, keeping first occurrence order.
func Dedup(perms []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(perms))
	out := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Contains reports whether perms includes p.
func Contains(perms []Permission, p Permission) bool {
	for _, candidate := range perms {
		if candidate == p {
			return true
		}
	}
	return false
}

// Default role names created for projects provisioned without explicit roles.
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

// DefaultRole is a role template applied at provisioning time.
type DefaultRole struct {
	Name        string
	Permissions []Permission
}

// Fixed provisioning policy. These predicates are the policy itself, not a
// naming convention to be re-derived elsewhere.
func adminGrants(Permission) bool { return true }

func editorGrants(p Permission) bool {
	s := string(p)
	if strings.Contains(s, "role") {
		return false
	}
	return strings.Contains(s, "read") ||
		strings.Contains(s, "feedback") ||
		strings.Contains(s, "issue") ||
		s == "member_create"
}

func viewerGrants(p Permission) bool {
	s := string(p)
	return strings.Contains(s, "read") && !strings.Contains(s, "download")
}

// DefaultRoles returns the Admin, Editor and Viewer templates.
func DefaultRoles() []DefaultRole {
	return []DefaultRole{
		{Name: RoleAdmin, Permissions: filter(adminGrants)},
		{Name: RoleEditor, Permissions: filter(editorGrants)},
		{Name: RoleViewer, Permissions: filter(viewerGrants)},
	}
}

func filter(keep func(Permission) bool) []Permission {
	out := make([]Permission, 0, len(catalog))
	for _, p := range catalog {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
