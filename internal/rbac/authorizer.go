package rbac

import (
	"context"
	"fmt"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// ErrProjectIDRequired is returned when a non-super principal hits a
// protected operation without a project in the path.
var ErrProjectIDRequired = shared.NewError(shared.ErrBadRequest, "ProjectIDRequired", "projectId is required in params")

// MembershipLookup resolves the permissions a user holds in a project through
// its single membership. found is false when the user has no membership there.
type MembershipLookup interface {
	LookupPermissions(ctx context.Context, userID, projectID int64) (perms []Permission, found bool, err error)
}

// Authorizer runs the per-request decision procedure.
type Authorizer struct {
	members MembershipLookup
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(members MembershipLookup) *Authorizer {
	return &Authorizer{members: members}
}

// Authorize decides whether p may perform an operation requiring perm on
// projectID. hasProject is false when the request carried no project id.
// A deny is reported as false with a nil error.
func (a *Authorizer) Authorize(ctx context.Context, p Principal, projectID int64, hasProject bool, perm Permission) (bool, error) {
	if perm == "" {
		return true, nil
	}
	if p.IsSuper() {
		return true, nil
	}
	if !hasProject {
		return false, ErrProjectIDRequired
	}
	switch p.Kind {
	case PrincipalAPIKey:
		return p.MasterKey || p.ProjectID == projectID, nil
	case PrincipalUser:
		perms, found, err := a.members.LookupPermissions(ctx, p.UserID, projectID)
		if err != nil {
			return false, fmt.Errorf("rbac: lookup membership: %w", err)
		}
		if !found {
			return false, nil
		}
		return Contains(perms, perm), nil
	default:
		return false, nil
	}
}

// AuthorizeMembership allows principals that may see projectID at all: SUPER
// users, api keys verified for it, and users holding any membership in it.
func (a *Authorizer) AuthorizeMembership(ctx context.Context, p Principal, projectID int64, hasProject bool) (bool, error) {
	if p.IsSuper() {
		return true, nil
	}
	if !hasProject {
		return false, ErrProjectIDRequired
	}
	switch p.Kind {
	case PrincipalAPIKey:
		return p.MasterKey || p.ProjectID == projectID, nil
	case PrincipalUser:
		_, found, err := a.members.LookupPermissions(ctx, p.UserID, projectID)
		if err != nil {
			return false, fmt.Errorf("rbac: lookup membership: %w", err)
		}
		return found, nil
	default:
		return false, nil
	}
}
