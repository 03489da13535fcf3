package rbac

import "context"

// UserType classifies user principals.
type UserType string

const (
	// UserTypeSuper bypasses every project-scoped check.
	UserTypeSuper UserType = "SUPER"
	// UserTypeGeneral is subject to membership-based authorization.
	UserTypeGeneral UserType = "GENERAL"
)

// PrincipalKind tags the variant held by a Principal.
type PrincipalKind int

const (
	// PrincipalUser is established from a session token.
	PrincipalUser PrincipalKind = iota + 1
	// PrincipalAPIKey is established from an x-api-key header.
	PrincipalAPIKey
)

// Principal describes the authenticated actor attached to a request.
type Principal struct {
	Kind PrincipalKind

	// User principals.
	UserID      int64
	Email       string
	Type        UserType
	RoleName    string
	Permissions []Permission

	// API-key principals. MasterKey is set when the configured master key matched.
	ProjectID int64
	MasterKey bool
}

// UserPrincipal builds a user principal.
func UserPrincipal(id int64, email string, userType UserType) Principal {
	return Principal{Kind: PrincipalUser, UserID: id, Email: email, Type: userType}
}

// APIKeyPrincipal builds a principal scoped to one project.
func APIKeyPrincipal(projectID int64, master bool) Principal {
	return Principal{Kind: PrincipalAPIKey, ProjectID: projectID, MasterKey: master}
}

// IsSuper reports whether the principal is a SUPER user.
func (p Principal) IsSuper() bool {
	return p.Kind == PrincipalUser && p.Type == UserTypeSuper
}

// IsUser reports whether the principal came from a session token.
func (p Principal) IsUser() bool {
	return p.Kind == PrincipalUser
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
