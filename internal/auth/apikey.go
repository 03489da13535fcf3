package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/feedbackhub/feedbackhub/internal/apikeys"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// ActiveKeyFinder looks up non-deleted keys of a project.
type ActiveKeyFinder interface {
	FindActive(ctx context.Context, projectID int64, value string) (apikeys.APIKey, error)
}

// APIKeyVerifier authenticates x-api-key callers. The master key is fixed at
// construction; an empty master key disables the bypass.
type APIKeyVerifier struct {
	keys      ActiveKeyFinder
	masterKey string
}

// NewAPIKeyVerifier constructs an APIKeyVerifier.
func NewAPIKeyVerifier(keys ActiveKeyFinder, masterKey string) *APIKeyVerifier {
	return &APIKeyVerifier{keys: keys, masterKey: masterKey}
}

// Verify reports whether value grants access to projectID. A missing key or
// project is a deny, not an error. Errors come only from the store.
func (v *APIKeyVerifier) Verify(ctx context.Context, value string, projectID int64, hasProject bool) (rbac.Principal, bool, error) {
	if value == "" {
		return rbac.Principal{}, false, nil
	}
	if v.masterKey != "" && subtle.ConstantTimeCompare([]byte(value), []byte(v.masterKey)) == 1 {
		return rbac.APIKeyPrincipal(projectID, true), true, nil
	}
	if !hasProject {
		return rbac.Principal{}, false, nil
	}
	_, err := v.keys.FindActive(ctx, projectID, value)
	switch {
	case err == nil:
		return rbac.APIKeyPrincipal(projectID, false), true, nil
	case errors.Is(err, apikeys.ErrAPIKeyNotFound):
		return rbac.Principal{}, false, nil
	default:
		return rbac.Principal{}, false, fmt.Errorf("auth: verify api key: %w", err)
	}
}
