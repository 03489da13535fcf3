package tenants

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// Tenant is the single organization owning every project of a deployment.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrTenantNotFound      = shared.NewError(shared.ErrNotFound, "TenantNotFound", "tenant not found")
	ErrTenantAlreadyExists = shared.NewError(shared.ErrConflict, "TenantAlreadyExists", "tenant already exists")
	ErrInvalidTenantName   = shared.NewError(shared.ErrBadRequest, "InvalidTenantName", "tenant name is required")
)
