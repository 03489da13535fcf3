package apikeys

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// ValueLength is the length in characters of every stored key value.
const ValueLength = 20

// APIKey authenticates machine callers against a single project.
type APIKey struct {
	ID        int64      `json:"id"`
	Value     string     `json:"value"`
	ProjectID int64      `json:"projectId"`
	DeletedAt *time.Time `json:"deletedAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Active reports whether the key has not been soft-deleted.
func (k APIKey) Active() bool {
	return k.DeletedAt == nil
}

// CreateAPIKeyInput describes a key to insert. An empty Value is generated.
type CreateAPIKeyInput struct {
	ProjectID int64
	Value     string
}

var (
	ErrAPIKeyNotFound     = shared.NewError(shared.ErrNotFound, "ApiKeyNotFound", "api key not found")
	ErrInvalidAPIKeyValue = shared.NewError(shared.ErrBadRequest, "InvalidApiKey", "api key value must be 20 characters")
)
