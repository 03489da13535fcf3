package issuetrackers

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// IssueTracker holds the external tracker settings of one project.
type IssueTracker struct {
	ID        int64          `json:"id"`
	ProjectID int64          `json:"projectId"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ErrIssueTrackerNotFound is returned when a project has no tracker settings.
var ErrIssueTrackerNotFound = shared.NewError(shared.ErrNotFound, "IssueTrackerNotFound", "issue tracker not found")
