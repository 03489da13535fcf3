package statistics

import (
	"time"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// RegistryKey is the Redis hash mapping project id to timezone.
const RegistryKey = "statistics:projects"

// Schedule is one recurring statistics registration.
type Schedule struct {
	ProjectID int64
	Timezone  string
}

// Cronspec runs the schedule at local midnight of its timezone.
func (s Schedule) Cronspec() string {
	return "CRON_TZ=" + s.Timezone + " 0 0 * * *"
}

// Snapshot is the daily access summary of a project.
type Snapshot struct {
	ProjectID         int64     `json:"projectId"`
	Date              time.Time `json:"date"`
	RoleCount         int       `json:"roleCount"`
	MemberCount       int       `json:"memberCount"`
	ActiveAPIKeyCount int       `json:"activeApiKeyCount"`
	CreatedAt         time.Time `json:"createdAt"`
}

var (
	ErrProjectNotFound = shared.NewError(shared.ErrNotFound, "ProjectNotFound", "project not found")
	ErrInvalidTimezone = shared.NewError(shared.ErrBadRequest, "InvalidTimezone", "unknown timezone")
	ErrInvalidDays     = shared.NewError(shared.ErrBadRequest, "InvalidDays", "days must be between 1 and 366")
)
