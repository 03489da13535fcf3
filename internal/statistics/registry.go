package statistics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry stores which projects get recurring statistics jobs.
type Registry struct {
	client redis.Cmdable
	key    string
}

// NewRegistry constructs a Registry on the shared hash key.
func NewRegistry(client redis.Cmdable) *Registry {
	return &Registry{client: client, key: RegistryKey}
}

// Register schedules the daily job for a project. An empty timezone means UTC.
func (r *Registry) Register(ctx context.Context, projectID int64, timezone string) error {
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return ErrInvalidTimezone
	}
	if err := r.client.HSet(ctx, r.key, strconv.FormatInt(projectID, 10), timezone).Err(); err != nil {
		return fmt.Errorf("statistics: register: %w", err)
	}
	return nil
}

// Unregister removes the project's schedule. Missing entries are ignored.
func (r *Registry) Unregister(ctx context.Context, projectID int64) error {
	if err := r.client.HDel(ctx, r.key, strconv.FormatInt(projectID, 10)).Err(); err != nil {
		return fmt.Errorf("statistics: unregister: %w", err)
	}
	return nil
}

// List returns every schedule ordered by project id. Malformed entries are skipped.
func (r *Registry) List(ctx context.Context) ([]Schedule, error) {
	entries, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("statistics: list: %w", err)
	}
	out := make([]Schedule, 0, len(entries))
	for field, tz := range entries {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out = append(out, Schedule{ProjectID: id, Timezone: tz})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}
