package issuetrackers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
)

// Repository defines issue tracker persistence.
type Repository interface {
	FindByProjectID(ctx context.Context, projectID int64) (IssueTracker, error)
	Insert(ctx context.Context, projectID int64, data map[string]any) (IssueTracker, error)
	Upsert(ctx context.Context, projectID int64, data map[string]any) (IssueTracker, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository. conn may be a pool or a transaction.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const trackerColumns = `id, project_id, data, created_at, updated_at`

// FindByProjectID fetches the tracker settings of a project.
func (r *PGRepository) FindByProjectID(ctx context.Context, projectID int64) (IssueTracker, error) {
	return scanTracker(r.db.QueryRow(ctx, `SELECT `+trackerColumns+` FROM issue_trackers WHERE project_id = $1`, projectID))
}

// Insert stores tracker settings for a project that has none yet.
func (r *PGRepository) Insert(ctx context.Context, projectID int64, data map[string]any) (IssueTracker, error) {
	return scanTracker(r.db.QueryRow(ctx, `INSERT INTO issue_trackers (project_id, data, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING `+trackerColumns, projectID, data))
}

// Upsert replaces the settings of a project, creating the row when missing.
func (r *PGRepository) Upsert(ctx context.Context, projectID int64, data map[string]any) (IssueTracker, error) {
	return scanTracker(r.db.QueryRow(ctx, `INSERT INTO issue_trackers (project_id, data, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (project_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		RETURNING `+trackerColumns, projectID, data))
}

func scanTracker(row pgx.Row) (IssueTracker, error) {
	var t IssueTracker
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Data, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return IssueTracker{}, ErrIssueTrackerNotFound
		}
		return IssueTracker{}, fmt.Errorf("issuetrackers: scan: %w", err)
	}
	if t.Data == nil {
		t.Data = map[string]any{}
	}
	return t, nil
}

var _ Repository = (*PGRepository)(nil)
