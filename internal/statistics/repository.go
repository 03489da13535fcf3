package statistics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
)

// Repository defines snapshot persistence.
type Repository interface {
	Capture(ctx context.Context, projectID int64, day time.Time) (Snapshot, error)
	FindByProjectID(ctx context.Context, projectID int64, limit int) ([]Snapshot, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const snapshotColumns = `project_id, snapshot_date, role_count, member_count, active_api_key_count, created_at`

// Capture counts the project's roles, members and active keys and stores
// them for day, replacing an earlier capture of the same day.
func (r *PGRepository) Capture(ctx context.Context, projectID int64, day time.Time) (Snapshot, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO project_access_statistics
			(project_id, snapshot_date, role_count, member_count, active_api_key_count, created_at)
		SELECT p.id, $2::date,
			(SELECT COUNT(*) FROM roles r WHERE r.project_id = p.id),
			(SELECT COUNT(*) FROM members m WHERE m.project_id = p.id),
			(SELECT COUNT(*) FROM api_keys k WHERE k.project_id = p.id AND k.deleted_at IS NULL),
			NOW()
		FROM projects p
		WHERE p.id = $1
		ON CONFLICT (project_id, snapshot_date) DO UPDATE SET
			role_count = EXCLUDED.role_count,
			member_count = EXCLUDED.member_count,
			active_api_key_count = EXCLUDED.active_api_key_count,
			created_at = EXCLUDED.created_at
		RETURNING `+snapshotColumns, projectID, day)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrProjectNotFound
	}
	return snap, err
}

// FindByProjectID lists the latest snapshots of a project, newest first.
func (r *PGRepository) FindByProjectID(ctx context.Context, projectID int64, limit int) ([]Snapshot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+snapshotColumns+` FROM project_access_statistics
		WHERE project_id = $1
		ORDER BY snapshot_date DESC
		LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("statistics: list: %w", err)
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("statistics: list: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statistics: rows: %w", err)
	}
	return out, nil
}

// scanSnapshot keeps pgx.ErrNoRows visible to the caller.
func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	if err := row.Scan(&s.ProjectID, &s.Date, &s.RoleCount, &s.MemberCount, &s.ActiveAPIKeyCount, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("statistics: scan: %w", err)
	}
	return s, nil
}

var _ Repository = (*PGRepository)(nil)
