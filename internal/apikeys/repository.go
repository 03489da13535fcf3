package apikeys

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
)

// Repository defines api key persistence.
type Repository interface {
	FindByID(ctx context.Context, id int64) (APIKey, error)
	FindByProjectID(ctx context.Context, projectID int64) ([]APIKey, error)
	FindActive(ctx context.Context, projectID int64, value string) (APIKey, error)
	Insert(ctx context.Context, inputs []CreateAPIKeyInput) ([]APIKey, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) (APIKey, error)
	DeleteByID(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository. conn may be a pool or a transaction.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const keyColumns = `id, value, project_id, deleted_at, created_at, updated_at`

// FindByID fetches a key, including soft-deleted ones.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (APIKey, error) {
	return scanKey(r.db.QueryRow(ctx, `SELECT `+keyColumns+` FROM api_keys WHERE id = $1`, id))
}

// FindByProjectID lists every key of a project, soft-deleted included.
func (r *PGRepository) FindByProjectID(ctx context.Context, projectID int64) ([]APIKey, error) {
	return r.list(ctx, `SELECT `+keyColumns+` FROM api_keys WHERE project_id = $1 ORDER BY id`, projectID)
}

// FindActive fetches a non-deleted key of projectID whose value matches verbatim.
func (r *PGRepository) FindActive(ctx context.Context, projectID int64, value string) (APIKey, error) {
	return scanKey(r.db.QueryRow(ctx, `SELECT `+keyColumns+` FROM api_keys
		WHERE project_id = $1 AND value = $2 AND deleted_at IS NULL
		LIMIT 1`, projectID, value))
}

// Insert stores all inputs with one statement.
func (r *PGRepository) Insert(ctx context.Context, inputs []CreateAPIKeyInput) ([]APIKey, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(inputs))
	args := make([]any, 0, len(inputs)*2)
	for i, in := range inputs {
		values = append(values, fmt.Sprintf("($%d, $%d, NOW(), NOW())", i*2+1, i*2+2))
		args = append(args, in.Value, in.ProjectID)
	}
	created, err := r.list(ctx, `INSERT INTO api_keys (value, project_id, created_at, updated_at) VALUES `+
		strings.Join(values, ", ")+` RETURNING `+keyColumns, args...)
	if err != nil {
		return nil, fmt.Errorf("apikeys: insert: %w", err)
	}
	return created, nil
}

// SetDeleted flips the soft-delete marker of a key.
func (r *PGRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (APIKey, error) {
	return scanKey(r.db.QueryRow(ctx, `UPDATE api_keys
		SET deleted_at = CASE WHEN $2 THEN NOW() ELSE NULL END, updated_at = NOW()
		WHERE id = $1
		RETURNING `+keyColumns, id, deleted))
}

// DeleteByID removes a key permanently.
func (r *PGRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id); err != nil {
		return fmt.Errorf("apikeys: delete: %w", err)
	}
	return nil
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]APIKey, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("apikeys: query: %w", err)
	}
	defer rows.Close()
	var out []APIKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("apikeys: rows: %w", err)
	}
	return out, nil
}

func scanKey(row pgx.Row) (APIKey, error) {
	var k APIKey
	if err := row.Scan(&k.ID, &k.Value, &k.ProjectID, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return APIKey{}, ErrAPIKeyNotFound
		}
		return APIKey{}, fmt.Errorf("apikeys: scan: %w", err)
	}
	return k, nil
}

var _ Repository = (*PGRepository)(nil)
