package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
)

// Repository defines project persistence.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Project, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	FindAll(ctx context.Context) ([]Project, error)
	FindByUserID(ctx context.Context, userID int64) ([]Project, error)
	Insert(ctx context.Context, project Project) (Project, error)
	Update(ctx context.Context, project Project) (Project, error)
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

const projectColumns = `p.id, p.name, p.description, p.timezone, p.tenant_id, p.created_at, p.updated_at`

// FindByID fetches a project by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Project, error) {
	return scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
}

// ExistsByName reports whether another project uses name. Pass 0 as excludeID on create.
func (r *PGRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1 AND id <> $2)`,
		name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("projects: exists by name: %w", err)
	}
	return exists, nil
}

// FindAll lists every project.
func (r *PGRepository) FindAll(ctx context.Context) ([]Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects p ORDER BY p.id`)
}

// FindByUserID lists the projects in which the user holds a membership.
func (r *PGRepository) FindByUserID(ctx context.Context, userID int64) ([]Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+`
		FROM projects p
		JOIN roles r ON r.project_id = p.id
		JOIN members m ON m.role_id = r.id
		WHERE m.user_id = $1
		ORDER BY p.id`, userID)
}

// Insert stores a new project.
func (r *PGRepository) Insert(ctx context.Context, project Project) (Project, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO projects AS p (name, description, timezone, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+projectColumns, project.Name, project.Description, project.Timezone, project.TenantID)
	created, err := scanProject(row)
	if err != nil {
		return Project{}, fmt.Errorf("projects: insert: %w", err)
	}
	return created, nil
}

// Update persists the mutable fields of a project.
func (r *PGRepository) Update(ctx context.Context, project Project) (Project, error) {
	return scanProject(r.db.QueryRow(ctx, `UPDATE projects AS p
		SET name = $2, description = $3, timezone = $4, updated_at = NOW()
		WHERE p.id = $1
		RETURNING `+projectColumns, project.ID, project.Name, project.Description, project.Timezone))
}

// DeleteByID removes a project. Roles, members, keys and tracker settings cascade.
func (r *PGRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("projects: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("projects: query: %w", err)
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projects: rows: %w", err)
	}
	return out, nil
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Timezone, &p.TenantID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		return Project{}, fmt.Errorf("projects: scan: %w", err)
	}
	return p, nil
}

var _ Repository = (*PGRepository)(nil)
