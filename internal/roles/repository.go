package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Repository defines role persistence.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Role, error)
	FindByProjectID(ctx context.Context, projectID int64) ([]Role, error)
	FindByUserID(ctx context.Context, userID int64) ([]Role, error)
	FindByProjectNameAndRoleName(ctx context.Context, projectName, roleName string) (Role, error)
	ExistsByName(ctx context.Context, projectID int64, name string, excludeID int64) (bool, error)
	Insert(ctx context.Context, inputs []CreateRoleInput) ([]Role, error)
	Update(ctx context.Context, role Role) (Role, error)
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

const roleColumns = `r.id, r.name, r.permissions, r.project_id, r.created_at, r.updated_at`

// FindByID fetches a role by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Role, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.id = $1`, id)
	return scanRole(row)
}

// FindByProjectID lists the roles of a project.
func (r *PGRepository) FindByProjectID(ctx context.Context, projectID int64) ([]Role, error) {
	return r.list(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.project_id = $1 ORDER BY r.id`, projectID)
}

// FindByUserID lists the roles the user is a member of, oldest membership first.
func (r *PGRepository) FindByUserID(ctx context.Context, userID int64) ([]Role, error) {
	return r.list(ctx, `SELECT `+roleColumns+`
		FROM roles r
		JOIN members m ON m.role_id = r.id
		WHERE m.user_id = $1
		ORDER BY m.created_at, m.id`, userID)
}

// FindByProjectNameAndRoleName fetches a role through its project's name.
func (r *PGRepository) FindByProjectNameAndRoleName(ctx context.Context, projectName, roleName string) (Role, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roleColumns+`
		FROM roles r
		JOIN projects p ON p.id = r.project_id
		WHERE p.name = $1 AND r.name = $2`, projectName, roleName)
	return scanRole(row)
}

// ExistsByName reports whether a sibling role with name exists in the project.
// excludeID skips the role being updated; pass 0 on create.
func (r *PGRepository) ExistsByName(ctx context.Context, projectID int64, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE project_id = $1 AND name = $2 AND id <> $3)`,
		projectID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("roles: exists by name: %w", err)
	}
	return exists, nil
}

// Insert stores all inputs with one statement.
func (r *PGRepository) Insert(ctx context.Context, inputs []CreateRoleInput) ([]Role, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(inputs))
	args := make([]any, 0, len(inputs)*3)
	for i, in := range inputs {
		n := i * 3
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, NOW(), NOW())", n+1, n+2, n+3))
		args = append(args, in.Name, permissionStrings(in.Permissions), in.ProjectID)
	}
	query := `INSERT INTO roles AS r (name, permissions, project_id, created_at, updated_at) VALUES ` +
		strings.Join(values, ", ") + ` RETURNING ` + roleColumns
	created, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("roles: insert: %w", err)
	}
	return created, nil
}

// Update persists the name and permissions of a role.
func (r *PGRepository) Update(ctx context.Context, role Role) (Role, error) {
	row := r.db.QueryRow(ctx, `UPDATE roles AS r
		SET name = $2, permissions = $3, updated_at = NOW()
		WHERE r.id = $1
		RETURNING `+roleColumns, role.ID, role.Name, permissionStrings(role.Permissions))
	return scanRole(row)
}

// DeleteByID removes a role. Memberships cascade in the schema.
func (r *PGRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("roles: delete: %w", err)
	}
	return nil
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Role, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("roles: query: %w", err)
	}
	defer rows.Close()
	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: rows: %w", err)
	}
	return out, nil
}

func scanRole(row pgx.Row) (Role, error) {
	var (
		role  Role
		perms []string
	)
	if err := row.Scan(&role.ID, &role.Name, &perms, &role.ProjectID, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, fmt.Errorf("roles: scan: %w", err)
	}
	role.Permissions = make([]rbac.Permission, len(perms))
	for i, p := range perms {
		role.Permissions[i] = rbac.Permission(p)
	}
	return role, nil
}

func permissionStrings(perms []rbac.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

var _ Repository = (*PGRepository)(nil)
