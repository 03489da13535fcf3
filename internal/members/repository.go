package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Repository defines membership persistence.
type Repository interface {
	FindByID(ctx context.Context, id int64) (MemberDetail, error)
	FindByUserAndProject(ctx context.Context, userID, projectID int64) (MemberDetail, error)
	FindByProjectID(ctx context.Context, projectID int64) ([]MemberDetail, error)
	Insert(ctx context.Context, inputs []CreateMemberInput) ([]Member, error)
	UpdateRole(ctx context.Context, memberID, roleID, projectID int64) (Member, error)
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

const detailQuery = `SELECT m.id, m.user_id, m.role_id, m.created_at, m.updated_at,
		u.email, u.name, r.name, r.permissions, m.project_id
	FROM members m
	JOIN roles r ON r.id = m.role_id AND r.project_id = m.project_id
	JOIN users u ON u.id = m.user_id`

// FindByID fetches a membership with its role's project.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (MemberDetail, error) {
	return scanDetail(r.db.QueryRow(ctx, detailQuery+` WHERE m.id = $1`, id))
}

// FindByUserAndProject fetches the single membership of a user in a project.
// UNIQUE (user_id, project_id) guarantees at most one row.
func (r *PGRepository) FindByUserAndProject(ctx context.Context, userID, projectID int64) (MemberDetail, error) {
	return scanDetail(r.db.QueryRow(ctx, detailQuery+` WHERE m.user_id = $1 AND m.project_id = $2`, userID, projectID))
}

// FindByProjectID lists the memberships of a project by creation time.
func (r *PGRepository) FindByProjectID(ctx context.Context, projectID int64) ([]MemberDetail, error) {
	rows, err := r.db.Query(ctx, detailQuery+` WHERE m.project_id = $1 ORDER BY m.created_at, m.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("members: list: %w", err)
	}
	defer rows.Close()
	var out []MemberDetail
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("members: list: %w", err)
	}
	return out, nil
}

// Insert stores all inputs with one statement. A concurrent duplicate of
// (user, project) fails on the table's unique constraint.
func (r *PGRepository) Insert(ctx context.Context, inputs []CreateMemberInput) ([]Member, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(inputs))
	args := make([]any, 0, len(inputs)*3)
	for i, in := range inputs {
		n := i * 3
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, NOW(), NOW())", n+1, n+2, n+3))
		args = append(args, in.UserID, in.RoleID, in.ProjectID)
	}
	rows, err := r.db.Query(ctx, `INSERT INTO members (user_id, role_id, project_id, created_at, updated_at) VALUES `+
		strings.Join(values, ", ")+` RETURNING id, user_id, role_id, created_at, updated_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("members: insert: %w", err)
	}
	defer rows.Close()
	out := make([]Member, 0, len(inputs))
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.RoleID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("members: insert scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("members: insert: %w", err)
	}
	return out, nil
}

// UpdateRole points a membership at another role.
func (r *PGRepository) UpdateRole(ctx context.Context, memberID, roleID, projectID int64) (Member, error) {
	var m Member
	err := r.db.QueryRow(ctx, `UPDATE members SET role_id = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, user_id, role_id, created_at, updated_at`, memberID, roleID).
		Scan(&m.ID, &m.UserID, &m.RoleID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, fmt.Errorf("members: update: %w", err)
	}
	return m, nil
}

// DeleteByID removes a membership. Missing ids are not an error.
func (r *PGRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
		return fmt.Errorf("members: delete: %w", err)
	}
	return nil
}

func scanDetail(row pgx.Row) (MemberDetail, error) {
	var (
		d     MemberDetail
		perms []string
	)
	err := row.Scan(&d.ID, &d.UserID, &d.RoleID, &d.CreatedAt, &d.UpdatedAt,
		&d.UserEmail, &d.UserName, &d.RoleName, &perms, &d.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MemberDetail{}, ErrMemberNotFound
		}
		return MemberDetail{}, fmt.Errorf("members: scan: %w", err)
	}
	d.RolePermissions = make([]rbac.Permission, len(perms))
	for i, p := range perms {
		d.RolePermissions[i] = rbac.Permission(p)
	}
	return d, nil
}

var _ Repository = (*PGRepository)(nil)
