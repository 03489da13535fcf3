package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/db"
)

// Repository defines tenant persistence.
type Repository interface {
	Find(ctx context.Context) (Tenant, error)
	Insert(ctx context.Context, name string) (Tenant, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository. conn may be a pool or a transaction.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// Find fetches the tenant row.
func (r *PGRepository) Find(ctx context.Context) (Tenant, error) {
	return scanTenant(r.db.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM tenants ORDER BY id LIMIT 1`))
}

// Insert stores a tenant.
func (r *PGRepository) Insert(ctx context.Context, name string) (Tenant, error) {
	return scanTenant(r.db.QueryRow(ctx, `INSERT INTO tenants (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, name, created_at, updated_at`, name))
}

func scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, fmt.Errorf("tenants: scan: %w", err)
	}
	return t, nil
}

var _ Repository = (*PGRepository)(nil)
