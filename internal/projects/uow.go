package projects

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feedbackhub/feedbackhub/internal/apikeys"
	"github.com/feedbackhub/feedbackhub/internal/issuetrackers"
	"github.com/feedbackhub/feedbackhub/internal/members"
	"github.com/feedbackhub/feedbackhub/internal/platform/db"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/tenants"
	"github.com/feedbackhub/feedbackhub/internal/users"
)

// PGUnitOfWork binds every collaborator to one PostgreSQL transaction.
type PGUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork constructs a PGUnitOfWork.
func NewUnitOfWork(pool *pgxpool.Pool) *PGUnitOfWork {
	return &PGUnitOfWork{pool: pool}
}

// WithinTx implements UnitOfWork.
func (u *PGUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, c Collaborators) error) error {
	return db.WithTx(ctx, u.pool, func(tx pgx.Tx) error {
		roleService := roles.NewService(roles.NewRepository(tx))
		userService := users.NewService(users.NewRepository(tx))
		return fn(ctx, Collaborators{
			Projects:      NewRepository(tx),
			Tenants:       tenants.NewService(tenants.NewRepository(tx)),
			Roles:         roleService,
			Members:       members.NewService(members.NewRepository(tx), roleService, userService),
			APIKeys:       apikeys.NewService(apikeys.NewRepository(tx)),
			IssueTrackers: issuetrackers.NewService(issuetrackers.NewRepository(tx)),
		})
	})
}

var _ UnitOfWork = (*PGUnitOfWork)(nil)
