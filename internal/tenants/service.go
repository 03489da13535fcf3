package tenants

import (
	"context"
	"errors"
	"strings"
)

// Service handles tenant lookup and first-run setup.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Find returns the tenant or ErrTenantNotFound.
func (s *Service) Find(ctx context.Context) (Tenant, error) {
	return s.repo.Find(ctx)
}

// Setup creates the tenant. A deployment holds at most one.
func (s *Service) Setup(ctx context.Context, name string) (Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tenant{}, ErrInvalidTenantName
	}
	_, err := s.repo.Find(ctx)
	switch {
	case err == nil:
		return Tenant{}, ErrTenantAlreadyExists
	case !errors.Is(err, ErrTenantNotFound):
		return Tenant{}, err
	}
	return s.repo.Insert(ctx, name)
}
