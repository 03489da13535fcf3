package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Service handles role business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a role after checking its name is free within the project.
func (s *Service) Create(ctx context.Context, input CreateRoleInput) (Role, error) {
	created, err := s.CreateMany(ctx, []CreateRoleInput{input})
	if err != nil {
		return Role{}, err
	}
	return created[0], nil
}

// CreateMany validates every input before issuing a single batched insert.
// The first invalid input aborts the whole batch.
func (s *Service) CreateMany(ctx context.Context, inputs []CreateRoleInput) ([]Role, error) {
	normalized := make([]CreateRoleInput, 0, len(inputs))
	inBatch := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		name, perms, err := normalize(in.Name, in.Permissions)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%d/%s", in.ProjectID, name)
		if _, dup := inBatch[key]; dup {
			return nil, ErrRoleAlreadyExists
		}
		inBatch[key] = struct{}{}
		exists, err := s.repo.ExistsByName(ctx, in.ProjectID, name, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrRoleAlreadyExists
		}
		normalized = append(normalized, CreateRoleInput{Name: name, Permissions: perms, ProjectID: in.ProjectID})
	}
	if len(normalized) == 0 {
		return []Role{}, nil
	}
	return s.repo.Insert(ctx, normalized)
}

// Update replaces the name and permissions of a role in projectID.
func (s *Service) Update(ctx context.Context, id, projectID int64, input UpdateRoleInput) (Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if role.ProjectID != projectID {
		return Role{}, ErrRoleNotFound
	}
	name, perms, err := normalize(input.Name, input.Permissions)
	if err != nil {
		return Role{}, err
	}
	exists, err := s.repo.ExistsByName(ctx, projectID, name, id)
	if err != nil {
		return Role{}, err
	}
	if exists {
		return Role{}, ErrRoleAlreadyExists
	}
	role.Name = name
	role.Permissions = perms
	return s.repo.Update(ctx, role)
}

// FindByID returns a role by id.
func (s *Service) FindByID(ctx context.Context, id int64) (Role, error) {
	return s.repo.FindByID(ctx, id)
}

// FindInProject returns a role by id only when it belongs to projectID.
func (s *Service) FindInProject(ctx context.Context, projectID, id int64) (Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if role.ProjectID != projectID {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// FindByProjectID lists the roles of a project.
func (s *Service) FindByProjectID(ctx context.Context, projectID int64) ([]Role, error) {
	return s.repo.FindByProjectID(ctx, projectID)
}

// FindByUserID lists the roles bound to the user's memberships.
func (s *Service) FindByUserID(ctx context.Context, userID int64) ([]Role, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// FindByProjectNameAndRoleName resolves a role through its project's name.
func (s *Service) FindByProjectNameAndRoleName(ctx context.Context, projectName, roleName string) (Role, error) {
	return s.repo.FindByProjectNameAndRoleName(ctx, projectName, roleName)
}

// DeleteByID removes a role and, through the schema, its memberships.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}

func normalize(name string, perms []rbac.Permission) (string, []rbac.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, ErrInvalidRoleName
	}
	for _, p := range perms {
		if !p.Valid() {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidPermission, p)
		}
	}
	return name, rbac.Dedup(perms), nil
}
