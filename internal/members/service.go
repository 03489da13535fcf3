package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/users"
)

// RoleFinder resolves roles, and through them projects.
type RoleFinder interface {
	FindByID(ctx context.Context, id int64) (roles.Role, error)
}

// UserFinder resolves referenced users.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (users.User, error)
}

// Service handles membership business logic.
type Service struct {
	repo  Repository
	roles RoleFinder
	users UserFinder
}

// NewService builds Service instance.
func NewService(repo Repository, roles RoleFinder, users UserFinder) *Service {
	return &Service{repo: repo, roles: roles, users: users}
}

// Create adds a user to the project owning input.RoleID.
func (s *Service) Create(ctx context.Context, input CreateMemberInput) (Member, error) {
	created, err := s.CreateMany(ctx, []CreateMemberInput{input})
	if err != nil {
		return Member{}, err
	}
	return created[0], nil
}

// CreateMany validates every input before issuing a single batched insert.
// The first invalid input aborts the whole batch.
func (s *Service) CreateMany(ctx context.Context, inputs []CreateMemberInput) ([]Member, error) {
	type userProject struct{ userID, projectID int64 }
	inBatch := make(map[userProject]struct{}, len(inputs))
	resolved := make([]CreateMemberInput, 0, len(inputs))
	for _, in := range inputs {
		projectID, err := s.validateCreate(ctx, in)
		if err != nil {
			return nil, err
		}
		key := userProject{in.UserID, projectID}
		if _, dup := inBatch[key]; dup {
			return nil, ErrMemberAlreadyExists
		}
		inBatch[key] = struct{}{}
		in.ProjectID = projectID
		resolved = append(resolved, in)
	}
	if len(resolved) == 0 {
		return []Member{}, nil
	}
	return s.repo.Insert(ctx, resolved)
}

func (s *Service) validateCreate(ctx context.Context, in CreateMemberInput) (int64, error) {
	role, err := s.roles.FindByID(ctx, in.RoleID)
	if err != nil {
		return 0, err
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return 0, ErrMemberInvalidUser
		}
		return 0, err
	}
	_, err = s.repo.FindByUserAndProject(ctx, in.UserID, role.ProjectID)
	switch {
	case err == nil:
		return 0, ErrMemberAlreadyExists
	case errors.Is(err, ErrMemberNotFound):
		return role.ProjectID, nil
	default:
		return 0, err
	}
}

// Update reassigns a membership's role. The new role must belong to the
// project the membership already lives in.
func (s *Service) Update(ctx context.Context, input UpdateMemberInput) (Member, error) {
	role, err := s.roles.FindByID(ctx, input.RoleID)
	if err != nil {
		return Member{}, err
	}
	existing, err := s.repo.FindByID(ctx, input.MemberID)
	if err != nil {
		return Member{}, err
	}
	if existing.ProjectID != role.ProjectID {
		return Member{}, ErrMemberUpdateRoleNotMatchedProject
	}
	return s.repo.UpdateRole(ctx, input.MemberID, role.ID, role.ProjectID)
}

// Delete removes a membership by id.
func (s *Service) Delete(ctx context.Context, memberID int64) error {
	return s.repo.DeleteByID(ctx, memberID)
}

// FindInProject returns a membership only when it belongs to projectID.
func (s *Service) FindInProject(ctx context.Context, projectID, memberID int64) (MemberDetail, error) {
	detail, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return MemberDetail{}, err
	}
	if detail.ProjectID != projectID {
		return MemberDetail{}, ErrMemberNotFound
	}
	return detail, nil
}

// FindByProjectID lists the memberships of a project by creation time.
func (s *Service) FindByProjectID(ctx context.Context, projectID int64) ([]MemberDetail, error) {
	return s.repo.FindByProjectID(ctx, projectID)
}

// LookupPermissions implements rbac.MembershipLookup with one joined query.
func (s *Service) LookupPermissions(ctx context.Context, userID, projectID int64) ([]rbac.Permission, bool, error) {
	detail, err := s.repo.FindByUserAndProject(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("members: lookup permissions: %w", err)
	}
	return detail.RolePermissions, true, nil
}

var _ rbac.MembershipLookup = (*Service)(nil)
