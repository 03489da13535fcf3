package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/feedbackhub/feedbackhub/internal/apikeys"
	"github.com/feedbackhub/feedbackhub/internal/issuetrackers"
	"github.com/feedbackhub/feedbackhub/internal/members"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/tenants"
)

// TenantFinder resolves the owning tenant.
type TenantFinder interface {
	Find(ctx context.Context) (tenants.Tenant, error)
}

// RoleCreator batch-creates roles.
type RoleCreator interface {
	CreateMany(ctx context.Context, inputs []roles.CreateRoleInput) ([]roles.Role, error)
}

// MemberCreator batch-creates memberships.
type MemberCreator interface {
	CreateMany(ctx context.Context, inputs []members.CreateMemberInput) ([]members.Member, error)
}

// APIKeyCreator batch-creates api keys.
type APIKeyCreator interface {
	CreateMany(ctx context.Context, inputs []apikeys.CreateAPIKeyInput) ([]apikeys.APIKey, error)
}

// IssueTrackerCreator stores initial tracker settings.
type IssueTrackerCreator interface {
	Create(ctx context.Context, projectID int64, data map[string]any) (issuetrackers.IssueTracker, error)
}

// StatisticsScheduler registers recurring statistics jobs per project.
type StatisticsScheduler interface {
	Register(ctx context.Context, projectID int64, timezone string) error
	Unregister(ctx context.Context, projectID int64) error
}

// Collaborators are the stores provisioning writes through. Inside
// UnitOfWork.WithinTx they all share one transaction.
type Collaborators struct {
	Projects      Repository
	Tenants       TenantFinder
	Roles         RoleCreator
	Members       MemberCreator
	APIKeys       APIKeyCreator
	IssueTrackers IssueTrackerCreator
}

// UnitOfWork runs fn in one transaction; any error rolls everything back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, c Collaborators) error) error
}

// Service handles project provisioning and lifecycle.
type Service struct {
	repo   Repository
	uow    UnitOfWork
	stats  StatisticsScheduler
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, uow UnitOfWork, stats StatisticsScheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, uow: uow, stats: stats, logger: logger}
}

// Create provisions a project with its roles, members, api keys, tracker
// settings and statistics schedule in one transaction.
func (s *Service) Create(ctx context.Context, input CreateProjectInput) (Provisioned, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Provisioned{}, ErrProjectNameRequired
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return Provisioned{}, ErrInvalidTimezone
	}

	var (
		out        Provisioned
		registered bool
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, c Collaborators) error {
		exists, err := c.Projects.ExistsByName(ctx, name, 0)
		if err != nil {
			return err
		}
		if exists {
			return ErrProjectAlreadyExists
		}
		tenant, err := c.Tenants.Find(ctx)
		if err != nil {
			return err
		}

		project, err := c.Projects.Insert(ctx, Project{
			Name:        name,
			Description: input.Description,
			Timezone:    timezone,
			TenantID:    tenant.ID,
		})
		if err != nil {
			return err
		}
		out.Project = project

		if input.Roles != nil {
			out.Roles, out.Members, err = createSuppliedRoles(ctx, c, project.ID, input.Roles, input.Members)
		} else {
			out.Roles, err = c.Roles.CreateMany(ctx, defaultRoleInputs(project.ID))
		}
		if err != nil {
			return err
		}

		if len(input.APIKeys) > 0 {
			keys := make([]apikeys.CreateAPIKeyInput, 0, len(input.APIKeys))
			for _, value := range input.APIKeys {
				keys = append(keys, apikeys.CreateAPIKeyInput{ProjectID: project.ID, Value: value})
			}
			if out.APIKeys, err = c.APIKeys.CreateMany(ctx, keys); err != nil {
				return err
			}
		}

		if input.IssueTracker != nil {
			tracker, err := c.IssueTrackers.Create(ctx, project.ID, input.IssueTracker)
			if err != nil {
				return err
			}
			out.IssueTracker = &tracker
		}

		if err := s.stats.Register(ctx, project.ID, project.Timezone); err != nil {
			return fmt.Errorf("projects: register statistics: %w", err)
		}
		registered = true
		return nil
	})
	if err != nil {
		// The registry lives outside the transaction; drop the entry of a
		// project whose commit failed.
		if registered {
			if uerr := s.stats.Unregister(ctx, out.Project.ID); uerr != nil {
				s.logger.Warn("unregister statistics after rollback", slog.Int64("project_id", out.Project.ID), slog.Any("error", uerr))
			}
		}
		return Provisioned{}, err
	}
	return out, nil
}

func createSuppliedRoles(ctx context.Context, c Collaborators, projectID int64, specs []RoleSpec, memberSpecs []MemberSpec) ([]roles.Role, []members.Member, error) {
	inputs := make([]roles.CreateRoleInput, 0, len(specs))
	for _, spec := range specs {
		inputs = append(inputs, roles.CreateRoleInput{Name: spec.Name, Permissions: spec.Permissions, ProjectID: projectID})
	}
	created, err := c.Roles.CreateMany(ctx, inputs)
	if err != nil {
		return nil, nil, err
	}
	if len(memberSpecs) == 0 {
		return created, nil, nil
	}

	byName := make(map[string]int64, len(created))
	for _, role := range created {
		byName[role.Name] = role.ID
	}
	memberInputs := make([]members.CreateMemberInput, 0, len(memberSpecs))
	for _, spec := range memberSpecs {
		roleID, ok := byName[strings.TrimSpace(spec.RoleName)]
		if !ok {
			return nil, nil, ErrInvalidRoleName
		}
		memberInputs = append(memberInputs, members.CreateMemberInput{UserID: spec.UserID, RoleID: roleID})
	}
	createdMembers, err := c.Members.CreateMany(ctx, memberInputs)
	if err != nil {
		return nil, nil, err
	}
	return created, createdMembers, nil
}

func defaultRoleInputs(projectID int64) []roles.CreateRoleInput {
	defaults := rbac.DefaultRoles()
	inputs := make([]roles.CreateRoleInput, 0, len(defaults))
	for _, d := range defaults {
		inputs = append(inputs, roles.CreateRoleInput{Name: d.Name, Permissions: d.Permissions, ProjectID: projectID})
	}
	return inputs
}

// Update merges the supplied fields into an existing project.
func (s *Service) Update(ctx context.Context, input UpdateProjectInput) (Project, error) {
	project, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return Project{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Project{}, ErrProjectNameRequired
		}
		exists, err := s.repo.ExistsByName(ctx, name, project.ID)
		if err != nil {
			return Project{}, err
		}
		if exists {
			return Project{}, ErrProjectInvalidName
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Timezone != nil {
		timezone := strings.TrimSpace(*input.Timezone)
		if _, err := time.LoadLocation(timezone); err != nil || timezone == "" {
			return Project{}, ErrInvalidTimezone
		}
		project.Timezone = timezone
	}
	updated, err := s.repo.Update(ctx, project)
	if err != nil {
		return Project{}, err
	}
	if input.Timezone != nil {
		if err := s.stats.Register(ctx, updated.ID, updated.Timezone); err != nil {
			s.logger.Warn("reschedule statistics", slog.Int64("project_id", updated.ID), slog.Any("error", err))
		}
	}
	return updated, nil
}

// DeleteByID removes a project and stops its statistics schedule.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.stats.Unregister(ctx, id); err != nil {
		s.logger.Warn("unregister statistics", slog.Int64("project_id", id), slog.Any("error", err))
	}
	return nil
}

// FindByID returns a project by id.
func (s *Service) FindByID(ctx context.Context, id int64) (Project, error) {
	return s.repo.FindByID(ctx, id)
}

// FindAll lists the projects visible to p. SUPER users and the master key see
// every project, other users only those they are a member of.
func (s *Service) FindAll(ctx context.Context, p rbac.Principal) ([]Project, error) {
	switch {
	case p.IsSuper(), p.Kind == rbac.PrincipalAPIKey && p.MasterKey:
		return s.repo.FindAll(ctx)
	case p.IsUser():
		return s.repo.FindByUserID(ctx, p.UserID)
	case p.Kind == rbac.PrincipalAPIKey:
		project, err := s.repo.FindByID(ctx, p.ProjectID)
		if err != nil {
			return nil, err
		}
		return []Project{project}, nil
	default:
		return nil, nil
	}
}

// NameExists reports whether a project already uses name.
func (s *Service) NameExists(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, strings.TrimSpace(name), 0)
}
