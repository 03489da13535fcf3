package issuetrackers

import "context"

// Service handles issue tracker settings.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores the initial settings of a project.
func (s *Service) Create(ctx context.Context, projectID int64, data map[string]any) (IssueTracker, error) {
	return s.repo.Insert(ctx, projectID, normalize(data))
}

// FindByProjectID returns the settings of a project.
func (s *Service) FindByProjectID(ctx context.Context, projectID int64) (IssueTracker, error) {
	return s.repo.FindByProjectID(ctx, projectID)
}

// Update replaces the settings of a project, creating them when absent.
func (s *Service) Update(ctx context.Context, projectID int64, data map[string]any) (IssueTracker, error) {
	return s.repo.Upsert(ctx, projectID, normalize(data))
}

func normalize(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}
