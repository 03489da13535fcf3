package apikeys

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Service handles api key business logic.
type Service struct {
	repo     Repository
	generate func() string
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, generate: GenerateValue}
}

// GenerateValue returns a fresh 20 character upper-case hex key.
func GenerateValue() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:ValueLength])
}

// Create stores one key for projectID. An empty value is generated.
func (s *Service) Create(ctx context.Context, input CreateAPIKeyInput) (APIKey, error) {
	created, err := s.CreateMany(ctx, []CreateAPIKeyInput{input})
	if err != nil {
		return APIKey{}, err
	}
	return created[0], nil
}

// CreateMany validates or generates every value, then inserts the batch at once.
func (s *Service) CreateMany(ctx context.Context, inputs []CreateAPIKeyInput) ([]APIKey, error) {
	prepared := make([]CreateAPIKeyInput, 0, len(inputs))
	for _, in := range inputs {
		in.Value = strings.TrimSpace(in.Value)
		switch {
		case in.Value == "":
			in.Value = s.generate()
		case utf8.RuneCountInString(in.Value) != ValueLength:
			return nil, ErrInvalidAPIKeyValue
		}
		prepared = append(prepared, in)
	}
	if len(prepared) == 0 {
		return []APIKey{}, nil
	}
	return s.repo.Insert(ctx, prepared)
}

// FindByProjectID lists the keys of a project.
func (s *Service) FindByProjectID(ctx context.Context, projectID int64) ([]APIKey, error) {
	return s.repo.FindByProjectID(ctx, projectID)
}

// FindInProject returns a key only when it belongs to projectID.
func (s *Service) FindInProject(ctx context.Context, projectID, id int64) (APIKey, error) {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return APIKey{}, err
	}
	if key.ProjectID != projectID {
		return APIKey{}, ErrAPIKeyNotFound
	}
	return key, nil
}

// FindActive returns the non-deleted key of projectID matching value.
func (s *Service) FindActive(ctx context.Context, projectID int64, value string) (APIKey, error) {
	return s.repo.FindActive(ctx, projectID, value)
}

// SoftDeleteByID deactivates a key without removing it.
func (s *Service) SoftDeleteByID(ctx context.Context, id int64) (APIKey, error) {
	return s.repo.SetDeleted(ctx, id, true)
}

// RecoverByID reactivates a soft-deleted key.
func (s *Service) RecoverByID(ctx context.Context, id int64) (APIKey, error) {
	return s.repo.SetDeleted(ctx, id, false)
}

// DeleteByID removes a key permanently.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}
