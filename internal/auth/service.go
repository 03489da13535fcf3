package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/users"
)

// UserFinder resolves the accounts that may sign in.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (users.User, error)
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// RoleLister lists the roles a user holds across projects.
type RoleLister interface {
	FindByUserID(ctx context.Context, userID int64) ([]roles.Role, error)
}

// Service wraps authentication business rules.
type Service struct {
	users  UserFinder
	roles  RoleLister
	tokens *Tokens
}

// NewService constructs a new Service.
func NewService(users UserFinder, roles RoleLister, tokens *Tokens) *Service {
	return &Service{users: users, roles: roles, tokens: tokens}
}

// SignIn mints a token pair for an already identified user.
func (s *Service) SignIn(ctx context.Context, user users.User) (TokenPair, error) {
	if user.IsBlocked() {
		return TokenPair{}, ErrUserBlocked
	}
	held, err := s.roles.FindByUserID(ctx, user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: load roles: %w", err)
	}
	p := rbac.UserPrincipal(user.ID, user.Email, user.Type)
	var perms []rbac.Permission
	for i, role := range held {
		if i == 0 {
			p.RoleName = role.Name
		}
		perms = append(perms, role.Permissions...)
	}
	p.Permissions = rbac.Dedup(perms)
	return s.tokens.Issue(p)
}

// SignInWithEmail checks email/password credentials before SignIn.
func (s *Service) SignInWithEmail(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if user.PasswordHash == "" {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.SignIn(ctx, user)
}

// Refresh re-derives the principal from the refresh token's subject and
// signs a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	return s.SignIn(ctx, user)
}
