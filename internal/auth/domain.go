package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// Token lifetimes are fixed.
const (
	AccessTokenTTL  = 10 * time.Minute
	RefreshTokenTTL = time.Hour
)

// TokenKind separates access tokens from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims is the payload of a session token. Refresh tokens carry only the
// subject and email.
type Claims struct {
	Email       string            `json:"email"`
	Type        rbac.UserType     `json:"type,omitempty"`
	RoleName    string            `json:"roleName,omitempty"`
	Permissions []rbac.Permission `json:"permissions,omitempty"`
	Kind        TokenKind         `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is returned by sign-in and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// APIKeyHeader carries the raw api key.
const APIKeyHeader = "x-api-key"

var (
	ErrInvalidToken       = shared.NewError(shared.ErrUnauthenticated, "InvalidToken", "invalid or expired token")
	ErrUserBlocked        = shared.NewError(shared.ErrUnauthenticated, "UserBlocked", "user is blocked")
	ErrInvalidCredentials = shared.NewError(shared.ErrInvalidCredentials, "InvalidCredentials", "invalid email or password")
	ErrInvalidAPIKey      = shared.NewError(shared.ErrUnauthenticated, "InvalidApiKey", "invalid api key")
)
