package domain

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role values carried in token claims
const (
	RoleAdmin = "admin"
)

// TastegentClaims represents custom JWT claims for admin access tokens
type TastegentClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshToken is the persisted half of a token pair. Only the SHA256 hash of
// the raw token is ever stored.
type RefreshToken struct {
	Username  string    `bson:"username"`
	TokenHash string    `bson:"token_hash"`
	ExpiresAt time.Time `bson:"expires_at"`
	Revoked   bool      `bson:"revoked"`
	UserAgent string    `bson:"user_agent,omitempty"`
	IPAddress string    `bson:"ip_address,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// IsValid reports whether the token can still be exchanged
func (t *RefreshToken) IsValid() bool {
	return !t.Revoked && time.Now().Before(t.ExpiresAt)
}

// RefreshTokenRepository stores hashed refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllByUsername(ctx context.Context, username string) error
}
