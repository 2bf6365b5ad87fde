package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tastegent/tastegent/internal/config"
	"github.com/tastegent/tastegent/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// TokenService handles admin login plus JWT access/refresh token lifecycle
type TokenService struct {
	jwtConfig        config.JWTConfig
	adminConfig      config.AdminConfig
	refreshTokenRepo domain.RefreshTokenRepository
}

// NewTokenService creates a new token service
func NewTokenService(
	jwtConfig config.JWTConfig,
	adminConfig config.AdminConfig,
	refreshTokenRepo domain.RefreshTokenRepository,
) *TokenService {
	return &TokenService{
		jwtConfig:        jwtConfig,
		adminConfig:      adminConfig,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// TokenPair contains both access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Seconds until access token expires
}

// Login checks the submitted credentials against the configured admin account
// and returns a token pair on success
func (s *TokenService) Login(ctx context.Context, username, password, userAgent, ipAddress string) (*TokenPair, error) {
	// Constant-time comparison keeps timing from leaking how much of the
	// credential matched.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminConfig.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminConfig.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, s.adminConfig.Username, userAgent, ipAddress)
}

// RefreshAccessToken validates a refresh token and rotates the pair
func (s *TokenService) RefreshAccessToken(ctx context.Context, refreshToken, userAgent, ipAddress string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	storedToken, err := s.refreshTokenRepo.FindByHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	if storedToken == nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	if !storedToken.IsValid() {
		return nil, fmt.Errorf("refresh token expired or revoked")
	}

	// Revoke old refresh token (token rotation)
	if err := s.refreshTokenRepo.RevokeByHash(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenPair(ctx, storedToken.Username, userAgent, ipAddress)
}

// RevokeAllTokens invalidates every refresh token for a user (force logout)
func (s *TokenService) RevokeAllTokens(ctx context.Context, username string) error {
	return s.refreshTokenRepo.RevokeAllByUsername(ctx, username)
}

func (s *TokenService) generateTokenPair(ctx context.Context, username, userAgent, ipAddress string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateAndStoreRefreshToken(ctx, username, userAgent, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtConfig.AccessTokenExpiry.Seconds()),
	}, nil
}

// generateAccessToken creates a short-lived JWT access token
func (s *TokenService) generateAccessToken(username string) (string, error) {
	claims := domain.TastegentClaims{
		Username: username,
		Roles:    []string{domain.RoleAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtConfig.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// generateAndStoreRefreshToken creates a random refresh token and stores its hash
func (s *TokenService) generateAndStoreRefreshToken(ctx context.Context, username, userAgent, ipAddress string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken := hex.EncodeToString(tokenBytes)

	// Store hash in database (never store raw token)
	tokenHash := hashToken(rawToken)
	refreshToken := &domain.RefreshToken{
		Username:  username,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.jwtConfig.RefreshTokenExpiry),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

// hashToken creates a SHA256 hash of the token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
