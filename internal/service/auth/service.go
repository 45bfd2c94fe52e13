package auth

import (
	"context"
	"fmt"

	"github.com/ozo-extended/ozo-agent/internal/domain/auth"
	"github.com/ozo-extended/ozo-agent/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	secretHash []byte
	jwt.Service
}

// NewAuthService builds the local API auth service. secretHash is the bcrypt hash of
// the client secret shared with the tray UI.
func NewAuthService(secretHash string, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		secretHash: []byte(secretHash),
		Service:    jwtService,
	}
}

// IssueToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueToken(ctx context.Context, req auth.TokenRequest) (auth.TokenResponse, error) {
	if err := bcrypt.CompareHashAndPassword(a.secretHash, []byte(req.Secret)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(req.ClientID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(ctx context.Context, clientID string) (auth.SSETokenResponse, error) {
	token, expiresIn, err := a.Service.GenerateSSEToken(clientID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate sse token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return auth.ErrInvalidToken
	}
	a.Service.RevokeToken(accessToken)
	return nil
}

// HashSecret returns the bcrypt hash used for CLIENT_SECRET_HASH.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
