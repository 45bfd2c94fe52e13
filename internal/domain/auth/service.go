package auth

import (
	"context"
)

type AuthService interface {
	// IssueToken exchanges the client secret for an access token.
	IssueToken(ctx context.Context, req TokenRequest) (TokenResponse, error)
	IssueSSEToken(ctx context.Context, clientID string) (SSETokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}
