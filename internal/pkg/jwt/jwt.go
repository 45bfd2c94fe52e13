package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(clientID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(clientID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (clientID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
	}
}

// GenerateAccessToken issues a token for a local UI client
func (j *JWTService) GenerateAccessToken(clientID string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"client_id": clientID,
		"type":      TokenTypeAccess,
		"exp":       expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now().Unix()
	j.revokedTokens[token] = now
	// Entries past the longest token lifetime can no longer be presented.
	for t, at := range j.revokedTokens {
		if now-at > int64(j.accessTokenExpirationTime/time.Second) {
			delete(j.revokedTokens, t)
		}
	}
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(clientID string) (token string, expiresIn int, err error) {
	expiresIn = int(sseTokenTTL / time.Second)
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"client_id": clientID,
		"type":      TokenTypeSSE,
		"exp":       expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the client ID
func (j *JWTService) ValidateSSEToken(tokenString string) (clientID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	clientIDVal, ok := token.Get("client_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	clientID, ok = clientIDVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	return clientID, nil
}
