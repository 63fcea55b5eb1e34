package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ammar0144/catalog4go/pkg/logging"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims of a catalog session. The identity is the subject.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates HS256 session tokens
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager creates a token manager. timeout bounds the lifetime of generated tokens.
func NewJWTManager(secret string, timeout time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &JWTManager{secret: []byte(secret), timeout: timeout}, nil
}

// GenerateToken signs a token for identity with the given role
func (m *JWTManager) GenerateToken(identity, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm and time claims and returns the claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Token resolves the caller from a bearer token.
// An invalid token yields no identity, but its role claim is never trusted either.
type Token struct {
	claims *Claims
}

// Resolver validates tokenString once and returns a resolver for it
func (m *JWTManager) Resolver(ctx context.Context, tokenString string) Token {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("bearer token rejected")
		return Token{}
	}
	return Token{claims: claims}
}

// Identity returns the token subject
func (t Token) Identity(context.Context) (string, bool) {
	if t.claims == nil || t.claims.Subject == "" {
		return "", false
	}
	return t.claims.Subject, true
}

// Role returns the role claim, or "" for a rejected token
func (t Token) Role(context.Context) string {
	if t.claims == nil {
		return ""
	}
	return t.claims.Role
}
