// Package services provides external service integrations and technical concerns like sessions, email and chat
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// TokenService issues and checks dashboard session tokens
type TokenService interface {
	GenerateSessionToken(userID uint, email, role string) (string, *SessionClaims, error)
	ValidateSessionToken(ctx context.Context, token string) (*SessionClaims, error)
	RevokeSessionToken(ctx context.Context, token string) error
	TTL() time.Duration
}

// SessionClaims represents the claims carried by a session token
type SessionClaims struct {
	UserID    uint      `json:"sub"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IsAdmin reports whether the role claim grants dashboard access
func (c *SessionClaims) IsAdmin() bool {
	return c != nil && c.Role == utils.RoleAdmin
}

// TokenServiceImpl implements TokenService with HS256 tokens
type TokenServiceImpl struct {
	ttl           time.Duration
	signingMethod jwt.SigningMethod
	secretKey     []byte
	issuer        string
	audience      string
	revocations   RevocationStore
}

// NewTokenService creates a new token service. revocations may be nil, in which case an in-memory store is used.
func NewTokenService(ttl time.Duration, issuer, audience, secretKey string, revocations RevocationStore) (TokenService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}
	if ttl <= 0 {
		ttl = utils.SessionTTL
	}
	if revocations == nil {
		revocations = NewMemoryRevocationStore()
	}

	return &TokenServiceImpl{
		ttl:           ttl,
		signingMethod: jwt.SigningMethodHS256,
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		audience:      audience,
		revocations:   revocations,
	}, nil
}

func (s *TokenServiceImpl) TTL() time.Duration {
	return s.ttl
}

// GenerateSessionToken signs a token for the given user
func (s *TokenServiceImpl) GenerateSessionToken(userID uint, email, role string) (string, *SessionClaims, error) {
	now := utils.UTCNow()

	tokenID := uuid.NewString()

	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"email": email,
		"role":  role,
		"jti":   tokenID,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"iss":   s.issuer,
		"aud":   s.audience,
	}

	signed, err := jwt.NewWithClaims(s.signingMethod, claims).SignedString(s.secretKey)
	if err != nil {
		return "", nil, err
	}

	return signed, &SessionClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenID:   tokenID,
		IssuedAt:  time.Unix(now.Unix(), 0).UTC(),
		ExpiresAt: time.Unix(expiresAt.Unix(), 0).UTC(),
	}, nil
}

// ValidateSessionToken verifies signature, issuer, audience, expiry and revocation
func (s *TokenServiceImpl) ValidateSessionToken(ctx context.Context, token string) (*SessionClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation lookup failed: %v", ErrTokenInvalid, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// RevokeSessionToken blacklists the token id for the rest of its lifetime.
// Tokens that are already expired or invalid need no revocation.
func (s *TokenServiceImpl) RevokeSessionToken(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(utils.UTCNow())
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.TokenID, ttl)
}

func (s *TokenServiceImpl) parse(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrTokenInvalid
	}
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	tokenID, ok := claims["jti"].(string)
	if !ok || tokenID == "" {
		return nil, ErrTokenInvalid
	}
	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, ErrTokenInvalid
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return &SessionClaims{
		UserID:    uint(userID),
		Email:     email,
		Role:      role,
		TokenID:   tokenID,
		IssuedAt:  issuedAt.UTC(),
		ExpiresAt: expiresAt.UTC(),
	}, nil
}
