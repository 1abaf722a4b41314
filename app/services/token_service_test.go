package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(ttl time.Duration) (TokenService, error) {
	return NewTokenService(ttl, "test-issuer", "test-audience", testSecret, NewMemoryRevocationStore())
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", secretKey: testSecret},
		{name: "missing secret key", secretKey: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Hour, "iss", "aud", tt.secretKey, nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAndValidateSessionToken(t *testing.T) {
	service, err := createTestTokenService(time.Hour)
	require.NoError(t, err)

	token, issued, err := service.GenerateSessionToken(42, "admin@example.com", "ADMIN")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	_, err = uuid.Parse(issued.TokenID)
	assert.NoError(t, err, "jti should be a uuid")

	_, other, err := service.GenerateSessionToken(42, "admin@example.com", "ADMIN")
	require.NoError(t, err)
	assert.NotEqual(t, issued.TokenID, other.TokenID)

	claims, err := service.ValidateSessionToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestValidateSessionToken_NonAdminRoleIsStillValid(t *testing.T) {
	service, err := createTestTokenService(time.Hour)
	require.NoError(t, err)

	token, _, err := service.GenerateSessionToken(7, "user@example.com", "USER")
	require.NoError(t, err)

	claims, err := service.ValidateSessionToken(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestValidateSessionToken_Rejections(t *testing.T) {
	service, err := createTestTokenService(time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		_, err := service.ValidateSessionToken(ctx, "")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateSessionToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, "test-issuer", "test-audience", "another-secret-key-that-is-long-enough", nil)
		require.NoError(t, err)
		token, _, err := other.GenerateSessionToken(1, "a@b.co", "ADMIN")
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, "test-issuer", "elsewhere", testSecret, nil)
		require.NoError(t, err)
		token, _, err := other.GenerateSessionToken(1, "a@b.co", "ADMIN")
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  "1",
			"role": "ADMIN",
			"jti":  "abc",
			"iat":  time.Now().Add(-2 * time.Hour).Unix(),
			"exp":  time.Now().Add(-time.Hour).Unix(),
			"iss":  "test-issuer",
			"aud":  "test-audience",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": "1", "role": "ADMIN", "jti": "abc", "exp": time.Now().Add(time.Hour).Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestRevokeSessionToken(t *testing.T) {
	service, err := createTestTokenService(time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	token, _, err := service.GenerateSessionToken(1, "admin@example.com", "ADMIN")
	require.NoError(t, err)

	require.NoError(t, service.RevokeSessionToken(ctx, token))
	_, err = service.ValidateSessionToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// revoking twice or revoking junk is harmless
	assert.NoError(t, service.RevokeSessionToken(ctx, token))
	assert.NoError(t, service.RevokeSessionToken(ctx, "junk"))
}

func TestMemoryRevocationStore_Expiry(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "short", time.Millisecond))
	require.NoError(t, store.Revoke(ctx, "long", time.Hour))
	time.Sleep(5 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = store.IsRevoked(ctx, "long")
	require.NoError(t, err)
	assert.True(t, revoked)
}
