package handler

import (
	"testing"
	"time"

	"genstory-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewJWTVerifier(t *testing.T) {
	t.Run("Empty secret is rejected", func(t *testing.T) {
		_, err := NewJWTVerifier("", zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("Nil logger is tolerated", func(t *testing.T) {
		v, err := NewJWTVerifier(testSecret, nil)
		require.NoError(t, err)
		assert.NotNil(t, v)
	})
}

func TestVerifyToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret, zap.NewNop())
	require.NoError(t, err)

	t.Run("Valid token", func(t *testing.T) {
		userID := uuid.New()
		tokenString := signToken(t, testSecret, userID, time.Now().Add(time.Hour))

		claims, err := verifier.VerifyToken(tokenString)

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("Expired token", func(t *testing.T) {
		tokenString := signToken(t, testSecret, uuid.New(), time.Now().Add(-time.Hour))

		_, err := verifier.VerifyToken(tokenString)

		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("Wrong signature", func(t *testing.T) {
		tokenString := signToken(t, "another-secret", uuid.New(), time.Now().Add(time.Hour))

		_, err := verifier.VerifyToken(tokenString)

		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Malformed token", func(t *testing.T) {
		_, err := verifier.VerifyToken("not.a.token")

		assert.ErrorIs(t, err, models.ErrTokenMalformed)
	})

	t.Run("Token without user ID", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, signErr := token.SignedString([]byte(testSecret))
		require.NoError(t, signErr)

		_, err := verifier.VerifyToken(signed)

		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})
}
