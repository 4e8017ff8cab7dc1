package service

import (
	"errors"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer(testSecret, time.Hour)
	token, err := issuer.IssueToken(&models.User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer(testSecret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.IssueToken(&models.User{ID: "u-1"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	token, err := NewJWTIssuer(testSecret, time.Hour).IssueToken(&models.User{ID: "u-1"})
	require.NoError(t, err)

	_, err = NewJWTIssuer("another-secret-another-secret-xx", time.Hour).ParseToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTIssuer_RejectsNonAccessToken(t *testing.T) {
	claims := jwt.MapClaims{"user_id": "u-1", "type": "refresh", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTIssuer(testSecret, time.Hour).ParseToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
