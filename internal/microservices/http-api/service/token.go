package service

import (
	"errors"
	"fmt"
	"time"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/shared"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	IssueToken(user *models.User) (string, error)
	ParseToken(token string) (*shared.AuthClaims, error)
}

// JWTIssuer issues HS256 access tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIssuer) IssueToken(user *models.User) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(j.ttl).Unix(),
		"iat":      now.Unix(),
		"type":     "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *JWTIssuer) ParseToken(tokenString string) (*shared.AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	username, _ := claims["username"].(string)

	return &shared.AuthClaims{UserID: userID, Username: username}, nil
}
