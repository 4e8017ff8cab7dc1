package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewConfirmationCode returns a fresh random code for the signup mail.
func NewConfirmationCode() string {
	return uuid.NewString()
}

// HashCode creates a bcrypt hash of a confirmation code; only the hash is stored.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks a presented code against the stored hash.
// An empty hash never matches.
func VerifyCode(hashedCode, providedCode string) bool {
	if hashedCode == "" || providedCode == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode)) == nil
}
