// Package validation holds the uniqueness and range rules applied to every write.
// Rules are predicates over the proposed value and the current store state; they
// never mutate the store.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"yamdb/internal/shared"

	"github.com/go-playground/validator/v10"
)

const (
	UsernameMaxLen = 150
	EmailMaxLen    = 254
	SlugMaxLen     = 50
	NameMaxLen     = 256
	PersonNameLen  = 150

	ScoreMin = 1
	ScoreMax = 10

	// ReservedUsername is taken by the self-profile endpoint.
	ReservedUsername = "me"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	validate = validator.New()
)

// UserLookup answers uniqueness questions about users.
// excludeID skips the user being edited so an unchanged value is not a collision.
type UserLookup interface {
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
}

// SlugLookup answers slug uniqueness within one entity kind.
type SlugLookup interface {
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// ReviewLookup answers the one-review-per-author-per-title question.
type ReviewLookup interface {
	ReviewExists(ctx context.Context, titleID int64, authorID string) (bool, error)
}

// UsernameFormat checks pattern, length and the reserved name.
func UsernameFormat(username string) error {
	switch {
	case username == "":
		return shared.NewValidationError("username", "this field is required")
	case utf8.RuneCountInString(username) > UsernameMaxLen:
		return shared.NewValidationError("username", "must be at most %d characters", UsernameMaxLen)
	case !usernamePattern.MatchString(username):
		return shared.NewValidationError("username", "may contain only letters, digits and . @ + - _")
	case username == ReservedUsername:
		return shared.NewValidationError("username", "%q is reserved", ReservedUsername)
	}
	return nil
}

// Username checks the format and that no other user holds the name.
func Username(ctx context.Context, users UserLookup, username, excludeID string) error {
	if err := UsernameFormat(username); err != nil {
		return err
	}
	taken, err := users.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return shared.NewValidationError("username", "a user with that username already exists")
	}
	return nil
}

// EmailFormat checks syntax and length.
func EmailFormat(email string) error {
	if email == "" {
		return shared.NewValidationError("email", "this field is required")
	}
	if utf8.RuneCountInString(email) > EmailMaxLen {
		return shared.NewValidationError("email", "must be at most %d characters", EmailMaxLen)
	}
	if err := validate.Var(email, "email"); err != nil {
		return shared.NewValidationError("email", "enter a valid email address")
	}
	return nil
}

// Email checks the format and that no other user holds the address.
func Email(ctx context.Context, users UserLookup, email, excludeID string) error {
	if err := EmailFormat(email); err != nil {
		return err
	}
	taken, err := users.EmailExists(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return shared.NewValidationError("email", "a user with that email already exists")
	}
	return nil
}

// SlugFormat checks pattern and length.
func SlugFormat(slug string) error {
	switch {
	case slug == "":
		return shared.NewValidationError("slug", "this field is required")
	case len(slug) > SlugMaxLen:
		return shared.NewValidationError("slug", "must be at most %d characters", SlugMaxLen)
	case !slugPattern.MatchString(slug):
		return shared.NewValidationError("slug", "may contain only latin letters, digits, hyphens and underscores")
	}
	return nil
}

// Slug checks the format and uniqueness within the kind served by slugs.
func Slug(ctx context.Context, slugs SlugLookup, slug string, excludeID int64) error {
	if err := SlugFormat(slug); err != nil {
		return err
	}
	taken, err := slugs.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return shared.NewValidationError("slug", "this slug is already in use")
	}
	return nil
}

// Name checks a required display name.
func Name(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return shared.NewValidationError(field, "this field is required")
	}
	if utf8.RuneCountInString(value) > max {
		return shared.NewValidationError(field, "must be at most %d characters", max)
	}
	return nil
}

// OptionalName checks an optional free-text name.
func OptionalName(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return shared.NewValidationError(field, "must be at most %d characters", max)
	}
	return nil
}

// Year rejects years after the calendar year of now.
// now is passed per call so the bound is evaluated at write time.
func Year(year int, now time.Time) error {
	if year > now.Year() {
		return shared.NewValidationError("year", "must not be later than %d", now.Year())
	}
	return nil
}

// Score accepts integers in [ScoreMin, ScoreMax].
func Score(score int) error {
	if score < ScoreMin || score > ScoreMax {
		return shared.NewValidationError("score", "must be between %d and %d", ScoreMin, ScoreMax)
	}
	return nil
}

// ScoreNumber parses a JSON number and applies Score. Non-integers are rejected.
func ScoreNumber(n json.Number) (int, error) {
	if n == "" {
		return 0, shared.NewValidationError("score", "this field is required")
	}
	v, err := n.Int64()
	if err != nil {
		return 0, shared.NewValidationError("score", "must be an integer")
	}
	if v < ScoreMin || v > ScoreMax {
		return 0, shared.NewValidationError("score", "must be between %d and %d", ScoreMin, ScoreMax)
	}
	return int(v), nil
}

// UniqueReview rejects a second review by the same author on the same title.
// The store's unique index remains the authoritative guard under concurrency.
func UniqueReview(ctx context.Context, reviews ReviewLookup, titleID int64, authorID string) error {
	exists, err := reviews.ReviewExists(ctx, titleID, authorID)
	if err != nil {
		return fmt.Errorf("check review: %w", err)
	}
	if exists {
		return DuplicateReview()
	}
	return nil
}

// DuplicateReview is the error reported for a second review on a title.
func DuplicateReview() error {
	return shared.NewValidationError("review", "duplicate review: you have already reviewed this title")
}

// Required reports a missing field.
func Required(field string) error {
	return shared.NewValidationError(field, "this field is required")
}

// Text checks a required free-text body such as a review or comment.
func Text(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return shared.NewValidationError(field, "this field is required")
	}
	return nil
}
