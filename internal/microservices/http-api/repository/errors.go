package repository

import (
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolated is returned when a write breaks a unique constraint
	ErrConstraintViolated = errors.New("constraint violated")
)

// postgres SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// translate maps driver and gorm errors onto the repository sentinels.
// TranslateError covers both drivers; the pgconn check handles errors that
// reach us through raw Exec paths.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if IsConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraintViolated, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsConstraintViolation reports a duplicate-key write.
func IsConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// MaxOffset bounds the rows a list query may skip. Windows past it read as empty.
const MaxOffset = math.MaxInt32

// Page is the offset pagination window used by list queries.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > MaxOffset/p.PageSize {
		return MaxOffset
	}
	return (p.Page - 1) * p.PageSize
}

func (p Page) limit() int {
	if p.PageSize < 1 {
		return -1
	}
	return p.PageSize
}
