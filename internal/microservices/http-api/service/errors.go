package service

import (
	"errors"

	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/shared"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// storeErr maps repository errors onto the shared taxonomy.
func storeErr(entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return shared.NotFound(entity)
	}
	return err
}
