package services

import (
	"errors"

	"storefront/internal/apperror"
	"storefront/internal/repositories"
)

// storeError converts a repository failure into an application error.
// notFound is the message used when the record does not exist.
func storeError(err error, notFound, internal string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperror.NewNotFound(notFound)
	default:
		return apperror.NewInternal(internal, err)
	}
}
