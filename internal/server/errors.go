// Package server provides the HTTP host for the CV builder: the page, the
// document edit API, the live preview stream and PDF export.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// ErrSessionExpired is returned for a validly signed cookie whose session has
// been dropped. The page reloads on it and starts over.
var ErrSessionExpired = errors.New("session expired, reload the page")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		fieldErr      *types.UnknownFieldError
		collectionErr *types.UnknownCollectionError
		schemaErr     *schemas.ValidationError
		requestErr    validator.ValidationErrors
		rangeErr      *store.OutOfRangeError
		loadErr       *export.LoadError
		rasterizeErr  *export.RasterizeError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSessionExpired):
		return http.StatusGone
	case errors.As(err, &validationErr),
		errors.As(err, &fieldErr),
		errors.As(err, &collectionErr),
		errors.As(err, &schemaErr),
		errors.As(err, &requestErr):
		return http.StatusBadRequest
	case errors.As(err, &rangeErr):
		return http.StatusConflict
	case errors.Is(err, export.ErrEnvironmentUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &loadErr), errors.As(err, &rasterizeErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
