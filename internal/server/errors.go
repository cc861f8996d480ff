package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource other than a review session
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		notFoundErr   *ErrNotFound
		decisionErr   *review.DecisionError
		applyErr      *review.ApplyError
		schemaErr     *schemas.ValidationError
		fieldErrs     validator.ValidationErrors
	)
	switch {
	case errors.Is(err, review.ErrSessionNotFound), errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, review.ErrSessionConflict):
		return http.StatusConflict
	case errors.As(err, &validationErr), errors.As(err, &decisionErr),
		errors.As(err, &schemaErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &applyErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
