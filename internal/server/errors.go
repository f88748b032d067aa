package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/catalog"
	"github.com/optimumcare/clinic-site/internal/config"
	"github.com/optimumcare/clinic-site/internal/db"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrStaffNotFound indicates the staff account was not found
type ErrStaffNotFound struct {
	StaffID uuid.UUID
}

func (e *ErrStaffNotFound) Error() string {
	return fmt.Sprintf("staff user not found: %s", e.StaffID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a public resource does not exist
type ErrNotFound struct {
	Resource string
	Key      string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials, *ErrPasswordMismatch:
		return http.StatusUnauthorized
	case *ErrStaffNotFound, *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation, *catalog.UnknownItemError:
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, db.ErrDuplicateSlug), errors.Is(err, db.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, config.ErrPasswordTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
