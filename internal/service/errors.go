package service

import (
	"errors"
	"fmt"

	"stocky-api/internal/model"

	"github.com/google/uuid"
)

var (
	ErrValidation = errors.New("invalid request")
	ErrForbidden  = errors.New("you are not allowed to perform this action")
)

// Actor is the authenticated user a call is made on behalf of
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) String() string {
	return a.ID.String()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
