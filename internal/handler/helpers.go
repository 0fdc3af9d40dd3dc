package handler

import (
	"errors"

	"stocky-api/internal/ai"
	"stocky-api/internal/apperror"
	"stocky-api/internal/service"
	"stocky-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getActor builds the caller from the values RequireAuth stored in Locals
func getActor(c *fiber.Ctx) (service.Actor, error) {
	raw, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return service.Actor{}, apperror.Unauthorized("Unauthorized")
	}
	name, _ := c.Locals("user_name").(string)
	email, _ := c.Locals("user_email").(string)
	role, _ := c.Locals("user_role").(string)
	return service.Actor{ID: id, Email: email, Name: name, Role: role}, nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.BadRequest("Invalid JSON")
	}
	return nil
}

var (
	badRequestErrors = []error{
		service.ErrValidation,
		service.ErrExpiryInPast,
		service.ErrMixedBusinesses,
		service.ErrWalletRequired,
		service.ErrBusinessWalletRequired,
		service.ErrWrongPassword,
		ai.ErrUndecodableImage,
	}
	unauthorizedErrors = []error{
		service.ErrInvalidCredentials,
		service.ErrSessionReplaced,
		jwt.ErrInvalidToken,
		jwt.ErrMissingToken,
	}
	forbiddenErrors = []error{
		service.ErrForbidden,
		service.ErrUserInactive,
		service.ErrNotBusinessAccount,
	}
	notFoundErrors = []error{
		service.ErrUserNotFound,
		service.ErrRoleNotFound,
		service.ErrBusinessNotFound,
		service.ErrCategoryNotFound,
		service.ErrProductNotFound,
		service.ErrOrderNotFound,
		service.ErrPaymentNotFound,
	}
	conflictErrors = []error{
		service.ErrEmailExists,
		service.ErrCategoryExists,
		service.ErrSKUExists,
		service.ErrBusinessHasOrders,
		service.ErrProductUnavailable,
		service.ErrInsufficientStock,
		service.ErrInvalidTransition,
		service.ErrOrderConflict,
		service.ErrOrderNotPayable,
		service.ErrAlreadyPaid,
		service.ErrNothingToSettle,
		service.ErrPricingBusy,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// mapError turns service errors into AppErrors; anything unknown becomes a 500
func mapError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case isAny(err, badRequestErrors):
		return apperror.Wrap(fiber.StatusBadRequest, err)
	case isAny(err, unauthorizedErrors):
		return apperror.Wrap(fiber.StatusUnauthorized, err)
	case isAny(err, forbiddenErrors):
		return apperror.Wrap(fiber.StatusForbidden, err)
	case isAny(err, notFoundErrors):
		return apperror.Wrap(fiber.StatusNotFound, err)
	case isAny(err, conflictErrors):
		return apperror.Wrap(fiber.StatusConflict, err)
	case errors.Is(err, service.ErrChainFailure):
		return apperror.Wrap(fiber.StatusBadGateway, err)
	default:
		return apperror.Internal(err)
	}
}
