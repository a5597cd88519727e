// handlers/errors.go
package handlers

import (
	"errors"

	"neoengine-ledger-service/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// statusFor maps ledger failures onto HTTP statuses: validation 400,
// authorization 403, missing records 404, state conflicts 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrCosmeticNotStaked),
		errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyRewardedToday),
		errors.Is(err, services.ErrDailyLimitExceeded),
		errors.Is(err, services.ErrNoRewardEarned),
		errors.Is(err, services.ErrBadgeRequirementNotMet),
		errors.Is(err, services.ErrMaxSupplyReached),
		errors.Is(err, services.ErrCosmeticNotOwned),
		errors.Is(err, services.ErrInvalidCosmeticType),
		errors.Is(err, services.ErrCosmeticAlreadyStaked),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrAlreadyInitialized),
		errors.Is(err, services.ErrNotInitialized):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
