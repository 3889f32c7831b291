package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/service"
	"github.com/rubrica-dev/rubrica-api/internal/utils"
)

// respondError maps service errors onto HTTP statuses. Malformed ids are a
// client error distinct from "not found"; a locked evaluation rejects the
// mutation before it is attempted, so it surfaces as forbidden.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrInvalidID):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrEvaluationLocked):
		return utils.SendError(c, fiber.StatusForbidden, "evaluation is locked")
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrCriterionNotFound),
		errors.Is(err, service.ErrEvaluationNotFound),
		errors.Is(err, service.ErrStudentEvaluationNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
