package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/service"
	"github.com/rubrica-dev/rubrica-api/internal/utils"
)

// RubricHandler wires rubric catalog HTTP routes.
type RubricHandler struct {
	service service.RubricService
	logger  zerolog.Logger
}

// NewRubricHandler constructs the handler.
func NewRubricHandler(service service.RubricService, logger zerolog.Logger) *RubricHandler {
	return &RubricHandler{
		service: service,
		logger:  logger.With().Str("component", "rubric_handler").Logger(),
	}
}

// Register attaches rubric endpoints to the router group. Write operations
// are expected to sit behind an admin role guard.
func (h *RubricHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/templates", h.listTemplates)
	router.Get("/templates/:id", h.getTemplate)
	router.Post("/templates", adminOnly, h.createTemplate)
	router.Patch("/templates/:id", adminOnly, h.updateTemplate)
	router.Delete("/templates/:id", adminOnly, h.deleteTemplate)

	router.Get("/criteria", h.listCriteria)
	router.Get("/criteria/:id", h.getCriterion)
	router.Post("/templates/:id/criteria", adminOnly, h.createCriterion)
	router.Patch("/criteria/:id", adminOnly, h.updateCriterion)
	router.Delete("/criteria/:id", adminOnly, h.deleteCriterion)
}

func (h *RubricHandler) listTemplates(c *fiber.Ctx) error {
	templates, err := h.service.ListTemplates(c.Context(), parseQueryBool(c, "active"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "templates retrieved", templates)
}

func (h *RubricHandler) getTemplate(c *fiber.Ctx) error {
	template, err := h.service.GetTemplate(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "template retrieved", template)
}

func (h *RubricHandler) createTemplate(c *fiber.Ctx) error {
	var payload dto.TemplateCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	template, err := h.service.CreateTemplate(c.Context(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "template created", template)
}

func (h *RubricHandler) updateTemplate(c *fiber.Ctx) error {
	var payload dto.TemplateUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	template, err := h.service.UpdateTemplate(c.Context(), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "template updated", template)
}

func (h *RubricHandler) deleteTemplate(c *fiber.Ctx) error {
	if err := h.service.DeleteTemplate(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "template deleted", fiber.Map{"id": c.Params("id")})
}

func (h *RubricHandler) listCriteria(c *fiber.Ctx) error {
	// A malformed or missing template filter lists everything on purpose.
	criteria, err := h.service.ListCriteria(c.Context(), c.Query("template_id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "criteria retrieved", criteria)
}

func (h *RubricHandler) getCriterion(c *fiber.Ctx) error {
	criterion, err := h.service.GetCriterion(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "criterion retrieved", criterion)
}

func (h *RubricHandler) createCriterion(c *fiber.Ctx) error {
	var payload dto.CriterionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	criterion, err := h.service.CreateCriterion(c.Context(), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "criterion created", criterion)
}

func (h *RubricHandler) updateCriterion(c *fiber.Ctx) error {
	var payload dto.CriterionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	criterion, err := h.service.UpdateCriterion(c.Context(), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "criterion updated", criterion)
}

func (h *RubricHandler) deleteCriterion(c *fiber.Ctx) error {
	if err := h.service.DeleteCriterion(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "criterion deleted", fiber.Map{"id": c.Params("id")})
}
