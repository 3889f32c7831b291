package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/service"
	"github.com/rubrica-dev/rubrica-api/internal/utils"
)

// StudentEvaluationHandler wires student feedback endpoints.
type StudentEvaluationHandler struct {
	service service.StudentEvaluationService
	logger  zerolog.Logger
}

// NewStudentEvaluationHandler constructs the handler.
func NewStudentEvaluationHandler(service service.StudentEvaluationService, logger zerolog.Logger) *StudentEvaluationHandler {
	return &StudentEvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "student_evaluation_handler").Logger(),
	}
}

// Register attaches student evaluation endpoints to the router group.
func (h *StudentEvaluationHandler) Register(router fiber.Router, staffOnly, adminOnly fiber.Handler) {
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id/answers", h.saveAnswers)
	router.Post("/:id/submit", h.submit)
	router.Post("/:id/lock", staffOnly, h.lock)
	router.Delete("/:id", adminOnly, h.delete)
}

// RegisterScheduleRoutes attaches the schedule-scoped listing.
func (h *StudentEvaluationHandler) RegisterScheduleRoutes(router fiber.Router) {
	router.Get("/:id/student-evaluations", h.listBySchedule)
}

func (h *StudentEvaluationHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentEvaluationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student evaluation created", record)
}

func (h *StudentEvaluationHandler) get(c *fiber.Ctx) error {
	record, err := h.service.Get(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student evaluation retrieved", record)
}

func (h *StudentEvaluationHandler) listBySchedule(c *fiber.Ctx) error {
	records, err := h.service.ListBySchedule(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student evaluations retrieved", records)
}

func (h *StudentEvaluationHandler) saveAnswers(c *fiber.Ctx) error {
	var payload dto.StudentEvaluationAnswersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.SaveAnswers(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "answers saved", record)
}

func (h *StudentEvaluationHandler) submit(c *fiber.Ctx) error {
	record, err := h.service.Submit(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student evaluation submitted", record)
}

func (h *StudentEvaluationHandler) lock(c *fiber.Ctx) error {
	record, err := h.service.Lock(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student evaluation locked", record)
}

func (h *StudentEvaluationHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), actorFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student evaluation deleted", fiber.Map{"id": c.Params("id")})
}
