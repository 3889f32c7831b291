package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/service"
	"github.com/rubrica-dev/rubrica-api/internal/utils"
)

// EvaluationHandler wires panelist evaluation lifecycle, score store and
// summary endpoints.
type EvaluationHandler struct {
	evaluations service.EvaluationService
	scores      service.ScoreService
	aggregator  service.AggregationService
	logger      zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(
	evaluations service.EvaluationService,
	scores service.ScoreService,
	aggregator service.AggregationService,
	logger zerolog.Logger,
) *EvaluationHandler {
	return &EvaluationHandler{
		evaluations: evaluations,
		scores:      scores,
		aggregator:  aggregator,
		logger:      logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches evaluation endpoints to the router group.
func (h *EvaluationHandler) Register(router fiber.Router, staffOnly, adminOnly fiber.Handler) {
	router.Post("/", staffOnly, h.create)
	router.Get("/:id", h.get)
	router.Get("/:id/summary", h.summary)
	router.Post("/:id/submit", h.submit)
	router.Post("/:id/lock", staffOnly, h.lock)
	router.Delete("/:id", adminOnly, h.delete)

	router.Get("/:id/scores", h.listScores)
	router.Put("/:id/scores", h.upsertScore)
	router.Put("/:id/scores/bulk", h.bulkUpsertScores)
	router.Delete("/:id/scores", adminOnly, h.deleteScores)
}

// RegisterScheduleRoutes attaches the schedule-scoped endpoints, which live
// under the schedules group rather than /evaluations.
func (h *EvaluationHandler) RegisterScheduleRoutes(router fiber.Router, staffOnly fiber.Handler) {
	router.Get("/:id/evaluations", h.listBySchedule)
	router.Post("/:id/evaluations/seed", staffOnly, h.seedPanel)
}

func (h *EvaluationHandler) create(c *fiber.Ctx) error {
	var payload dto.EvaluationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluation, err := h.evaluations.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation created", evaluation)
}

func (h *EvaluationHandler) get(c *fiber.Ctx) error {
	evaluation, err := h.evaluations.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluation retrieved", evaluation)
}

func (h *EvaluationHandler) listBySchedule(c *fiber.Ctx) error {
	evaluations, err := h.evaluations.ListBySchedule(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}

func (h *EvaluationHandler) summary(c *fiber.Ctx) error {
	summary, err := h.aggregator.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "summary computed", summary)
}

func (h *EvaluationHandler) submit(c *fiber.Ctx) error {
	evaluation, err := h.evaluations.Submit(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluation submitted", evaluation)
}

func (h *EvaluationHandler) lock(c *fiber.Ctx) error {
	evaluation, err := h.evaluations.Lock(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluation locked", evaluation)
}

func (h *EvaluationHandler) delete(c *fiber.Ctx) error {
	if err := h.evaluations.Delete(c.Context(), actorFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluation deleted", fiber.Map{"id": c.Params("id")})
}

func (h *EvaluationHandler) seedPanel(c *fiber.Ctx) error {
	evaluations, err := h.evaluations.SeedPanel(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "panel seeded", evaluations)
}

func (h *EvaluationHandler) listScores(c *fiber.Ctx) error {
	scores, err := h.scores.List(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "scores retrieved", scores)
}

func (h *EvaluationHandler) upsertScore(c *fiber.Ctx) error {
	var payload dto.ScoreUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	score, err := h.scores.Upsert(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "score saved", score)
}

func (h *EvaluationHandler) bulkUpsertScores(c *fiber.Ctx) error {
	var payload dto.BulkScoreUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	scores, err := h.scores.BulkUpsert(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "scores saved", scores)
}

func (h *EvaluationHandler) deleteScores(c *fiber.Ctx) error {
	if err := h.scores.DeleteAll(c.Context(), actorFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "scores deleted", fiber.Map{"evaluation_id": c.Params("id")})
}
