package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/service"
	"github.com/rubrica-dev/rubrica-api/internal/utils"
)

// RankingHandler wires the group leaderboard endpoint.
type RankingHandler struct {
	service service.RankingService
	logger  zerolog.Logger
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(service service.RankingService, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register attaches ranking endpoints to the router group.
func (h *RankingHandler) Register(router fiber.Router, staffOnly fiber.Handler) {
	router.Get("/groups", h.groupRankings)
	router.Post("/refresh", staffOnly, h.refresh)
}

func (h *RankingHandler) groupRankings(c *fiber.Ctx) error {
	rankings, err := h.service.Rankings(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "rankings computed", rankings)
}

func (h *RankingHandler) refresh(c *fiber.Ctx) error {
	h.service.Invalidate(c.Context())
	return utils.SendSuccess(c, "ranking cache invalidated", fiber.Map{"invalidated": true})
}
