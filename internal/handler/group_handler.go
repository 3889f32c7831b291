package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/service"
	"github.com/rubrica-dev/rubrica-api/internal/utils"
)

// GroupHandler wires thesis group and defense schedule administration.
type GroupHandler struct {
	service service.GroupService
	logger  zerolog.Logger
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(service service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		logger:  logger.With().Str("component", "group_handler").Logger(),
	}
}

// RegisterGroups attaches group endpoints to the router group.
func (h *GroupHandler) RegisterGroups(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Post("/", adminOnly, h.create)
	router.Patch("/:id", adminOnly, h.update)
	router.Delete("/:id", adminOnly, h.delete)
	router.Put("/:id/members", adminOnly, h.setMembers)
}

// RegisterSchedules attaches schedule endpoints to the router group.
func (h *GroupHandler) RegisterSchedules(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/:id", h.getSchedule)
	router.Post("/", adminOnly, h.createSchedule)
	router.Patch("/:id", adminOnly, h.updateSchedule)
	router.Delete("/:id", adminOnly, h.deleteSchedule)
	router.Put("/:id/panelists", adminOnly, h.setPanelists)
}

func (h *GroupHandler) list(c *fiber.Ctx) error {
	groups, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "groups retrieved", groups)
}

func (h *GroupHandler) get(c *fiber.Ctx) error {
	group, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "group retrieved", group)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var payload dto.GroupCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", group)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	var payload dto.GroupUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Update(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "group updated", group)
}

func (h *GroupHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), actorFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "group deleted", fiber.Map{"id": c.Params("id")})
}

func (h *GroupHandler) setMembers(c *fiber.Ctx) error {
	var payload dto.SetMembersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.SetMembers(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "members replaced", group)
}

func (h *GroupHandler) getSchedule(c *fiber.Ctx) error {
	schedule, err := h.service.GetSchedule(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "schedule retrieved", schedule)
}

func (h *GroupHandler) createSchedule(c *fiber.Ctx) error {
	var payload dto.ScheduleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	schedule, err := h.service.CreateSchedule(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "schedule created", schedule)
}

func (h *GroupHandler) updateSchedule(c *fiber.Ctx) error {
	var payload dto.ScheduleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	schedule, err := h.service.UpdateSchedule(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "schedule updated", schedule)
}

func (h *GroupHandler) deleteSchedule(c *fiber.Ctx) error {
	if err := h.service.DeleteSchedule(c.Context(), actorFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "schedule deleted", fiber.Map{"id": c.Params("id")})
}

func (h *GroupHandler) setPanelists(c *fiber.Ctx) error {
	var payload dto.SetPanelistsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	schedule, err := h.service.SetPanelists(c.Context(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "panelists replaced", schedule)
}
