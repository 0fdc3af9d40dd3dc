package handler

import (
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CarbonHandler struct {
	service service.CarbonService
}

func NewCarbonHandler(s service.CarbonService) *CarbonHandler {
	return &CarbonHandler{service: s}
}

// GET /api/carbon/me
func (h *CarbonHandler) GetMyCredits(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	summary, err := h.service.GetMyCredits(c.UserContext(), actor.ID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(summary)
}

// GET /api/carbon/leaderboard
func (h *CarbonHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	entries, err := h.service.GetLeaderboard(limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(entries)
}
