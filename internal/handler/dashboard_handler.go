package handler

import (
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetBusinessStats returns the headline numbers for one business
// GET /api/dashboard/businesses/:id
func (h *DashboardHandler) GetBusinessStats(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	stats, err := h.service.GetBusinessStats(id, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(stats)
}

// GetSalesMovement returns daily sales for charts
// GET /api/dashboard/businesses/:id/sales?days=7 (max 90)
func (h *DashboardHandler) GetSalesMovement(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	days := c.QueryInt("days", 7)

	data, err := h.service.GetSalesMovement(id, days, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(data)
}

// GET /api/dashboard/platform
func (h *DashboardHandler) GetPlatformStats(c *fiber.Ctx) error {
	stats, err := h.service.GetPlatformStats()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(stats)
}
