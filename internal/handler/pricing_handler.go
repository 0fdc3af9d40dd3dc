package handler

import (
	"time"

	"stocky-api/internal/service"
	"stocky-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PricingHandler struct {
	service service.PricingService
}

func NewPricingHandler(s service.PricingService) *PricingHandler {
	return &PricingHandler{service: s}
}

// RunPass triggers a pricing pass outside the hourly schedule
// POST /api/pricing/run
func (h *PricingHandler) RunPass(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	logger.FromFiber(c).Info("manual pricing pass", zap.String("actor", actor.String()))

	report, err := h.service.RunPricingPass(c.UserContext(), time.Now())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(report)
}
