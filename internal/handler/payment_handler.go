package handler

import (
	"strings"

	"stocky-api/internal/model"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type PayOrderRequest struct {
	Method model.PaymentMethod `json:"method"`
}

// PayOrder escrows the order total. method defaults to ESCROW.
// POST /api/payments/orders/:id
func (h *PaymentHandler) PayOrder(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req PayOrderRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if req.Method == "" {
		req.Method = model.MethodEscrow
	}
	req.Method = model.PaymentMethod(strings.ToUpper(string(req.Method)))

	payment, err := h.service.PayOrder(c.UserContext(), orderID, req.Method, actor)
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Payment recorded", "data": payment})
}

// GET /api/payments/orders/:id
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.service.GetPaymentByOrder(orderID, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(payment)
}

// Settle retries a release or refund that failed on chain
// POST /api/payments/orders/:id/settle
func (h *PaymentHandler) Settle(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.service.Settle(c.UserContext(), orderID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Payment settled", "data": payment})
}

// GET /api/blockchain/status
func (h *PaymentHandler) NetworkStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.NetworkStatus(c.UserContext()))
}
