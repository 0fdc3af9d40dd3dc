package handler

import (
	"errors"
	"strings"

	"stocky-api/internal/apperror"
	"stocky-api/internal/model"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// POST /api/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req service.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(&req, actor)
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// GET /api/orders/mine
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListMyOrders(actor.ID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(orders)
}

// ListBusinessOrders accepts an optional status query param
// GET /api/orders/business/:id
func (h *OrderHandler) ListBusinessOrders(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	businessID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	status := model.OrderStatus(strings.ToUpper(c.Query("status")))
	orders, err := h.service.ListBusinessOrders(businessID, status, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(orders)
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(id, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(order)
}

// UpdateStatus moves the order along its lifecycle. When the status was
// saved but settling the payment on chain failed, the 502 body still
// carries the order.
// PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateOrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		return apperror.BadRequest("status is required")
	}
	req.Status = model.OrderStatus(strings.ToUpper(string(req.Status)))

	order, err := h.service.UpdateStatus(c.UserContext(), id, req.Status, actor)
	if err != nil {
		if order != nil && errors.Is(err, service.ErrChainFailure) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
				"data":  order,
			})
		}
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}
