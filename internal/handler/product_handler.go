package handler

import (
	"strconv"
	"strings"

	"stocky-api/internal/apperror"
	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperror.BadRequest("Invalid " + key)
	}
	return v, nil
}

// productFilter reads the listing query string. status defaults to ACTIVE;
// status=ALL lists every status.
func productFilter(c *fiber.Ctx) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Status: model.ProductActive,
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}

	if raw := c.Query("business_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperror.BadRequest("Invalid business_id")
		}
		filter.BusinessID = &id
	}
	if raw := strings.ToUpper(c.Query("status")); raw != "" {
		switch model.ProductStatus(raw) {
		case model.ProductActive, model.ProductSoldOut, model.ProductExpired, model.ProductInactive:
			filter.Status = model.ProductStatus(raw)
		case "ALL":
			filter.Status = ""
		default:
			return filter, apperror.BadRequest("Invalid status")
		}
	}

	category, err := queryInt(c, "category_id")
	if err != nil {
		return filter, err
	}
	filter.CategoryID = uint(category)

	maxPrice, err := queryInt(c, "max_price")
	if err != nil {
		return filter, err
	}
	filter.MaxPrice = int64(maxPrice)

	if filter.ExpiringWithinDays, err = queryInt(c, "expiring_within_days"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt(c, "page_size"); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListProducts is public
// GET /api/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListProducts(filter)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(page)
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(product)
}

// GET /api/products/:id/price-history
func (h *ProductHandler) GetPriceHistory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	history, err := h.service.GetPriceHistory(id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(history)
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(&req, actor)
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PATCH /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(id, &req, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(id, actor); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
