package handler

import (
	"strconv"

	"stocky-api/internal/apperror"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BusinessHandler struct {
	service service.BusinessService
}

func NewBusinessHandler(s service.BusinessService) *BusinessHandler {
	return &BusinessHandler{service: s}
}

// ListBusinesses is public. Query params: search
// GET /api/businesses
func (h *BusinessHandler) ListBusinesses(c *fiber.Ctx) error {
	businesses, err := h.service.ListBusinesses(c.Query("search"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(businesses)
}

// GET /api/businesses/mine
func (h *BusinessHandler) ListMine(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	businesses, err := h.service.ListMine(actor.ID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(businesses)
}

// GET /api/businesses/:id
func (h *BusinessHandler) GetBusiness(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	business, err := h.service.GetBusiness(id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(business)
}

// POST /api/businesses
func (h *BusinessHandler) CreateBusiness(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req service.BusinessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	business, err := h.service.CreateBusiness(&req, actor)
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Business created", "data": business})
}

// PUT /api/businesses/:id
func (h *BusinessHandler) UpdateBusiness(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req service.BusinessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	business, err := h.service.UpdateBusiness(id, &req, actor)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Business updated", "data": business})
}

// DELETE /api/businesses/:id
func (h *BusinessHandler) DeleteBusiness(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteBusiness(id, actor); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Business deleted"})
}

type CategoryHandler struct {
	service service.CategoryService
}

func NewCategoryHandler(s service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: s}
}

// GET /api/categories
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(categories)
}

// POST /api/categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(&req)
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Category created", "data": category})
}

// PUT /api/categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return apperror.BadRequest("Invalid id")
	}
	var req service.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.service.UpdateCategory(uint(id), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}
