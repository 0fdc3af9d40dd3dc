package handler

import (
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.CreateUser(&req, actor)
	if err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user.ToResponse(),
	})
}

// GetMe returns the caller's profile
// GET /api/users/me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUserByID(actor.ID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(user)
}

// UpdateMe updates the caller's name and phone number
// PUT /api/users/me
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	var req service.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(actor.ID, &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "data": user})
}

// SetWallet stores the caller's EVM address
// PUT /api/users/me/wallet
func (h *UserHandler) SetWallet(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	var req struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.SetWallet(actor.ID, req.WalletAddress)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Wallet updated successfully", "data": user})
}

// GetUsers returns all users
// GET /api/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(user)
}

// SetStatus activates or deactivates an account
// PUT /api/users/:id/status
func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.userService.SetActive(userID, req.IsActive, actor); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully", "is_active": req.IsActive})
}
