package handler

import (
	"stocky-api/internal/apperror"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register creates a consumer or business account
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created",
		"data":    user.ToResponse(),
	})
}

// Login handles user authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperror.BadRequest("Email and password are required")
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(response)
}

// ChangePassword logs every other session out
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperror.BadRequest("old_password and new_password are required")
	}

	if err := h.authService.ChangePassword(actor.ID, req.OldPassword, req.NewPassword); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully, please log in again"})
}

func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	if err := h.authService.Heartbeat(actor.ID); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return apperror.BadRequest("Token is required")
	}

	response, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(response)
}

// Me returns the caller with role and privileges
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}

	response, err := h.authService.Me(actor.ID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(response)
}
