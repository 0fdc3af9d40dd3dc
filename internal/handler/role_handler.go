package handler

import (
	"stocky-api/internal/repository"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
	userService   service.UserService
}

func NewRoleHandler(roleRepo repository.RoleRepository, privilegeRepo repository.PrivilegeRepository, userService service.UserService) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo, privilegeRepo: privilegeRepo, userService: userService}
}

// GetRoles returns all available roles
// GET /api/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(roles)
}

// GetPrivileges lists every privilege code
// GET /api/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.privilegeRepo.FindAll()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(privileges)
}

// UpdateRolePrivileges replaces the privileges granted by a role
// PUT /api/roles/:code/privileges
func (h *RoleHandler) UpdateRolePrivileges(c *fiber.Ctx) error {
	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	role, err := h.userService.UpdateRolePrivileges(c.Params("code"), req.Privileges)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Privileges updated successfully", "data": role})
}
