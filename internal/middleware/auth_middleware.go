package middleware

import (
	"strings"

	"stocky-api/internal/apperror"
	"stocky-api/internal/repository"
	"stocky-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a websocket upgrade, so the token query parameter is accepted too.
func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", apperror.Unauthorized("Missing authorization token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperror.Unauthorized("Invalid authorization format. Use: Bearer <token>")
	}
	return parts[1], nil
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			return apperror.Unauthorized("Invalid or expired token")
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return apperror.Unauthorized("User not found")
		}
		if !user.IsActive {
			return apperror.Forbidden("User account is inactive")
		}
		if user.TokenVersion != claims.TokenVersion {
			return apperror.Unauthorized("Session expired (logged in on another device)")
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", claims.RoleCode)
		c.Locals("user_privileges", claims.Privileges)

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return apperror.Forbidden("No privileges found")
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return apperror.Forbidden("Forbidden: requires '" + requiredPrivilege + "' privilege")
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return apperror.Forbidden("No privileges found")
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return apperror.Forbidden("Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges")
	}
}

// RequireRole lets through only the listed role codes
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return apperror.Forbidden("Forbidden: requires role " + strings.Join(roles, " or "))
	}
}
