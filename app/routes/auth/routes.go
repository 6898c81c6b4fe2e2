package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/models"
)

// SetupAuthRoutes sets up the auth routes
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	// Public routes
	authGroup.Post("/login", LoginAPI)
	authGroup.Post("/logout", LogoutAPI)

	// Protected routes
	authGroup.Use(AuthMiddleware)
	authGroup.Post("/change-password", ChangePasswordAPI)
}

// AuthMiddleware validates the JWT and establishes the caller identity.
// Every authenticated RPC reads the caller from these locals; a missing or
// invalid token is rejected before any handler runs.
func AuthMiddleware(c *fiber.Ctx) error {
	// Get JWT token from cookie or Authorization header
	var tokenString string

	tokenString = c.Cookies("jwt_token")
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Authentication required", "code": "unauthenticated"})
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token", "code": "unauthenticated"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_name", claims.Name)
	c.Locals("user_role", claims.Role)

	return c.Next()
}

// RoleMiddleware checks if the caller has one of the required roles
func RoleMiddleware(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(models.UserRole)
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions", "code": "permission-denied"})
	}
}
