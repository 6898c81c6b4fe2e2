package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R4Flutter/RentDone/app/models"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "asha@example.com", "Asha", models.RoleOwner)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, models.RoleOwner, claims.Role)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)

	token, err := GenerateJWT("user-1", "asha@example.com", "Asha", models.RoleOwner)
	require.NoError(t, err)
	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": c.Locals("user_id")})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	token, err := GenerateJWT("user-42", "t@example.com", "T", models.RoleTenant)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRoleMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/owners-only", AuthMiddleware, RoleMiddleware(models.RoleOwner), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	ownerToken, err := GenerateJWT("o1", "o@example.com", "O", models.RoleOwner)
	require.NoError(t, err)
	tenantToken, err := GenerateJWT("t1", "t@example.com", "T", models.RoleTenant)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/owners-only", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/owners-only", nil)
	req.Header.Set("Authorization", "Bearer "+tenantToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}
