package users

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R4Flutter/RentDone/app/config"
)

func TestGravatarURL(t *testing.T) {
	want := "https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?s=400&d=identicon"
	assert.Equal(t, want, GravatarURL("test@example.com"))

	// Normalization: trimmed and lowercased before hashing.
	assert.Equal(t, want, GravatarURL("  Test@Example.COM  "))
}

func newAdminApp(adminKey string) *fiber.App {
	cfg := &config.Config{AdminKey: adminKey}
	app := fiber.New()
	adminAPI := app.Group("/api/admin/users")
	adminAPI.Use(AdminKeyMiddleware(cfg))
	adminAPI.Post("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestAdminKeyMiddleware(t *testing.T) {
	app := newAdminApp("topsecret")

	req := httptest.NewRequest("POST", "/api/admin/users/ping", bytes.NewReader(nil))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/admin/users/ping", bytes.NewReader(nil))
	req.Header.Set("X-Admin-Key", "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/admin/users/ping", bytes.NewReader(nil))
	req.Header.Set("X-Admin-Key", "topsecret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAdminKeyMiddlewareUnconfigured(t *testing.T) {
	app := newAdminApp("")

	req := httptest.NewRequest("POST", "/api/admin/users/ping", bytes.NewReader(nil))
	req.Header.Set("X-Admin-Key", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}
