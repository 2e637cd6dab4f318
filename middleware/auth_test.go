package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/models"
)

func authApp(a *Auth) *fiber.App {
	app := fiber.New()
	app.Get("/me", a.Required(), func(c *fiber.Ctx) error {
		id, err := GetUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "username": GetUsername(c)})
	})
	app.Get("/admin", a.Required(), a.Admin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/ws", a.WebSocket(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequiredAndAdmin(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	app := authApp(a)

	member, err := a.IssueToken(&models.User{ID: 7, Username: "amina"})
	require.NoError(t, err)
	admin, err := a.IssueToken(&models.User{ID: 1, Username: "root", IsAdmin: true})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", "garbage"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/me", member))

	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", member))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", admin))

	other := NewAuth("other-secret", time.Hour)
	forged, err := other.IssueToken(&models.User{ID: 1, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/admin", forged))
}

func TestExpiredAndMissingExp(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	app := authApp(a)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	s, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", s))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 7})
	s, err = noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", s))
}

func TestWebSocketTokenFromQuery(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	app := authApp(a)

	token, err := a.IssueToken(&models.User{ID: 3, Username: "yusuf"})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/ws", ""))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/ws?token="+token, ""))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/ws", token))
}
