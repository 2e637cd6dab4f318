package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/logging"
	"muslimlife/middleware"
	"muslimlife/services"
	"muslimlife/testutil"
)

func TestFailMapsErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.Wrap(services.ErrInvalidInput, "bad habit"), fiber.StatusBadRequest},
		{errors.Wrap(services.ErrNotFound, "quiz"), fiber.StatusNotFound},
		{services.ErrForbidden, fiber.StatusForbidden},
		{errors.Wrap(services.ErrConflict, "already a member"), fiber.StatusConflict},
		{errors.Wrap(services.ErrUnavailable, "quota"), fiber.StatusBadGateway},
		{context.DeadlineExceeded, fiber.StatusGatewayTimeout},
		{fiber.NewError(fiber.StatusUnauthorized, "User not authenticated"), fiber.StatusUnauthorized},
		{errors.New("db exploded"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return Fail(c, logging.Nop(), tt.err) })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.err.Error())

		body := decode(t, resp.Body)
		assert.Equal(t, false, body["success"])
		if tt.status == fiber.StatusInternalServerError {
			assert.Equal(t, "Internal server error", body["error"])
		}
	}
}

type goalsFixture struct {
	app   *fiber.App
	token string
}

func newGoalsFixture(t *testing.T) goalsFixture {
	t.Helper()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "amina")
	auth := middleware.NewAuth("test-secret", time.Hour)

	h := &Handler{
		Log:   logging.Nop(),
		Auth:  auth,
		Goals: services.NewGoalTracker(db, logging.Nop(), nil),
	}
	app := fiber.New()
	g := app.Group("/api/goals", auth.Required())
	g.Get("/", h.GetGoals)
	g.Get("/habits", h.GetHabits)
	g.Post("/:habit/step", h.StepGoal)
	g.Post("/:habit/toggle", h.ToggleGoal)
	g.Post("/:habit/log", h.LogGoal)

	token, err := auth.IssueToken(user)
	require.NoError(t, err)
	return goalsFixture{app: app, token: token}
}

func (f goalsFixture) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode, decode(t, resp.Body)
}

func decode(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return out
}

func goalTarget(t *testing.T, body map[string]interface{}, habit string) (float64, bool) {
	t.Helper()
	goals, ok := body["goals"].([]interface{})
	require.True(t, ok, "goals missing from %v", body)
	for _, g := range goals {
		m := g.(map[string]interface{})
		if m["habit"] == habit {
			return m["target"].(float64), m["enabled"].(bool)
		}
	}
	t.Fatalf("habit %s not in response", habit)
	return 0, false
}

func TestToggleGoalRestoresDefault(t *testing.T) {
	f := newGoalsFixture(t)

	status, body := f.do(t, "POST", "/api/goals/dhikr/step", `{"direction":1}`)
	require.Equal(t, fiber.StatusOK, status)
	target, _ := goalTarget(t, body, "dhikr")
	assert.Equal(t, 132.0, target)

	status, body = f.do(t, "POST", "/api/goals/dhikr/toggle", `{"enabled":false}`)
	require.Equal(t, fiber.StatusOK, status)
	target, enabled := goalTarget(t, body, "dhikr")
	assert.Zero(t, target)
	assert.False(t, enabled)

	status, _ = f.do(t, "POST", "/api/goals/dhikr/step", `{"direction":1}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = f.do(t, "POST", "/api/goals/dhikr/toggle", `{"enabled":true}`)
	require.Equal(t, fiber.StatusOK, status)
	target, enabled = goalTarget(t, body, "dhikr")
	assert.Equal(t, 99.0, target)
	assert.True(t, enabled)
}

func TestGoalRequestValidation(t *testing.T) {
	f := newGoalsFixture(t)

	status, _ := f.do(t, "POST", "/api/goals/dhikr/step", `{"direction":2}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = f.do(t, "POST", "/api/goals/tahajjud/step", `{"direction":1}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = f.do(t, "POST", "/api/goals/dhikr/toggle", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := f.do(t, "POST", "/api/goals/water_glasses/log", `{"amount":3}`)
	require.Equal(t, fiber.StatusOK, status)
	score := body["score"].(map[string]interface{})
	assert.Greater(t, score["amanah"].(float64), 0.0)

	status, body = f.do(t, "GET", "/api/goals/habits", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["habits"], len(services.HabitCatalogue))
}
