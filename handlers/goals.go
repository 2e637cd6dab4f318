// handlers/goals.go - Iman Tracker endpoints
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/services"
	"muslimlife/utils"
)

type PatchGoalsRequest struct {
	Goals []services.GoalPatch `json:"goals" validate:"required,min=1,dive"`
}

type StepGoalRequest struct {
	Direction int `json:"direction" validate:"required,oneof=-1 1"`
}

type ToggleGoalRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type LogGoalRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

// GetGoals returns every habit counter with the current iman score
// GET /api/goals
func (h *Handler) GetGoals(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := h.Goals.Goals(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.snapshot(c, snap)
}

// PatchGoals applies several target/completed/enabled changes at once
// PATCH /api/goals
func (h *Handler) PatchGoals(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req PatchGoalsRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	snap, err := h.Goals.Update(c.UserContext(), id, req.Goals)
	if err != nil {
		return h.fail(c, err)
	}
	return h.snapshot(c, snap)
}

// StepGoal moves a target up or down by the habit's step
// POST /api/goals/:habit/step
func (h *Handler) StepGoal(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req StepGoalRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	snap, err := h.Goals.Step(c.UserContext(), id, c.Params("habit"), req.Direction)
	if err != nil {
		return h.fail(c, err)
	}
	return h.snapshot(c, snap)
}

// ToggleGoal switches a habit on or off
// POST /api/goals/:habit/toggle
func (h *Handler) ToggleGoal(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req ToggleGoalRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	snap, err := h.Goals.Toggle(c.UserContext(), id, c.Params("habit"), *req.Enabled)
	if err != nil {
		return h.fail(c, err)
	}
	return h.snapshot(c, snap)
}

// LogGoal records activity against a habit
// POST /api/goals/:habit/log
func (h *Handler) LogGoal(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req LogGoalRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	snap, err := h.Goals.LogActivity(c.UserContext(), id, c.Params("habit"), req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return h.snapshot(c, snap)
}

// GetScore returns only the iman score
// GET /api/goals/score
func (h *Handler) GetScore(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := h.Goals.Goals(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"score": snap.Score})
}

// GetHabits lists the habit catalogue with its bounds
// GET /api/goals/habits
func (h *Handler) GetHabits(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"habits": services.HabitCatalogue})
}

func (h *Handler) snapshot(c *fiber.Ctx, snap *services.ImanSnapshot) error {
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"goals":      snap.Goals,
		"score":      snap.Score,
		"updated_at": snap.UpdatedAt,
	})
}
