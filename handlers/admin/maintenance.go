package admin

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/utils"
)

// ResetGoals runs the daily goal reset now
// POST /api/admin/maintenance/reset-goals
func (h *Handler) ResetGoals(c *fiber.Ctx) error {
	n, err := h.Cleanup.ResetGoals()
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"rows": n})
}

// SweepCaches drops expired cache and rate limiter entries now
// POST /api/admin/maintenance/sweep
func (h *Handler) SweepCaches(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"removed": h.Cleanup.SweepCaches()})
}
