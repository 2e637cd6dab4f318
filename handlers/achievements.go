// handlers/achievements.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/utils"
)

// GetAchievements returns the merged achievement board. ?refresh=true skips
// the cache.
// GET /api/achievements
func (h *Handler) GetAchievements(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}

	load := h.Achievements.Board
	if c.QueryBool("refresh") {
		load = h.Achievements.Refresh
	}
	board, err := load(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"achievements":     board.Items,
		"total":            board.Total,
		"unlocked":         board.UnlockedCount,
		"total_points":     board.TotalPoints,
		"next_achievement": board.Next,
		"fetched_at":       board.FetchedAt,
		"stale":            board.Stale,
	})
}
