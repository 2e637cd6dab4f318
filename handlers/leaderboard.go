// handlers/leaderboard.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/services"
	"muslimlife/utils"
)

// GetLeaderboard returns the global leaderboard
// GET /api/leaderboard?limit=100
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := h.Leaderboard.Top(c.UserContext(), id, utils.QueryInt(c, "limit", 100))
	if err != nil {
		return h.fail(c, err)
	}
	return leaderboardResponse(c, entries)
}

// GetCommunityLeaderboard ranks one community's members
// GET /api/communities/:id/leaderboard
func (h *Handler) GetCommunityLeaderboard(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := h.Communities.Leaderboard(c.UserContext(), communityID, id)
	if err != nil {
		return h.fail(c, err)
	}
	return leaderboardResponse(c, entries)
}

func leaderboardResponse(c *fiber.Ctx, entries []services.RankedEntry) error {
	podium := make([]services.RankedEntry, 0, 3)
	var viewer *services.RankedEntry
	for i := range entries {
		if entries[i].Podium {
			podium = append(podium, entries[i])
		}
		if entries[i].IsViewer {
			viewer = &entries[i]
		}
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"leaderboard": entries,
		"podium":      podium,
		"me":          viewer,
		"count":       len(entries),
	})
}
