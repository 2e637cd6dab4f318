// handlers/content.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/utils"
)

// GetLectures lists lectures, optionally for one ?category=
// GET /api/content/lectures
func (h *Handler) GetLectures(c *fiber.Ctx) error {
	lectures, err := h.Content.Lectures(c.UserContext(), c.Query("category"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"lectures": lectures, "count": len(lectures)})
}

// GetRecitations lists recitations, optionally for one ?category=
// GET /api/content/recitations
func (h *Handler) GetRecitations(c *fiber.Ctx) error {
	recitations, err := h.Content.Recitations(c.UserContext(), c.Query("category"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"recitations": recitations, "count": len(recitations)})
}
