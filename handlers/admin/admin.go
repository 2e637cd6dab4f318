// handlers/admin/admin.go - Admin-only endpoints
package admin

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"muslimlife/handlers"
	"muslimlife/importer"
	"muslimlife/services"
)

// Handler serves /api/admin. Every route runs behind Auth.Required and
// Auth.Admin.
type Handler struct {
	Log          *zap.SugaredLogger
	Users        *services.UserService
	Achievements *services.AchievementService
	Content      *services.ContentService
	Importer     *importer.Importer
	Cleanup      *services.CleanupService
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	return handlers.Fail(c, h.Log, err)
}
