// handlers/handlers.go - Shared handler dependencies and error mapping
package handlers

import (
	"context"
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"muslimlife/middleware"
	"muslimlife/services"
	"muslimlife/utils"
)

// Handler serves the user-facing API.
type Handler struct {
	Log          *zap.SugaredLogger
	Auth         *middleware.Auth
	Users        *services.UserService
	Achievements *services.AchievementService
	Goals        *services.GoalTracker
	Communities  *services.CommunityService
	Leaderboard  *services.GlobalLeaderboard
	Quizzes      *services.QuizService
	Moods        *services.MoodService
	Prayers      *services.PrayerService
	Content      *services.ContentService
}

// fail maps service errors onto HTTP statuses. Unexpected errors are logged
// and hidden behind a generic message.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	return Fail(c, h.Log, err)
}

// Fail is shared with the admin handlers.
func Fail(c *fiber.Ctx, log *zap.SugaredLogger, err error) error {
	var fe *fiber.Error
	switch {
	case stderrors.As(err, &fe):
		return utils.JSONError(c, fe.Code, fe.Message)
	case stderrors.Is(err, services.ErrInvalidInput):
		return utils.JSONError(c, fiber.StatusBadRequest, err.Error())
	case stderrors.Is(err, services.ErrNotFound):
		return utils.JSONError(c, fiber.StatusNotFound, err.Error())
	case stderrors.Is(err, services.ErrForbidden):
		return utils.JSONError(c, fiber.StatusForbidden, err.Error())
	case stderrors.Is(err, services.ErrConflict):
		return utils.JSONError(c, fiber.StatusConflict, err.Error())
	case stderrors.Is(err, services.ErrUnavailable):
		return utils.JSONError(c, fiber.StatusBadGateway, err.Error())
	case stderrors.Is(err, context.DeadlineExceeded):
		return utils.JSONError(c, fiber.StatusGatewayTimeout, "Request timed out")
	case stderrors.Is(err, context.Canceled):
		return utils.JSONError(c, fiber.StatusRequestTimeout, "Request cancelled")
	}

	log.Errorw("request error", "request_id", middleware.RequestID(c), "path", c.Path(), "error", err)
	return utils.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
}

// userID reads the authenticated user or fails the request.
func userID(c *fiber.Ctx) (uint, error) {
	return middleware.GetUserID(c)
}
