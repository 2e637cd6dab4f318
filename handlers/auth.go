// handlers/auth.go
package handlers

import (
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"muslimlife/models"
	"muslimlife/services"
	"muslimlife/utils"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"max=100"`
	Avatar      string `json:"avatar" validate:"max=255"`
}

type UserInfo struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	IsAdmin     bool      `json:"is_admin"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
}

func userInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		IsAdmin:     u.IsAdmin,
		TotalPoints: u.TotalPoints,
		CreatedAt:   u.CreatedAt,
	}
}

// Register creates a new user account
// POST /api/auth/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, err := h.Users.Register(c.UserContext(), req.Email, req.Username, req.Password, req.DisplayName)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondWithToken(c, fiber.StatusCreated, user)
}

// Login authenticates by username or email
// POST /api/auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, err := h.Users.Authenticate(c.UserContext(), req.Username, req.Password)
	if stderrors.Is(err, services.ErrForbidden) {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondWithToken(c, fiber.StatusOK, user)
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, err := h.Auth.IssueToken(user)
	if err != nil {
		h.Log.Errorw("failed to sign token", "user_id", user.ID, "error", err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	return utils.JSONSuccess(c, status, fiber.Map{
		"token": token,
		"user":  userInfo(user),
	})
}

// Me returns the authenticated user
// GET /api/users/me
func (h *Handler) Me(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.Users.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"user": userInfo(user)})
}

// UpdateMe changes the display name or avatar
// PATCH /api/users/me
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req UpdateProfileRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	user, err := h.Users.UpdateProfile(c.UserContext(), id, req.DisplayName, req.Avatar)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"user": userInfo(user)})
}
