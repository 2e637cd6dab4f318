package admin

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/middleware"
	"muslimlife/utils"
)

type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// GetUsers returns users with pagination and an optional ?search=
// GET /api/admin/users
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	page, err := h.Users.List(c.UserContext(), c.Query("search"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"users": page.Users,
		"total": page.Total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// GetUser returns a single user by ID
// GET /api/admin/users/:id
func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.Users.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"user": user})
}

// SetUserAdmin grants or revokes admin rights
// PUT /api/admin/users/:id/admin
func (h *Handler) SetUserAdmin(c *fiber.Ctx) error {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req SetAdminRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return h.fail(c, err)
	}

	user, err := h.Users.SetAdmin(c.UserContext(), actorID, id, *req.IsAdmin)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Infow("admin flag changed", "user_id", id, "is_admin", user.IsAdmin, "admin_id", actorID)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"user": user})
}

// ResetUserPassword resets a user's password
// POST /api/admin/users/:id/reset-password
func (h *Handler) ResetUserPassword(c *fiber.Ctx) error {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req ResetPasswordRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.Users.ResetPassword(c.UserContext(), id, req.NewPassword); err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Password reset successfully"})
}

// DeleteUser deletes a non-admin user
// DELETE /api/admin/users/:id
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Users.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "User deleted successfully"})
}
