package admin

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/middleware"
	"muslimlife/models"
	"muslimlife/utils"
)

type CreateAchievementRequest struct {
	Title            string `json:"title" validate:"required,max=120"`
	Description      string `json:"description"`
	RequirementType  string `json:"requirement_type" validate:"required,max=50"`
	RequirementValue int    `json:"requirement_value" validate:"min=0"`
	Points           int    `json:"points" validate:"min=0"`
	Tier             string `json:"tier" validate:"omitempty,oneof=bronze silver gold platinum"`
	Category         string `json:"category" validate:"max=50"`
	Icon             string `json:"icon" validate:"max=50"`
	OrderIndex       int    `json:"order_index"`
	IsActive         *bool  `json:"is_active"`
}

// GrantProgressRequest credits progress by hand, e.g. to repair a user's
// counters after a failed import.
type GrantProgressRequest struct {
	RequirementType string `json:"requirement_type" validate:"required,max=50"`
	Delta           int    `json:"delta" validate:"required,min=1,max=10000"`
}

// UpdateAchievementRequest only touches the fields that are present.
type UpdateAchievementRequest struct {
	Title            *string `json:"title" validate:"omitempty,max=120"`
	Description      *string `json:"description"`
	RequirementType  *string `json:"requirement_type" validate:"omitempty,max=50"`
	RequirementValue *int    `json:"requirement_value" validate:"omitempty,min=0"`
	Points           *int    `json:"points" validate:"omitempty,min=0"`
	Tier             *string `json:"tier" validate:"omitempty,oneof=bronze silver gold platinum"`
	Category         *string `json:"category" validate:"omitempty,max=50"`
	Icon             *string `json:"icon" validate:"omitempty,max=50"`
	OrderIndex       *int    `json:"order_index"`
	IsActive         *bool   `json:"is_active"`
}

func (r UpdateAchievementRequest) patch() map[string]interface{} {
	p := map[string]interface{}{}
	if r.Title != nil {
		p["title"] = *r.Title
	}
	if r.Description != nil {
		p["description"] = *r.Description
	}
	if r.RequirementType != nil {
		p["requirement_type"] = *r.RequirementType
	}
	if r.RequirementValue != nil {
		p["requirement_value"] = *r.RequirementValue
	}
	if r.Points != nil {
		p["points"] = *r.Points
	}
	if r.Tier != nil {
		p["tier"] = *r.Tier
	}
	if r.Category != nil {
		p["category"] = *r.Category
	}
	if r.Icon != nil {
		p["icon"] = *r.Icon
	}
	if r.OrderIndex != nil {
		p["order_index"] = *r.OrderIndex
	}
	if r.IsActive != nil {
		p["is_active"] = *r.IsActive
	}
	return p
}

// GetAchievements returns all achievements, inactive included
// GET /api/admin/achievements
func (h *Handler) GetAchievements(c *fiber.Ctx) error {
	achievements, err := h.Achievements.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"achievements": achievements})
}

// CreateAchievement creates a new achievement
// POST /api/admin/achievements
func (h *Handler) CreateAchievement(c *fiber.Ctx) error {
	var req CreateAchievementRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	a := &models.Achievement{
		Title:            req.Title,
		Description:      req.Description,
		RequirementType:  req.RequirementType,
		RequirementValue: req.RequirementValue,
		Points:           req.Points,
		Tier:             models.AchievementTier(req.Tier),
		Category:         req.Category,
		Icon:             req.Icon,
		OrderIndex:       req.OrderIndex,
		IsActive:         req.IsActive == nil || *req.IsActive,
	}
	if a.Tier == "" {
		a.Tier = models.TierBronze
	}
	if err := h.Achievements.Create(c.UserContext(), a); err != nil {
		return h.fail(c, err)
	}

	adminID, _ := middleware.GetUserID(c)
	h.Log.Infow("achievement created", "achievement_id", a.ID, "admin_id", adminID)
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"achievement": a})
}

// UpdateAchievement updates an existing achievement
// PUT /api/admin/achievements/:id
func (h *Handler) UpdateAchievement(c *fiber.Ctx) error {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req UpdateAchievementRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	a, err := h.Achievements.Update(c.UserContext(), id, req.patch())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"achievement": a})
}

// DeleteAchievement deletes an achievement
// DELETE /api/admin/achievements/:id
func (h *Handler) DeleteAchievement(c *fiber.Ctx) error {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Achievements.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}

	adminID, _ := middleware.GetUserID(c)
	h.Log.Infow("achievement deleted", "achievement_id", id, "admin_id", adminID)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Achievement deleted successfully"})
}

// GrantProgress adds progress for a user towards every achievement of a
// requirement type
// POST /api/admin/users/:id/progress
func (h *Handler) GrantProgress(c *fiber.Ctx) error {
	userID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req GrantProgressRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	if _, err := h.Users.Get(c.UserContext(), userID); err != nil {
		return h.fail(c, err)
	}

	unlocked, err := h.Achievements.RecordProgress(c.UserContext(), userID, req.RequirementType, req.Delta)
	if err != nil {
		return h.fail(c, err)
	}

	adminID, _ := middleware.GetUserID(c)
	h.Log.Infow("achievement progress granted", "user_id", userID, "requirement_type", req.RequirementType,
		"delta", req.Delta, "unlocked", len(unlocked), "admin_id", adminID)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"unlocked": unlocked})
}
