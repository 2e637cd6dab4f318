// handlers/communities.go - Community HTTP handlers
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/models"
	"muslimlife/utils"
)

type CreateCommunityRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type JoinCommunityRequest struct {
	InviteCode string `json:"invite_code" validate:"required,max=12"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

type SetVisibilityRequest struct {
	HideScore *bool `json:"hide_score" validate:"required"`
}

// ================== COMMUNITY CRUD ENDPOINTS ==================

// CreateCommunity creates a community with the caller as admin
// POST /api/communities
func (h *Handler) CreateCommunity(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req CreateCommunityRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	community, err := h.Communities.Create(c.UserContext(), req.Name, req.Description, id)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Infow("community created", "community_id", community.ID, "user_id", id)
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{
		"message":   "Community created successfully",
		"community": community,
	})
}

// GetMyCommunities lists the caller's communities
// GET /api/communities
func (h *Handler) GetMyCommunities(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communities, err := h.Communities.ListForUser(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"communities": communities})
}

// GetCommunity returns one community the caller belongs to
// GET /api/communities/:id
func (h *Handler) GetCommunity(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	community, err := h.Communities.Get(c.UserContext(), communityID, id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"community": community})
}

// ================== MEMBERSHIP ENDPOINTS ==================

// JoinCommunity joins by invite code
// POST /api/communities/join
func (h *Handler) JoinCommunity(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req JoinCommunityRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	community, err := h.Communities.Join(c.UserContext(), id, req.InviteCode)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"message":   "Joined community",
		"community": community,
	})
}

// LeaveCommunity removes the caller's membership
// POST /api/communities/:id/leave
func (h *Handler) LeaveCommunity(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Communities.Leave(c.UserContext(), communityID, id); err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Left community"})
}

// GetCommunityMembers lists members in join order
// GET /api/communities/:id/members
func (h *Handler) GetCommunityMembers(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	members, err := h.Communities.Members(c.UserContext(), communityID, id)
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(members))
	for _, m := range members {
		entry := fiber.Map{
			"user_id":    m.UserID,
			"role":       m.Role,
			"hide_score": m.HideScore,
			"joined_at":  m.JoinedAt,
		}
		if m.User != nil {
			entry["username"] = m.User.Username
			entry["display_name"] = m.User.DisplayName
			entry["avatar"] = m.User.Avatar
		}
		out = append(out, entry)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"members": out, "count": len(out)})
}

// RemoveCommunityMember removes another member (admin only)
// DELETE /api/communities/:id/members/:userId
func (h *Handler) RemoveCommunityMember(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	memberID, err := utils.ParamUint(c, "userId")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Communities.RemoveMember(c.UserContext(), communityID, id, memberID); err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Member removed"})
}

// SetCommunityRole promotes or demotes a member (admin only)
// PUT /api/communities/:id/members/:userId/role
func (h *Handler) SetCommunityRole(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	memberID, err := utils.ParamUint(c, "userId")
	if err != nil {
		return h.fail(c, err)
	}
	var req SetRoleRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.Communities.SetRole(c.UserContext(), communityID, id, memberID, models.CommunityRole(req.Role)); err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Role updated"})
}

// SetScoreVisibility hides or shows the caller's score to other members
// PUT /api/communities/:id/visibility
func (h *Handler) SetScoreVisibility(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	communityID, err := utils.ParamUint(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req SetVisibilityRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.Communities.SetScoreVisibility(c.UserContext(), communityID, id, *req.HideScore); err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"hide_score": *req.HideScore})
}
