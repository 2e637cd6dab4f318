// services/community.go - Community membership and leaderboard
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"muslimlife/models"
)

type CommunityService struct {
	db *gorm.DB
}

func NewCommunityService(db *gorm.DB) *CommunityService {
	return &CommunityService{db: db}
}

// ================== COMMUNITY CRUD ==================

// Create makes a community with the creator as its first admin.
func (s *CommunityService) Create(ctx context.Context, name, description string, creatorID uint) (*models.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("community name is required")
	}

	community := &models.Community{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := uniqueInviteCode(tx)
		if err != nil {
			return err
		}
		community.InviteCode = code

		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Create(&models.CommunityMember{
			CommunityID: community.ID,
			UserID:      creatorID,
			Role:        models.CommunityRoleAdmin,
			JoinedAt:    time.Now(),
		}).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "create community")
	}
	return community, nil
}

// Get returns a community the caller belongs to.
func (s *CommunityService) Get(ctx context.Context, communityID, userID uint) (*models.Community, error) {
	if _, err := s.membership(ctx, communityID, userID); err != nil {
		return nil, err
	}
	var c models.Community
	if err := s.db.WithContext(ctx).First(&c, communityID).Error; err != nil {
		return nil, notFound(err, "find community")
	}
	return &c, nil
}

// ListForUser returns every community the user is a member of.
func (s *CommunityService) ListForUser(ctx context.Context, userID uint) ([]models.Community, error) {
	var rows []models.Community
	err := s.db.WithContext(ctx).
		Joins("JOIN community_members ON community_members.community_id = communities.id").
		Where("community_members.user_id = ?", userID).
		Order("communities.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list communities")
	}
	return rows, nil
}

// ================== MEMBERSHIP ==================

// Join adds the user through an invite code.
func (s *CommunityService) Join(ctx context.Context, userID uint, inviteCode string) (*models.Community, error) {
	var c models.Community
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if err := s.db.WithContext(ctx).Where("invite_code = ?", code).First(&c).Error; err != nil {
		return nil, notFound(err, "community not found for invite code")
	}

	if _, err := s.membership(ctx, c.ID, userID); err == nil {
		return nil, errors.Wrap(ErrConflict, "already a member of this community")
	}

	if err := s.db.WithContext(ctx).Create(&models.CommunityMember{
		CommunityID: c.ID,
		UserID:      userID,
		Role:        models.CommunityRoleMember,
		JoinedAt:    time.Now(),
	}).Error; err != nil {
		return nil, errors.Wrap(err, "join community")
	}
	return &c, nil
}

// Leave deletes the caller's membership. The last admin cannot leave while
// other members remain.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID uint) error {
	member, err := s.membership(ctx, communityID, userID)
	if err != nil {
		return err
	}

	if member.Role == models.CommunityRoleAdmin {
		var admins, total int64
		s.db.WithContext(ctx).Model(&models.CommunityMember{}).
			Where("community_id = ? AND role = ?", communityID, models.CommunityRoleAdmin).Count(&admins)
		s.db.WithContext(ctx).Model(&models.CommunityMember{}).
			Where("community_id = ?", communityID).Count(&total)
		if admins == 1 && total > 1 {
			return errors.Wrap(ErrConflict, "promote another admin before leaving")
		}
	}

	return errors.Wrap(s.db.WithContext(ctx).Delete(member).Error, "leave community")
}

// RemoveMember deletes another member (admins only).
func (s *CommunityService) RemoveMember(ctx context.Context, communityID, adminID, memberID uint) error {
	if err := s.requireAdmin(ctx, communityID, adminID); err != nil {
		return err
	}
	if adminID == memberID {
		return invalid("use leave to remove yourself")
	}

	target, err := s.membership(ctx, communityID, memberID)
	if err != nil {
		return err
	}
	return errors.Wrap(s.db.WithContext(ctx).Delete(target).Error, "remove member")
}

// SetRole promotes or demotes a member (admins only).
func (s *CommunityService) SetRole(ctx context.Context, communityID, adminID, memberID uint, role models.CommunityRole) error {
	if role != models.CommunityRoleAdmin && role != models.CommunityRoleMember {
		return invalid("unknown role %q", role)
	}
	if err := s.requireAdmin(ctx, communityID, adminID); err != nil {
		return err
	}
	target, err := s.membership(ctx, communityID, memberID)
	if err != nil {
		return err
	}
	if adminID == memberID && role == models.CommunityRoleMember {
		var admins int64
		s.db.WithContext(ctx).Model(&models.CommunityMember{}).
			Where("community_id = ? AND role = ?", communityID, models.CommunityRoleAdmin).Count(&admins)
		if admins <= 1 {
			return errors.Wrap(ErrConflict, "a community needs at least one admin")
		}
	}
	return errors.Wrap(s.db.WithContext(ctx).Model(target).Update("role", role).Error, "update role")
}

// SetScoreVisibility toggles whether the caller's score is shown to others.
func (s *CommunityService) SetScoreVisibility(ctx context.Context, communityID, userID uint, hide bool) error {
	member, err := s.membership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	return errors.Wrap(s.db.WithContext(ctx).Model(member).Update("hide_score", hide).Error, "update visibility")
}

// ================== MEMBERS & LEADERBOARD ==================

// Members returns the members with their users in join order.
func (s *CommunityService) Members(ctx context.Context, communityID, viewerID uint) ([]models.CommunityMember, error) {
	if _, err := s.membership(ctx, communityID, viewerID); err != nil {
		return nil, err
	}
	var members []models.CommunityMember
	err := s.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Preload("User").
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, errors.Wrap(err, "list members")
	}
	return members, nil
}

// Leaderboard ranks the community's members by their total points.
func (s *CommunityService) Leaderboard(ctx context.Context, communityID, viewerID uint) ([]RankedEntry, error) {
	members, err := s.Members(ctx, communityID, viewerID)
	if err != nil {
		return nil, err
	}

	entries := make([]ScoreEntry, 0, len(members))
	for _, m := range members {
		e := ScoreEntry{UserID: m.UserID, Role: m.Role, HideScore: m.HideScore}
		if m.User != nil {
			e.Username = m.User.Username
			e.DisplayName = m.User.DisplayName
			e.Avatar = m.User.Avatar
			e.Score = m.User.TotalPoints
		}
		entries = append(entries, e)
	}
	return RankEntries(entries, viewerID), nil
}

// ================== HELPERS ==================

func (s *CommunityService) membership(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error) {
	var m models.CommunityMember
	err := s.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if err != nil {
		return nil, notFound(err, "not a member of this community")
	}
	return &m, nil
}

func (s *CommunityService) requireAdmin(ctx context.Context, communityID, userID uint) error {
	m, err := s.membership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if m.Role != models.CommunityRoleAdmin {
		return errors.Wrap(ErrForbidden, "only community admins can do this")
	}
	return nil
}

// uniqueInviteCode draws 8-character codes until one is unused.
func uniqueInviteCode(tx *gorm.DB) (string, error) {
	for i := 0; i < 10; i++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		var count int64
		if err := tx.Model(&models.Community{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.Wrap(ErrConflict, "could not allocate invite code")
}
