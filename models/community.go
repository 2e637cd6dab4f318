// models/community.go
package models

import "time"

type CommunityRole string

const (
	CommunityRoleAdmin  CommunityRole = "admin"
	CommunityRoleMember CommunityRole = "member"
)

type Community struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	Name        string            `json:"name" gorm:"not null;size:100"`
	Description string            `json:"description" gorm:"type:text"`
	InviteCode  string            `json:"invite_code" gorm:"uniqueIndex;size:12"`
	CreatorID   uint              `json:"creator_id" gorm:"not null;index"`
	Members     []CommunityMember `json:"members,omitempty" gorm:"foreignKey:CommunityID"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CommunityMember rows are created on join and deleted on leave or removal.
type CommunityMember struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	CommunityID uint          `json:"community_id" gorm:"not null;uniqueIndex:idx_community_member"`
	UserID      uint          `json:"user_id" gorm:"not null;uniqueIndex:idx_community_member;index"`
	User        *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role        CommunityRole `json:"role" gorm:"not null;size:20;default:'member'"`
	HideScore   bool          `json:"hide_score" gorm:"default:false"`
	JoinedAt    time.Time     `json:"joined_at" gorm:"not null"`
}

func (Community) TableName() string {
	return "communities"
}

func (CommunityMember) TableName() string {
	return "community_members"
}
