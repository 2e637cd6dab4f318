// models/achievement.go
package models

import "time"

type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

// Achievement is an admin-defined milestone. Clients never write these rows.
type Achievement struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Title            string          `gorm:"not null;size:120" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	RequirementType  string          `gorm:"not null;size:50;index" json:"requirement_type"` // prayers_logged, quran_pages, quizzes_completed, ...
	RequirementValue int             `gorm:"not null;default:1" json:"requirement_value"`
	Points           int             `gorm:"not null;default:0" json:"points"`
	Tier             AchievementTier `gorm:"not null;size:20;default:'bronze'" json:"tier"`
	Category         string          `gorm:"size:50;index" json:"category"` // worship, knowledge, wellness, community
	Icon             string          `gorm:"size:50" json:"icon"`
	OrderIndex       int             `gorm:"default:0" json:"order_index"`
	IsActive         bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// UserAchievement is written once, the first time a requirement is met.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// AchievementProgress is the running counter toward RequirementValue.
type AchievementProgress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement_progress" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement_progress" json:"achievement_id"`
	CurrentValue  int       `gorm:"not null;default:0" json:"current_value"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

func (AchievementProgress) TableName() string {
	return "achievement_progress"
}
