// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Username    string `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `gorm:"size:100" json:"display_name"`
	Avatar      string `json:"avatar"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`

	// Points earned from unlocked achievements; the community leaderboard score.
	TotalPoints int `gorm:"default:0;index" json:"total_points"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}
