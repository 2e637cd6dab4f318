// models/tracker.go - Iman Tracker rows (goals, prayers, moods)
package models

import "time"

type GoalCategory string

const (
	CategoryIbadah GoalCategory = "ibadah"
	CategoryIlm    GoalCategory = "ilm"
	CategoryAmanah GoalCategory = "amanah"
)

// UserGoal is one habit counter. Users overwrite Target freely; Completed
// counts today's activity and is reset daily.
type UserGoal struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	UserID    uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_user_goal"`
	Category  GoalCategory `json:"category" gorm:"not null;size:20;index"`
	Habit     string       `json:"habit" gorm:"not null;size:50;uniqueIndex:idx_user_goal"`
	Target    float64      `json:"target" gorm:"not null;default:0"`
	Completed float64      `json:"completed" gorm:"not null;default:0"`
	Enabled   bool         `json:"enabled" gorm:"not null;default:true"`
	// Logged is today's net logged amount and Credited its high-water mark,
	// the amount already reported as achievement progress.
	Logged    float64      `json:"-" gorm:"not null;default:0"`
	Credited  float64      `json:"-" gorm:"not null;default:0"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Prayer string

const (
	PrayerFajr    Prayer = "fajr"
	PrayerDhuhr   Prayer = "dhuhr"
	PrayerAsr     Prayer = "asr"
	PrayerMaghrib Prayer = "maghrib"
	PrayerIsha    Prayer = "isha"
)

// DailyPrayers in their order through the day.
var DailyPrayers = []Prayer{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

type PrayerLog struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_prayer_log"`
	Date     string    `json:"date" gorm:"not null;size:10;uniqueIndex:idx_prayer_log"` // YYYY-MM-DD in the user's day
	Prayer   Prayer    `json:"prayer" gorm:"not null;size:10;uniqueIndex:idx_prayer_log"`
	PrayedAt time.Time `json:"prayed_at" gorm:"not null"`
	OnTime   bool      `json:"on_time" gorm:"default:true"`
}

// MoodEntry is append-only.
type MoodEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Mood      string    `json:"mood" gorm:"not null;size:20"`
	Intensity int       `json:"intensity" gorm:"not null"`
	Note      string    `json:"note" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (UserGoal) TableName() string {
	return "user_goals"
}

func (PrayerLog) TableName() string {
	return "prayer_logs"
}

func (MoodEntry) TableName() string {
	return "mood_entries"
}
