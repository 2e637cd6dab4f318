// services/prayer.go - Daily prayer log and streaks
package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"muslimlife/models"
)

const DateLayout = "2006-01-02"

// MaxPrayerBackfill is how many days back a prayer may still be marked.
const MaxPrayerBackfill = 7

type PrayerService struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	progress ProgressRecorder
	activity ActivityLogger
	now      func() time.Time
}

func NewPrayerService(db *gorm.DB, log *zap.SugaredLogger, progress ProgressRecorder, activity ActivityLogger) *PrayerService {
	return &PrayerService{db: db, log: log, progress: progress, activity: activity, now: time.Now}
}

// SetClock replaces the time source.
func (s *PrayerService) SetClock(now func() time.Time) {
	s.now = now
}

func validPrayer(p models.Prayer) bool {
	for _, d := range models.DailyPrayers {
		if d == p {
			return true
		}
	}
	return false
}

// Mark records a prayer for the day. Marking the same prayer twice is a
// no-op and reports created=false. Dates run from MaxPrayerBackfill days ago
// to tomorrow (UTC), which leaves room for clients ahead of UTC. Every new
// mark counts towards prayers_logged; only marks for today feed the prayers
// habit.
func (s *PrayerService) Mark(ctx context.Context, userID uint, date string, prayer models.Prayer, onTime bool) (created bool, err error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return false, invalid("date must be YYYY-MM-DD, got %q", date)
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today.AddDate(0, 0, 1)) || day.Before(today.AddDate(0, 0, -MaxPrayerBackfill)) {
		return false, invalid("date %s is outside the last %d days", date, MaxPrayerBackfill)
	}
	if !validPrayer(prayer) {
		return false, invalid("unknown prayer %q", prayer)
	}

	db := s.db.WithContext(ctx)
	entry := models.PrayerLog{
		UserID:   userID,
		Date:     date,
		Prayer:   prayer,
		PrayedAt: time.Now().UTC(),
		OnTime:   onTime,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "mark prayer")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if !onTime {
		// a false bool is dropped in favour of the column default on insert
		if err := db.Model(&models.PrayerLog{}).Where("id = ?", entry.ID).Update("on_time", false).Error; err != nil {
			return true, errors.Wrap(err, "mark prayer late")
		}
	}

	if s.progress != nil {
		if _, err := s.progress.RecordProgress(ctx, userID, "prayers_logged", 1); err != nil {
			s.log.Warnw("failed to record prayer progress", "user_id", userID, "error", err)
		}
	}
	if s.activity != nil && date == today.Format(DateLayout) {
		if _, err := s.activity.LogActivity(ctx, userID, "prayers", 1); err != nil {
			s.log.Warnw("failed to log prayer activity", "user_id", userID, "error", err)
		}
	}
	return true, nil
}

type PrayerStatus struct {
	Prayer   models.Prayer `json:"prayer"`
	Done     bool          `json:"done"`
	OnTime   bool          `json:"on_time"`
	PrayedAt *time.Time    `json:"prayed_at,omitempty"`
}

type PrayerDay struct {
	Date    string         `json:"date"`
	Prayers []PrayerStatus `json:"prayers"`
	Count   int            `json:"count"`
}

// Day lists the five prayers for a date with their status.
func (s *PrayerService) Day(ctx context.Context, userID uint, date string) (*PrayerDay, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, invalid("date must be YYYY-MM-DD, got %q", date)
	}
	var logs []models.PrayerLog
	if err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "load prayers")
	}
	byPrayer := make(map[models.Prayer]models.PrayerLog, len(logs))
	for _, l := range logs {
		byPrayer[l.Prayer] = l
	}

	day := &PrayerDay{Date: date, Prayers: make([]PrayerStatus, 0, len(models.DailyPrayers))}
	for _, p := range models.DailyPrayers {
		st := PrayerStatus{Prayer: p}
		if l, ok := byPrayer[p]; ok {
			at := l.PrayedAt
			st.Done = true
			st.OnTime = l.OnTime
			st.PrayedAt = &at
			day.Count++
		}
		day.Prayers = append(day.Prayers, st)
	}
	return day, nil
}

type PrayerStreak struct {
	Current      int    `json:"current"`
	LastComplete string `json:"last_complete,omitempty"`
}

// Streak counts consecutive complete days ending today, or yesterday when
// today is not complete yet.
func (s *PrayerService) Streak(ctx context.Context, userID uint, today time.Time) (*PrayerStreak, error) {
	var dates []string
	if err := s.db.WithContext(ctx).Model(&models.PrayerLog{}).
		Select("date").
		Where("user_id = ?", userID).
		Group("date").
		Having("COUNT(*) >= ?", len(models.DailyPrayers)).
		Pluck("date", &dates).Error; err != nil {
		return nil, errors.Wrap(err, "load complete days")
	}

	complete := make(map[string]bool, len(dates))
	for _, d := range dates {
		complete[d] = true
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !complete[day.Format(DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := &PrayerStreak{}
	for complete[day.Format(DateLayout)] {
		if streak.Current == 0 {
			streak.LastComplete = day.Format(DateLayout)
		}
		streak.Current++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}
