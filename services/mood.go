// services/mood.go - Mood logging and emotional support
package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"muslimlife/models"
)

// Support is the reminder shown for a logged mood.
type Support struct {
	Mood      string `json:"mood"`
	Title     string `json:"title"`
	Reminder  string `json:"reminder"`
	Reference string `json:"reference"`
	Action    string `json:"action"`
}

var moodSupport = map[string]Support{
	"happy": {
		Title:     "Gratitude multiplies blessings",
		Reminder:  "If you are grateful, I will surely increase you.",
		Reference: "Quran 14:7",
		Action:    "Say Alhamdulillah and share your joy with someone.",
	},
	"grateful": {
		Title:     "A thankful heart",
		Reminder:  "So remember Me; I will remember you. And be grateful to Me.",
		Reference: "Quran 2:152",
		Action:    "Write down three blessings from today.",
	},
	"calm": {
		Title:     "Hearts find rest",
		Reminder:  "Verily, in the remembrance of Allah do hearts find rest.",
		Reference: "Quran 13:28",
		Action:    "Keep the calm going with a few minutes of dhikr.",
	},
	"anxious": {
		Title:     "Trust in Allah",
		Reminder:  "And whoever relies upon Allah, then He is sufficient for him.",
		Reference: "Quran 65:3",
		Action:    "Make wudu and pray two rakat.",
	},
	"sad": {
		Title:     "Ease follows hardship",
		Reminder:  "For indeed, with hardship will be ease.",
		Reference: "Quran 94:5",
		Action:    "Talk to someone you trust and make dua.",
	},
	"angry": {
		Title:     "Restraint is strength",
		Reminder:  "The strong is not the one who overcomes people, but the one who controls himself while angry.",
		Reference: "Sahih al-Bukhari 6114",
		Action:    "Sit down, seek refuge in Allah and make wudu.",
	},
	"lonely": {
		Title:     "He is near",
		Reminder:  "And when My servants ask you concerning Me, indeed I am near.",
		Reference: "Quran 2:186",
		Action:    "Visit the masjid or reach out to your community.",
	},
	"stressed": {
		Title:     "No soul is burdened beyond its capacity",
		Reminder:  "Allah does not burden a soul beyond that it can bear.",
		Reference: "Quran 2:286",
		Action:    "Take a short walk and break the task into small steps.",
	},
}

// Moods lists the accepted mood names.
var Moods = []string{"happy", "grateful", "calm", "anxious", "sad", "angry", "lonely", "stressed"}

const (
	MinIntensity = 1
	MaxIntensity = 10
)

type MoodService struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	progress ProgressRecorder
}

func NewMoodService(db *gorm.DB, log *zap.SugaredLogger, progress ProgressRecorder) *MoodService {
	return &MoodService{db: db, log: log, progress: progress}
}

// Log appends a mood entry and counts it towards moods_logged.
func (s *MoodService) Log(ctx context.Context, userID uint, mood string, intensity int, note string) (*models.MoodEntry, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if _, ok := moodSupport[mood]; !ok {
		return nil, invalid("unknown mood %q", mood)
	}
	if intensity < MinIntensity || intensity > MaxIntensity {
		return nil, invalid("intensity must be between %d and %d", MinIntensity, MaxIntensity)
	}

	entry := &models.MoodEntry{UserID: userID, Mood: mood, Intensity: intensity, Note: note}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, errors.Wrap(err, "log mood")
	}

	if s.progress != nil {
		if _, err := s.progress.RecordProgress(ctx, userID, "moods_logged", 1); err != nil {
			s.log.Warnw("failed to record mood progress", "user_id", userID, "error", err)
		}
	}
	return entry, nil
}

// Recent returns the newest entries first.
func (s *MoodService) Recent(ctx context.Context, userID uint, limit int) ([]models.MoodEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var entries []models.MoodEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "list moods")
	}
	return entries, nil
}

type MoodSummary struct {
	Since        time.Time      `json:"since"`
	Entries      int            `json:"entries"`
	Counts       map[string]int `json:"counts"`
	AvgIntensity float64        `json:"average_intensity"`
	MostFrequent string         `json:"most_frequent,omitempty"`
}

// Summary counts entries per mood since the given time. Ties for the most
// frequent mood go to the earlier name in Moods.
func (s *MoodService) Summary(ctx context.Context, userID uint, since time.Time) (*MoodSummary, error) {
	var rows []struct {
		Mood  string
		Count int
		Total int
	}
	if err := s.db.WithContext(ctx).Model(&models.MoodEntry{}).
		Select("mood, COUNT(*) AS count, SUM(intensity) AS total").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("mood").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "summarize moods")
	}

	summary := &MoodSummary{Since: since, Counts: make(map[string]int, len(rows))}
	total := 0
	for _, r := range rows {
		summary.Counts[r.Mood] = r.Count
		summary.Entries += r.Count
		total += r.Total
	}
	if summary.Entries > 0 {
		summary.AvgIntensity = float64(total) / float64(summary.Entries)
	}

	best := 0
	for _, m := range Moods {
		if c := summary.Counts[m]; c > best {
			best = c
			summary.MostFrequent = m
		}
	}
	return summary, nil
}

// SupportFor returns the reminder for a mood.
func SupportFor(mood string) (Support, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	sup, ok := moodSupport[mood]
	if !ok {
		return Support{}, errors.Wrapf(ErrNotFound, "no support for mood %q", mood)
	}
	sup.Mood = mood
	return sup, nil
}
