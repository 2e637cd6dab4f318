// database/migrate.go - Database Migration Runner
package database

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"muslimlife/models"
)

// AllModels is every table owned by this service, in dependency order.
var AllModels = []interface{}{
	&models.User{},
	&models.Achievement{},
	&models.UserAchievement{},
	&models.AchievementProgress{},
	&models.Community{},
	&models.CommunityMember{},
	&models.UserGoal{},
	&models.PrayerLog{},
	&models.MoodEntry{},
	&models.Quiz{},
	&models.QuizQuestion{},
	&models.QuizAttempt{},
	&models.Lecture{},
	&models.Recitation{},
	&models.QuranVerse{},
	&models.Hadith{},
}

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB, log *zap.SugaredLogger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(AllModels...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	createIndexes(db, log)

	log.Info("migrations completed")
	return nil
}

// createIndexes adds the read-path indexes the tag-level indexes do not cover.
func createIndexes(db *gorm.DB, log *zap.SugaredLogger) {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_achievements_active_order ON achievements(is_active, order_index)",
		"CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_achievement_progress_user ON achievement_progress(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_community_members_community ON community_members(community_id, joined_at)",
		"CREATE INDEX IF NOT EXISTS idx_user_goals_user ON user_goals(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_prayer_logs_user_date ON prayer_logs(user_id, date)",
		"CREATE INDEX IF NOT EXISTS idx_mood_entries_user_created ON mood_entries(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_questions_quiz_order ON quiz_questions(quiz_slug, order_index)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user_quiz ON quiz_attempts(user_id, quiz_slug)",
		"CREATE INDEX IF NOT EXISTS idx_lectures_category_order ON lectures(category_id, order_index)",
		"CREATE INDEX IF NOT EXISTS idx_recitations_category_order ON recitations(category_id, order_index)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			log.Warnw("index creation failed", "stmt", stmt, "error", err)
		}
	}
}
