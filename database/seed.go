// database/seed.go - Default catalogue rows
package database

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"muslimlife/models"
)

// DefaultAchievements is the catalogue installed on an empty database.
var DefaultAchievements = []models.Achievement{
	{Title: "First Step", Description: "Log your first prayer", RequirementType: "prayers_logged", RequirementValue: 1, Points: 10, Tier: models.TierBronze, Category: "worship", Icon: "🕌", OrderIndex: 1},
	{Title: "Steadfast", Description: "Log 35 prayers", RequirementType: "prayers_logged", RequirementValue: 35, Points: 50, Tier: models.TierSilver, Category: "worship", Icon: "🌙", OrderIndex: 2},
	{Title: "Pillar Keeper", Description: "Log 150 prayers", RequirementType: "prayers_logged", RequirementValue: 150, Points: 150, Tier: models.TierGold, Category: "worship", Icon: "⭐", OrderIndex: 3},
	{Title: "Reciter", Description: "Read 20 pages of Quran", RequirementType: "quran_pages", RequirementValue: 20, Points: 40, Tier: models.TierBronze, Category: "worship", Icon: "📖", OrderIndex: 4},
	{Title: "Juz Complete", Description: "Read 604 pages of Quran", RequirementType: "quran_pages", RequirementValue: 604, Points: 300, Tier: models.TierPlatinum, Category: "worship", Icon: "📚", OrderIndex: 5},
	{Title: "Remembrance", Description: "Complete 1000 dhikr", RequirementType: "dhikr", RequirementValue: 1000, Points: 60, Tier: models.TierSilver, Category: "worship", Icon: "📿", OrderIndex: 6},
	{Title: "Seeker", Description: "Complete your first quiz", RequirementType: "quizzes_completed", RequirementValue: 1, Points: 10, Tier: models.TierBronze, Category: "knowledge", Icon: "❓", OrderIndex: 7},
	{Title: "Scholar", Description: "Complete 25 quizzes", RequirementType: "quizzes_completed", RequirementValue: 25, Points: 100, Tier: models.TierGold, Category: "knowledge", Icon: "🎓", OrderIndex: 8},
	{Title: "Flawless", Description: "Score 100% on a quiz", RequirementType: "perfect_quizzes", RequirementValue: 1, Points: 30, Tier: models.TierSilver, Category: "knowledge", Icon: "💯", OrderIndex: 9},
	{Title: "Listener", Description: "Watch 10 lectures", RequirementType: "lectures", RequirementValue: 10, Points: 40, Tier: models.TierBronze, Category: "knowledge", Icon: "🎧", OrderIndex: 10},
	{Title: "Active Body", Description: "Exercise for 300 minutes", RequirementType: "exercise_minutes", RequirementValue: 300, Points: 40, Tier: models.TierBronze, Category: "wellness", Icon: "🏃", OrderIndex: 11},
	{Title: "Hydrated", Description: "Drink 100 glasses of water", RequirementType: "water_glasses", RequirementValue: 100, Points: 30, Tier: models.TierBronze, Category: "wellness", Icon: "💧", OrderIndex: 12},
	{Title: "Self Aware", Description: "Log your mood 7 times", RequirementType: "moods_logged", RequirementValue: 7, Points: 20, Tier: models.TierBronze, Category: "wellness", Icon: "🧭", OrderIndex: 13},
}

// DefaultQuizzes mirrors the six categories the question bank ships with.
var DefaultQuizzes = []models.Quiz{
	{Slug: "quran", Title: "Quran Knowledge", Description: "Test your knowledge of the Holy Quran", Difficulty: "Medium", Color: "#4CAF50", OrderIndex: 1},
	{Slug: "seerah", Title: "Seerah Quiz", Description: "Learn about the life of Prophet Muhammad ﷺ", Difficulty: "Easy", Color: "#2196F3", OrderIndex: 2},
	{Slug: "history", Title: "Islamic History", Description: "Explore the rich history of Islam", Difficulty: "Hard", Color: "#FF9800", OrderIndex: 3},
	{Slug: "fiqh", Title: "Fiqh Basics", Description: "Understanding Islamic jurisprudence", Difficulty: "Medium", Color: "#9C27B0", OrderIndex: 4},
	{Slug: "pillars", Title: "Pillars of Islam", Description: "Test your knowledge of the five pillars", Difficulty: "Easy", Color: "#F44336", OrderIndex: 5},
	{Slug: "prophets", Title: "Prophets in Islam", Description: "Learn about the prophets mentioned in the Quran", Difficulty: "Medium", Color: "#00BCD4", OrderIndex: 6},
}

// Seed installs the default catalogue when it is missing and, if credentials
// are given, an admin account.
func Seed(db *gorm.DB, log *zap.SugaredLogger, adminEmail, adminPassword string) error {
	var count int64
	if err := db.Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count achievements")
	}
	if count == 0 {
		rows := make([]models.Achievement, len(DefaultAchievements))
		copy(rows, DefaultAchievements)
		for i := range rows {
			rows[i].IsActive = true
		}
		if err := db.Create(&rows).Error; err != nil {
			return errors.Wrap(err, "seed achievements")
		}
		log.Infow("seeded achievements", "count", len(rows))
	}

	quizzes := make([]models.Quiz, len(DefaultQuizzes))
	copy(quizzes, DefaultQuizzes)
	if err := db.Clauses(clause.OnConflict{DoNothing: true, Columns: []clause.Column{{Name: "slug"}}}).
		Create(&quizzes).Error; err != nil {
		return errors.Wrap(err, "seed quizzes")
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	admin := models.User{
		Email:       strings.ToLower(adminEmail),
		Username:    "admin",
		DisplayName: "Administrator",
		Password:    string(hash),
		IsAdmin:     true,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin).Error; err != nil {
		return errors.Wrap(err, "seed admin")
	}
	return nil
}
