// Package testutil provides an isolated in-memory database per test.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"muslimlife/database"
	"muslimlife/logging"
	"muslimlife/models"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory SQLite database that lives for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db, logging.Nop()))
	return db
}

// CreateUser inserts a user with a unique email/username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
		Password:    "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateAchievement inserts an active achievement definition.
func CreateAchievement(t *testing.T, db *gorm.DB, a models.Achievement) *models.Achievement {
	t.Helper()
	if a.Tier == "" {
		a.Tier = models.TierBronze
	}
	a.IsActive = true
	require.NoError(t, db.Create(&a).Error)
	return &a
}
