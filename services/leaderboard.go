// services/leaderboard.go - Score ranking shared by community and global boards
package services

import (
	"context"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"muslimlife/models"
)

const HiddenScoreLabel = "Hidden"

// ScoreEntry is one participant before ranking.
type ScoreEntry struct {
	UserID      uint                 `json:"user_id"`
	Username    string               `json:"username"`
	DisplayName string               `json:"display_name"`
	Avatar      string               `json:"avatar"`
	Role        models.CommunityRole `json:"role,omitempty"`
	Score       int                  `json:"-"`
	HideScore   bool                 `json:"-"`
}

type RankedEntry struct {
	ScoreEntry
	Rank       int    `json:"rank"`
	Score      *int   `json:"score"`
	ScoreLabel string `json:"score_label"`
	Podium     bool   `json:"podium"`
	IsViewer   bool   `json:"is_viewer"`
}

// RankEntries sorts by score descending and assigns ranks 1..N. Equal scores
// keep their input order. A hidden score is masked for everyone except the
// member it belongs to.
func RankEntries(entries []ScoreEntry, viewerID uint) []RankedEntry {
	sorted := make([]ScoreEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	ranked := make([]RankedEntry, len(sorted))
	for i, e := range sorted {
		r := RankedEntry{
			ScoreEntry: e,
			Rank:       i + 1,
			Podium:     i < 3,
			IsViewer:   e.UserID == viewerID,
		}
		if e.HideScore && !r.IsViewer {
			r.ScoreLabel = HiddenScoreLabel
		} else {
			score := e.Score
			r.Score = &score
			r.ScoreLabel = formatPoints(score)
		}
		ranked[i] = r
	}
	return ranked
}

func formatPoints(n int) string {
	if n == 1 {
		return "1 pt"
	}
	return strconv.Itoa(n) + " pts"
}

// GlobalLeaderboard ranks the top users across the whole app.
type GlobalLeaderboard struct {
	db *gorm.DB
}

func NewGlobalLeaderboard(db *gorm.DB) *GlobalLeaderboard {
	return &GlobalLeaderboard{db: db}
}

func (l *GlobalLeaderboard) Top(ctx context.Context, viewerID uint, limit int) ([]RankedEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var users []models.User
	if err := l.db.WithContext(ctx).
		Where("is_admin = ?", false).
		Order("total_points DESC, id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "fetch leaderboard")
	}

	entries := make([]ScoreEntry, len(users))
	for i, u := range users {
		entries[i] = ScoreEntry{
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Avatar:      u.Avatar,
			Score:       u.TotalPoints,
		}
	}
	return RankEntries(entries, viewerID), nil
}
