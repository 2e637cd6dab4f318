// services/achievements.go - Achievement board aggregation and progress recording
package services

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"muslimlife/models"
)

// AchievementView is one achievement annotated for a specific user.
type AchievementView struct {
	models.Achievement
	Unlocked     bool       `json:"unlocked"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
	CurrentValue int        `json:"current_value"`
	Progress     float64    `json:"progress"`
}

// AchievementBoard is the merged result served to the achievements screen.
type AchievementBoard struct {
	Items         []AchievementView `json:"achievements"`
	Total         int               `json:"total"`
	UnlockedCount int               `json:"unlocked"`
	TotalPoints   int               `json:"total_points"`
	Next          *AchievementView  `json:"next_achievement"`
	FetchedAt     time.Time         `json:"fetched_at"`
	Stale         bool              `json:"stale,omitempty"`
}

// ProgressPercent is 100 for unlocked achievements, otherwise
// clamp(0, 100, 100*current/requirement). A non-positive requirement is
// treated as 1.
func ProgressPercent(unlocked bool, current, requirement int) float64 {
	if unlocked {
		return 100
	}
	if requirement <= 0 {
		requirement = 1
	}
	p := 100 * float64(current) / float64(requirement)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// MergeAchievements joins definitions with unlock rows and progress counters
// through two lookup maps keyed by achievement id.
func MergeAchievements(defs []models.Achievement, unlocks []models.UserAchievement, progress []models.AchievementProgress) *AchievementBoard {
	unlockedAt := make(map[uint]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}
	current := make(map[uint]int, len(progress))
	for _, p := range progress {
		current[p.AchievementID] = p.CurrentValue
	}

	board := &AchievementBoard{
		Items: make([]AchievementView, 0, len(defs)),
		Total: len(defs),
	}
	for _, def := range defs {
		view := AchievementView{Achievement: def, CurrentValue: current[def.ID]}
		if at, ok := unlockedAt[def.ID]; ok {
			view.Unlocked = true
			view.UnlockedAt = &at
			board.UnlockedCount++
			board.TotalPoints += def.Points
		}
		view.Progress = ProgressPercent(view.Unlocked, view.CurrentValue, def.RequirementValue)
		board.Items = append(board.Items, view)
	}

	// highest progress among locked items with progress > 0; ties keep the first
	best := -1
	for i := range board.Items {
		item := &board.Items[i]
		if item.Unlocked || item.Progress <= 0 {
			continue
		}
		if best == -1 || item.Progress > board.Items[best].Progress {
			best = i
		}
	}
	if best >= 0 {
		board.Next = &board.Items[best]
	}
	return board
}

type AchievementService struct {
	db          *gorm.DB
	log         *zap.SugaredLogger
	cache       *TTLCache[uint, *AchievementBoard]
	group       singleflight.Group
	now         func() time.Time
	loadTimeout time.Duration
}

func NewAchievementService(db *gorm.DB, log *zap.SugaredLogger, ttl time.Duration) *AchievementService {
	return &AchievementService{
		db:          db,
		log:         log,
		cache:       NewTTLCache[uint, *AchievementBoard](ttl),
		now:         time.Now,
		loadTimeout: 10 * time.Second,
	}
}

// SetClock replaces the time source of the service and its cache.
func (s *AchievementService) SetClock(now func() time.Time) {
	s.now = now
	s.cache.SetClock(now)
}

// Cache exposes the board cache to the scheduler.
func (s *AchievementService) Cache() *TTLCache[uint, *AchievementBoard] {
	return s.cache
}

// Board returns the user's board, serving the cached copy while it is fresh.
func (s *AchievementService) Board(ctx context.Context, userID uint) (*AchievementBoard, error) {
	if board, ok := s.cache.Get(userID); ok {
		return board, nil
	}
	return s.Refresh(ctx, userID)
}

// Refresh always refetches. Concurrent refreshes for one user share a load
// that runs detached from any single caller; each caller stops waiting when
// its own ctx is done. A board read before an invalidation is returned but
// not cached. On failure the previous board, if any, is returned marked stale.
func (s *AchievementService) Refresh(ctx context.Context, userID uint) (*AchievementBoard, error) {
	var (
		v   interface{}
		err error
	)
	if err = ctx.Err(); err == nil {
		ch := s.group.DoChan(strconv.FormatUint(uint64(userID), 10), func() (interface{}, error) {
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
			defer cancel()

			version := s.cache.Version(userID)
			board, err := s.load(loadCtx, userID)
			if err != nil {
				return nil, err
			}
			s.cache.SetAt(userID, board, version)
			return board, nil
		})
		select {
		case res := <-ch:
			v, err = res.Val, res.Err
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	if err != nil {
		s.log.Errorw("failed to load achievements", "user_id", userID, "error", err)
		if prev, ok := s.cache.peek(userID); ok {
			stale := *prev
			stale.Stale = true
			return &stale, nil
		}
		return nil, err
	}
	return v.(*AchievementBoard), nil
}

func (s *AchievementService) load(ctx context.Context, userID uint) (*AchievementBoard, error) {
	var (
		defs     []models.Achievement
		unlocks  []models.UserAchievement
		progress []models.AchievementProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("is_active = ?", true).
			Order("order_index ASC, id ASC").
			Find(&defs).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("user_id = ?", userID).Find(&unlocks).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("user_id = ?", userID).Find(&progress).Error
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "fetch achievements")
	}

	board := MergeAchievements(defs, unlocks, progress)
	board.FetchedAt = s.now()
	return board, nil
}

// Invalidate drops the cached board for one user.
func (s *AchievementService) Invalidate(userID uint) {
	s.cache.Invalidate(userID)
}

// RecordProgress adds delta to every active achievement counter of the given
// requirement type and unlocks those whose requirement is now met. Unlocks
// are append-only; points are credited once per unlock.
func (s *AchievementService) RecordProgress(ctx context.Context, userID uint, requirementType string, delta int) ([]models.Achievement, error) {
	if delta <= 0 {
		return nil, invalid("progress delta must be positive, got %d", delta)
	}
	if requirementType == "" {
		return nil, invalid("requirement type is required")
	}

	now := s.now().UTC()
	var unlocked []models.Achievement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var defs []models.Achievement
		if err := tx.Where("is_active = ? AND requirement_type = ?", true, requirementType).
			Order("order_index ASC, id ASC").
			Find(&defs).Error; err != nil {
			return err
		}

		for _, def := range defs {
			row := models.AchievementProgress{
				UserID:        userID,
				AchievementID: def.ID,
				CurrentValue:  delta,
				UpdatedAt:     now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"current_value": gorm.Expr("achievement_progress.current_value + ?", delta),
					"updated_at":    now,
				}),
			}).Create(&row).Error; err != nil {
				return err
			}

			var current models.AchievementProgress
			if err := tx.Where("user_id = ? AND achievement_id = ?", userID, def.ID).
				First(&current).Error; err != nil {
				return err
			}

			requirement := def.RequirementValue
			if requirement <= 0 {
				requirement = 1
			}
			if current.CurrentValue < requirement {
				continue
			}

			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserAchievement{
				UserID:        userID,
				AchievementID: def.ID,
				UnlockedAt:    now,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue // already unlocked
			}

			if def.Points != 0 {
				if err := tx.Model(&models.User{}).Where("id = ?", userID).
					Update("total_points", gorm.Expr("total_points + ?", def.Points)).Error; err != nil {
					return err
				}
			}
			unlocked = append(unlocked, def)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "record %s progress", requirementType)
	}

	s.cache.Invalidate(userID)
	for _, a := range unlocked {
		s.log.Infow("achievement unlocked", "user_id", userID, "achievement_id", a.ID, "title", a.Title)
	}
	return unlocked, nil
}

// ================== ADMIN ==================

func (s *AchievementService) List(ctx context.Context) ([]models.Achievement, error) {
	var rows []models.Achievement
	if err := s.db.WithContext(ctx).Order("order_index ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list achievements")
	}
	return rows, nil
}

func (s *AchievementService) Create(ctx context.Context, a *models.Achievement) error {
	active := a.IsActive
	db := s.db.WithContext(ctx)
	if err := db.Create(a).Error; err != nil {
		return errors.Wrap(err, "create achievement")
	}
	// a zero IsActive is replaced by the column default on insert
	if !active {
		if err := db.Model(a).Update("is_active", false).Error; err != nil {
			return errors.Wrap(err, "deactivate achievement")
		}
	}
	s.cache.Purge()
	return nil
}

func (s *AchievementService) Update(ctx context.Context, id uint, patch map[string]interface{}) (*models.Achievement, error) {
	db := s.db.WithContext(ctx)
	var a models.Achievement
	if err := db.First(&a, id).Error; err != nil {
		return nil, notFound(err, "find achievement")
	}
	if len(patch) > 0 {
		if err := db.Model(&a).Updates(patch).Error; err != nil {
			return nil, errors.Wrap(err, "update achievement")
		}
	}
	if err := db.First(&a, id).Error; err != nil {
		return nil, notFound(err, "reload achievement")
	}
	s.cache.Purge()
	return &a, nil
}

func (s *AchievementService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Achievement{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete achievement")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "delete achievement")
	}
	s.cache.Purge()
	return nil
}
