// services/goals.go - Iman Tracker habit counters and score
package services

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"muslimlife/models"
)

// HabitSpec bounds one habit counter.
type HabitSpec struct {
	Habit       string              `json:"habit"`
	Category    models.GoalCategory `json:"category"`
	Min         float64             `json:"min"`
	Max         float64             `json:"max"`
	Step        float64             `json:"step"`
	Default     float64             `json:"default"`
	Requirement string              `json:"-"` // achievement requirement type fed by LogActivity
}

// Prayers and quizzes carry no requirement: PrayerService and QuizService
// record their achievement progress from the stored prayer logs and attempts.

// HabitCatalogue is the fixed set of tracked habits in display order.
var HabitCatalogue = []HabitSpec{
	{Habit: "prayers", Category: models.CategoryIbadah, Min: 0, Max: 5, Step: 1, Default: 5},
	{Habit: "quran_pages", Category: models.CategoryIbadah, Min: 0, Max: 50, Step: 1, Default: 2, Requirement: "quran_pages"},
	{Habit: "dhikr", Category: models.CategoryIbadah, Min: 0, Max: 1000, Step: 33, Default: 99, Requirement: "dhikr"},
	{Habit: "sunnah_prayers", Category: models.CategoryIbadah, Min: 0, Max: 12, Step: 1, Default: 2},

	{Habit: "lectures", Category: models.CategoryIlm, Min: 0, Max: 10, Step: 1, Default: 1, Requirement: "lectures"},
	{Habit: "study_minutes", Category: models.CategoryIlm, Min: 0, Max: 480, Step: 15, Default: 30},
	{Habit: "hadith_read", Category: models.CategoryIlm, Min: 0, Max: 20, Step: 1, Default: 1},
	{Habit: "quizzes", Category: models.CategoryIlm, Min: 0, Max: 10, Step: 1, Default: 1},

	{Habit: "exercise_minutes", Category: models.CategoryAmanah, Min: 0, Max: 240, Step: 5, Default: 30, Requirement: "exercise_minutes"},
	{Habit: "sleep_hours", Category: models.CategoryAmanah, Min: 0, Max: 12, Step: 0.5, Default: 8},
	{Habit: "water_glasses", Category: models.CategoryAmanah, Min: 0, Max: 20, Step: 1, Default: 8, Requirement: "water_glasses"},
	{Habit: "charity", Category: models.CategoryAmanah, Min: 0, Max: 10, Step: 1, Default: 1},
}

var habitIndex = func() map[string]int {
	m := make(map[string]int, len(HabitCatalogue))
	for i, h := range HabitCatalogue {
		m[h.Habit] = i
	}
	return m
}()

func LookupHabit(habit string) (HabitSpec, bool) {
	i, ok := habitIndex[habit]
	if !ok {
		return HabitSpec{}, false
	}
	return HabitCatalogue[i], true
}

// Clamp bounds v to [min, max].
func (h HabitSpec) Clamp(v float64) float64 {
	return math.Max(h.Min, math.Min(h.Max, v))
}

// Iman score weights per category.
const (
	WeightIbadah = 0.5
	WeightIlm    = 0.3
	WeightAmanah = 0.2
)

type ImanScore struct {
	Ibadah  float64 `json:"ibadah"`
	Ilm     float64 `json:"ilm"`
	Amanah  float64 `json:"amanah"`
	Overall float64 `json:"overall"`
}

// Score averages min(1, completed/target) over the enabled goals with a
// positive target in each category, then weights the categories.
func Score(goals []models.UserGoal) ImanScore {
	sums := map[models.GoalCategory]float64{}
	counts := map[models.GoalCategory]int{}
	for _, g := range goals {
		if !g.Enabled || g.Target <= 0 {
			continue
		}
		sums[g.Category] += math.Min(1, math.Max(0, g.Completed/g.Target)) * 100
		counts[g.Category]++
	}
	pct := func(c models.GoalCategory) float64 {
		if counts[c] == 0 {
			return 0
		}
		return sums[c] / float64(counts[c])
	}

	s := ImanScore{
		Ibadah: pct(models.CategoryIbadah),
		Ilm:    pct(models.CategoryIlm),
		Amanah: pct(models.CategoryAmanah),
	}
	s.Overall = s.Ibadah*WeightIbadah + s.Ilm*WeightIlm + s.Amanah*WeightAmanah
	return s
}

// ImanSnapshot is what goal subscribers receive after every change.
type ImanSnapshot struct {
	UserID    uint              `json:"user_id"`
	Goals     []models.UserGoal `json:"goals"`
	Score     ImanScore         `json:"score"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// GoalPatch changes one habit. Nil fields are left alone.
type GoalPatch struct {
	Habit     string   `json:"habit" validate:"required"`
	Target    *float64 `json:"target,omitempty"`
	Completed *float64 `json:"completed,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
}

// GoalsService is the read/write/observe surface shared by the HTTP and
// websocket handlers.
type GoalsService interface {
	Goals(ctx context.Context, userID uint) (*ImanSnapshot, error)
	Update(ctx context.Context, userID uint, patches []GoalPatch) (*ImanSnapshot, error)
	Subscribe(userID uint, fn func(ImanSnapshot)) (unsubscribe func())
}

// ProgressRecorder receives achievement progress produced by logged activity.
type ProgressRecorder interface {
	RecordProgress(ctx context.Context, userID uint, requirementType string, delta int) ([]models.Achievement, error)
}

type GoalTracker struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	progress ProgressRecorder

	mu     sync.Mutex
	nextID int
	subs   map[uint]map[int]func(ImanSnapshot)
}

var _ GoalsService = (*GoalTracker)(nil)

func NewGoalTracker(db *gorm.DB, log *zap.SugaredLogger, progress ProgressRecorder) *GoalTracker {
	return &GoalTracker{
		db:       db,
		log:      log,
		progress: progress,
		subs:     make(map[uint]map[int]func(ImanSnapshot)),
	}
}

// ================== READ ==================

func (t *GoalTracker) Goals(ctx context.Context, userID uint) (*ImanSnapshot, error) {
	goals, err := t.ensureGoals(t.db.WithContext(ctx), userID, false)
	if err != nil {
		return nil, err
	}
	return snapshot(userID, goals), nil
}

// ensureGoals creates any missing catalogue rows with default targets and
// returns the user's goals in catalogue order. With lock set the rows are
// read FOR UPDATE so concurrent mutations of one user serialize.
func (t *GoalTracker) ensureGoals(db *gorm.DB, userID uint, lock bool) ([]models.UserGoal, error) {
	read := db
	if lock {
		read = db.Clauses(clause.Locking{Strength: "UPDATE"}).Session(&gorm.Session{})
	}

	var goals []models.UserGoal
	if err := read.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, errors.Wrap(err, "load goals")
	}

	if len(goals) < len(HabitCatalogue) {
		have := make(map[string]bool, len(goals))
		for _, g := range goals {
			have[g.Habit] = true
		}
		var missing []models.UserGoal
		for _, h := range HabitCatalogue {
			if !have[h.Habit] {
				missing = append(missing, models.UserGoal{
					UserID:   userID,
					Category: h.Category,
					Habit:    h.Habit,
					Target:   h.Default,
					Enabled:  true,
				})
			}
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error; err != nil {
			return nil, errors.Wrap(err, "create default goals")
		}
		var reloaded []models.UserGoal
		if err := read.Where("user_id = ?", userID).Find(&reloaded).Error; err != nil {
			return nil, errors.Wrap(err, "reload goals")
		}
		goals = reloaded
	}

	sort.SliceStable(goals, func(i, j int) bool {
		return catalogueOrder(goals[i].Habit) < catalogueOrder(goals[j].Habit)
	})
	return goals, nil
}

func catalogueOrder(habit string) int {
	if i, ok := habitIndex[habit]; ok {
		return i
	}
	return len(HabitCatalogue)
}

func snapshot(userID uint, goals []models.UserGoal) *ImanSnapshot {
	s := &ImanSnapshot{UserID: userID, Goals: goals, Score: Score(goals)}
	for _, g := range goals {
		if g.UpdatedAt.After(s.UpdatedAt) {
			s.UpdatedAt = g.UpdatedAt
		}
	}
	return s
}

// ================== MUTATIONS ==================

// Step moves the target one step up (direction > 0) or down, clamped to the
// habit's bounds.
func (t *GoalTracker) Step(ctx context.Context, userID uint, habit string, direction int) (*ImanSnapshot, error) {
	spec, ok := LookupHabit(habit)
	if !ok {
		return nil, invalid("unknown habit %q", habit)
	}
	if direction == 0 {
		return nil, invalid("direction must be +1 or -1")
	}
	return t.mutate(ctx, userID, func(goals map[string]*models.UserGoal) error {
		g := goals[habit]
		if !g.Enabled {
			return errors.Wrapf(ErrConflict, "%s is switched off", habit)
		}
		delta := spec.Step
		if direction < 0 {
			delta = -delta
		}
		g.Target = spec.Clamp(g.Target + delta)
		return nil
	})
}

// SetTarget overwrites the target, clamped to the habit's bounds.
func (t *GoalTracker) SetTarget(ctx context.Context, userID uint, habit string, target float64) (*ImanSnapshot, error) {
	return t.Update(ctx, userID, []GoalPatch{{Habit: habit, Target: &target}})
}

// Toggle switches a habit off (target 0) or back on. Switching on restores
// the catalogue default, not the user's previous target.
func (t *GoalTracker) Toggle(ctx context.Context, userID uint, habit string, enabled bool) (*ImanSnapshot, error) {
	return t.Update(ctx, userID, []GoalPatch{{Habit: habit, Enabled: &enabled}})
}

// LogActivity adds amount to today's completed count, clamped to [0, max].
// Progress is credited from the logged amounts, not the clamped counter:
// whole units by which today's net logged total exceeds its previous high
// are reported, so taking an amount back and logging it again earns nothing.
func (t *GoalTracker) LogActivity(ctx context.Context, userID uint, habit string, amount float64) (*ImanSnapshot, error) {
	spec, ok := LookupHabit(habit)
	if !ok {
		return nil, invalid("unknown habit %q", habit)
	}
	if amount == 0 {
		return nil, invalid("amount must not be zero")
	}

	var gained int
	snap, err := t.mutate(ctx, userID, func(goals map[string]*models.UserGoal) error {
		g := goals[habit]
		g.Completed = math.Max(0, math.Min(spec.Max, g.Completed+amount))
		// one log never counts for more than a full day of the habit
		g.Logged += math.Max(-spec.Max, math.Min(spec.Max, amount))
		if g.Logged > g.Credited {
			gained = int(math.Floor(g.Logged) - math.Floor(g.Credited))
			g.Credited = g.Logged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if gained > 0 && spec.Requirement != "" && t.progress != nil {
		if _, err := t.progress.RecordProgress(ctx, userID, spec.Requirement, gained); err != nil {
			t.log.Warnw("failed to record achievement progress", "user_id", userID, "habit", habit, "error", err)
		}
	}
	return snap, nil
}

// Update applies every patch in one transaction. Targets are clamped; a
// change of Enabled is applied after Target so toggling wins.
func (t *GoalTracker) Update(ctx context.Context, userID uint, patches []GoalPatch) (*ImanSnapshot, error) {
	specs := make([]HabitSpec, len(patches))
	for i, p := range patches {
		spec, ok := LookupHabit(p.Habit)
		if !ok {
			return nil, invalid("unknown habit %q", p.Habit)
		}
		specs[i] = spec
	}

	return t.mutate(ctx, userID, func(goals map[string]*models.UserGoal) error {
		for i, p := range patches {
			spec := specs[i]
			g := goals[p.Habit]
			if p.Target != nil {
				g.Target = spec.Clamp(*p.Target)
			}
			if p.Completed != nil {
				g.Completed = math.Max(0, math.Min(spec.Max, *p.Completed))
			}
			if p.Enabled != nil && *p.Enabled != g.Enabled {
				g.Enabled = *p.Enabled
				if g.Enabled {
					g.Target = spec.Default
				} else {
					g.Target = 0
				}
			}
		}
		return nil
	})
}

// mutate loads the user's goals, lets fn edit them and writes back the rows
// that changed, then notifies subscribers.
func (t *GoalTracker) mutate(ctx context.Context, userID uint, fn func(map[string]*models.UserGoal) error) (*ImanSnapshot, error) {
	var result []models.UserGoal

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		goals, err := t.ensureGoals(tx, userID, true)
		if err != nil {
			return err
		}

		before := make(map[string]models.UserGoal, len(goals))
		byHabit := make(map[string]*models.UserGoal, len(goals))
		for i := range goals {
			before[goals[i].Habit] = goals[i]
			byHabit[goals[i].Habit] = &goals[i]
		}

		if err := fn(byHabit); err != nil {
			return err
		}

		now := time.Now().UTC()
		for i := range goals {
			g := &goals[i]
			old := before[g.Habit]
			if old.Target == g.Target && old.Completed == g.Completed && old.Enabled == g.Enabled &&
				old.Logged == g.Logged && old.Credited == g.Credited {
				continue
			}
			g.UpdatedAt = now
			if err := tx.Model(&models.UserGoal{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
				"target":     g.Target,
				"completed":  g.Completed,
				"enabled":    g.Enabled,
				"logged":     g.Logged,
				"credited":   g.Credited,
				"updated_at": now,
			}).Error; err != nil {
				return errors.Wrapf(err, "update %s goal", g.Habit)
			}
		}
		result = goals
		return nil
	})
	if err != nil {
		return nil, err
	}

	snap := snapshot(userID, result)
	t.publish(*snap)
	return snap, nil
}

// ResetDaily zeroes every completed counter and the day's credit and pushes
// fresh snapshots to connected subscribers.
func (t *GoalTracker) ResetDaily(ctx context.Context) (int64, error) {
	res := t.db.WithContext(ctx).Model(&models.UserGoal{}).
		Where("completed <> ? OR logged <> ? OR credited <> ?", 0, 0, 0).
		Updates(map[string]interface{}{"completed": 0, "logged": 0, "credited": 0, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "reset daily goals")
	}

	for _, userID := range t.subscribedUsers() {
		snap, err := t.Goals(ctx, userID)
		if err != nil {
			t.log.Warnw("failed to refresh snapshot after reset", "user_id", userID, "error", err)
			continue
		}
		t.publish(*snap)
	}
	return res.RowsAffected, nil
}

// ================== SUBSCRIPTIONS ==================

// Subscribe registers fn for the user's snapshots. fn runs on the mutating
// goroutine and must not block.
func (t *GoalTracker) Subscribe(userID uint, fn func(ImanSnapshot)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	if t.subs[userID] == nil {
		t.subs[userID] = make(map[int]func(ImanSnapshot))
	}
	t.subs[userID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs[userID], id)
			if len(t.subs[userID]) == 0 {
				delete(t.subs, userID)
			}
		})
	}
}

func (t *GoalTracker) publish(snap ImanSnapshot) {
	t.mu.Lock()
	fns := make([]func(ImanSnapshot), 0, len(t.subs[snap.UserID]))
	for _, fn := range t.subs[snap.UserID] {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (t *GoalTracker) subscribedUsers() []uint {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]uint, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	return ids
}
