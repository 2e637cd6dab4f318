// services/quiz.go - Quiz catalogue, submissions and stats
package services

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"muslimlife/models"
)

// ActivityLogger feeds habit counters from other features.
type ActivityLogger interface {
	LogActivity(ctx context.Context, userID uint, habit string, amount float64) (*ImanSnapshot, error)
}

type QuizService struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	progress ProgressRecorder
	activity ActivityLogger
}

func NewQuizService(db *gorm.DB, log *zap.SugaredLogger, progress ProgressRecorder, activity ActivityLogger) *QuizService {
	return &QuizService{db: db, log: log, progress: progress, activity: activity}
}

func (s *QuizService) List(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := s.db.WithContext(ctx).Order("order_index ASC, id ASC").Find(&quizzes).Error; err != nil {
		return nil, errors.Wrap(err, "list quizzes")
	}
	return quizzes, nil
}

// Questions returns a quiz's questions in play order. Correct answers are
// never serialized.
func (s *QuizService) Questions(ctx context.Context, slug string) ([]models.QuizQuestion, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&quiz).Error; err != nil {
		return nil, notFound(err, "find quiz")
	}
	var questions []models.QuizQuestion
	if err := s.db.WithContext(ctx).
		Where("quiz_slug = ?", slug).
		Order("order_index ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	return questions, nil
}

type AnswerResult struct {
	QuestionID    string `json:"question_id"`
	Selected      int    `json:"selected"`
	CorrectAnswer int    `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

type QuizResult struct {
	Attempt  models.QuizAttempt   `json:"attempt"`
	Answers  []AnswerResult       `json:"answers"`
	Unlocked []models.Achievement `json:"unlocked_achievements"`
}

// Submit grades answers given positionally against Questions(slug). Missing
// answers count as wrong; -1 marks a skipped question.
func (s *QuizService) Submit(ctx context.Context, userID uint, slug string, answers []int) (*QuizResult, error) {
	questions, err := s.Questions(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, invalid("quiz %q has no questions", slug)
	}
	if len(answers) > len(questions) {
		return nil, invalid("got %d answers for %d questions", len(answers), len(questions))
	}

	result := &QuizResult{Answers: make([]AnswerResult, len(questions))}
	correct := 0
	for i, q := range questions {
		selected := -1
		if i < len(answers) {
			selected = answers[i]
		}
		ok := selected == q.CorrectAnswer
		if ok {
			correct++
		}
		result.Answers[i] = AnswerResult{
			QuestionID:    q.ID,
			Selected:      selected,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ok,
			Explanation:   q.Explanation,
		}
	}

	pct := math.Round(float64(correct)/float64(len(questions))*10000) / 100
	result.Attempt = models.QuizAttempt{
		UserID:         userID,
		QuizSlug:       slug,
		CorrectAnswers: correct,
		TotalQuestions: len(questions),
		Percentage:     pct,
		IsPerfect:      correct == len(questions),
	}
	if err := s.db.WithContext(ctx).Create(&result.Attempt).Error; err != nil {
		return nil, errors.Wrap(err, "save quiz attempt")
	}

	if s.activity != nil {
		if _, err := s.activity.LogActivity(ctx, userID, "quizzes", 1); err != nil {
			s.log.Warnw("failed to log quiz activity", "user_id", userID, "error", err)
		}
	}
	s.record(ctx, userID, "quizzes_completed", result)
	if result.Attempt.IsPerfect {
		s.record(ctx, userID, "perfect_quizzes", result)
	}
	return result, nil
}

func (s *QuizService) record(ctx context.Context, userID uint, requirementType string, result *QuizResult) {
	if s.progress == nil {
		return
	}
	unlocked, err := s.progress.RecordProgress(ctx, userID, requirementType, 1)
	if err != nil {
		s.log.Warnw("failed to record quiz progress", "user_id", userID, "requirement_type", requirementType, "error", err)
		return
	}
	result.Unlocked = append(result.Unlocked, unlocked...)
}

type QuizStat struct {
	QuizSlug       string  `json:"quiz_id"`
	Attempts       int     `json:"attempts"`
	BestPercentage float64 `json:"best_percentage"`
	AvgPercentage  float64 `json:"average_percentage"`
	PerfectCount   int     `json:"perfect_count"`
}

type QuizStats struct {
	Quizzes        []QuizStat `json:"quizzes"`
	TotalAttempts  int        `json:"total_attempts"`
	TotalCorrect   int        `json:"total_correct"`
	TotalQuestions int        `json:"total_questions"`
	AvgPercentage  float64    `json:"average_percentage"`
}

// Stats aggregates the user's attempts per quiz.
func (s *QuizService) Stats(ctx context.Context, userID uint) (*QuizStats, error) {
	var rows []QuizStat
	err := s.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Select(`quiz_slug,
			COUNT(*) AS attempts,
			MAX(percentage) AS best_percentage,
			AVG(percentage) AS avg_percentage,
			SUM(CASE WHEN is_perfect THEN 1 ELSE 0 END) AS perfect_count`).
		Where("user_id = ?", userID).
		Group("quiz_slug").
		Order("quiz_slug ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "quiz stats")
	}

	var totals struct {
		Attempts  int
		Correct   int
		Questions int
		Avg       float64
	}
	err = s.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Select(`COUNT(*) AS attempts,
			COALESCE(SUM(correct_answers), 0) AS correct,
			COALESCE(SUM(total_questions), 0) AS questions,
			COALESCE(AVG(percentage), 0) AS avg`).
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, errors.Wrap(err, "quiz totals")
	}

	if rows == nil {
		rows = []QuizStat{}
	}
	return &QuizStats{
		Quizzes:        rows,
		TotalAttempts:  totals.Attempts,
		TotalCorrect:   totals.Correct,
		TotalQuestions: totals.Questions,
		AvgPercentage:  totals.Avg,
	}, nil
}
