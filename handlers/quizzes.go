// handlers/quizzes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"muslimlife/utils"
)

type SubmitQuizRequest struct {
	Answers []int `json:"answers" validate:"required,max=200"`
}

// GetQuizzes lists every quiz
// GET /api/quizzes
func (h *Handler) GetQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.Quizzes.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"quizzes": quizzes})
}

// GetQuizQuestions returns a quiz's questions without answers
// GET /api/quizzes/:slug/questions
func (h *Handler) GetQuizQuestions(c *fiber.Ctx) error {
	questions, err := h.Quizzes.Questions(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"questions": questions, "count": len(questions)})
}

// SubmitQuiz grades the answers and records the attempt
// POST /api/quizzes/:slug/submit
func (h *Handler) SubmitQuiz(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req SubmitQuizRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	result, err := h.Quizzes.Submit(c.UserContext(), id, c.Params("slug"), req.Answers)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"attempt":               result.Attempt,
		"answers":               result.Answers,
		"unlocked_achievements": result.Unlocked,
	})
}

// GetQuizStats aggregates the user's attempts
// GET /api/quizzes/stats
func (h *Handler) GetQuizStats(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	stats, err := h.Quizzes.Stats(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"stats": stats})
}
