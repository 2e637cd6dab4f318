// handlers/tracker.go - Prayer and mood endpoints
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"muslimlife/models"
	"muslimlife/services"
	"muslimlife/utils"
)

type MarkPrayerRequest struct {
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Prayer string `json:"prayer" validate:"required,oneof=fajr dhuhr asr maghrib isha"`
	OnTime *bool  `json:"on_time"`
}

type LogMoodRequest struct {
	Mood      string `json:"mood" validate:"required"`
	Intensity int    `json:"intensity" validate:"required,min=1,max=10"`
	Note      string `json:"note" validate:"max=1000"`
}

// today uses the client's date when given; the server's UTC date otherwise.
func today(c *fiber.Ctx, date string) string {
	if date != "" {
		return date
	}
	if q := c.Query("date"); q != "" {
		return q
	}
	return time.Now().UTC().Format(services.DateLayout)
}

// ================== PRAYERS ==================

// GetPrayerDay lists the five prayers for ?date= (default today)
// GET /api/prayers
func (h *Handler) GetPrayerDay(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	day, err := h.Prayers.Day(c.UserContext(), id, today(c, ""))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"day": day})
}

// MarkPrayer records a prayer; marking twice is harmless
// POST /api/prayers/mark
func (h *Handler) MarkPrayer(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req MarkPrayerRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	onTime := req.OnTime == nil || *req.OnTime

	date := today(c, req.Date)
	created, err := h.Prayers.Mark(c.UserContext(), id, date, models.Prayer(req.Prayer), onTime)
	if err != nil {
		return h.fail(c, err)
	}
	day, err := h.Prayers.Day(c.UserContext(), id, date)
	if err != nil {
		return h.fail(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.JSONSuccess(c, status, fiber.Map{"created": created, "day": day})
}

// GetPrayerStreak counts consecutive days with all five prayers
// GET /api/prayers/streak
func (h *Handler) GetPrayerStreak(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	now := time.Now().UTC()
	if q := c.Query("date"); q != "" {
		t, err := time.Parse(services.DateLayout, q)
		if err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		now = t
	}
	streak, err := h.Prayers.Streak(c.UserContext(), id, now)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"streak": streak})
}

// ================== MOODS ==================

// LogMood appends a mood entry and returns the matching reminder
// POST /api/moods
func (h *Handler) LogMood(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req LogMoodRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	entry, err := h.Moods.Log(c.UserContext(), id, req.Mood, req.Intensity, req.Note)
	if err != nil {
		return h.fail(c, err)
	}
	support, _ := services.SupportFor(entry.Mood)
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"entry": entry, "support": support})
}

// GetMoods lists recent entries, newest first
// GET /api/moods
func (h *Handler) GetMoods(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := h.Moods.Recent(c.UserContext(), id, utils.QueryInt(c, "limit", 30))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"entries": entries, "moods": services.Moods})
}

// GetMoodSummary aggregates the last ?days= days (default 7)
// GET /api/moods/summary
func (h *Handler) GetMoodSummary(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.fail(c, err)
	}
	days := utils.QueryInt(c, "days", 7)
	if days <= 0 || days > 365 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	summary, err := h.Moods.Summary(c.UserContext(), id, since)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"summary": summary})
}

// GetMoodSupport returns the reminder for a mood
// GET /api/moods/support/:mood
func (h *Handler) GetMoodSupport(c *fiber.Ctx) error {
	support, err := services.SupportFor(c.Params("mood"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"support": support})
}
