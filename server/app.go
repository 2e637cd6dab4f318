// server/app.go - Fiber app construction and route table
package server

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"muslimlife/config"
	"muslimlife/handlers"
	"muslimlife/handlers/admin"
	"muslimlife/middleware"
)

const Version = "1.0.0"

// Deps is everything the route table needs.
type Deps struct {
	Config      *config.Config
	Log         *zap.SugaredLogger
	API         *handlers.Handler
	Admin       *admin.Handler
	Limiter     *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter
}

// NewApp builds the Fiber app with global middleware and every route.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      "muslimlife",
		ErrorHandler: errorHandler(cfg, d.Log),
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    12 * 1024 * 1024, // sheet uploads
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestContext(d.Log, cfg.RequestTimeout))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/ws/") },
	}))
	app.Use(etag.New())
	if cfg.RateLimitEnabled && d.Limiter != nil {
		app.Use(middleware.RateLimit(d.Limiter))
	}

	registerRoutes(app, d)
	return app
}

func registerRoutes(app *fiber.App, d Deps) {
	h := d.API
	auth := h.Auth
	requireAuth := auth.Required()

	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	if d.Config.RateLimitEnabled && d.AuthLimiter != nil {
		authGroup.Use(middleware.AuthRateLimit(d.AuthLimiter))
	}
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)

	// User routes
	userGroup := api.Group("/users", requireAuth)
	userGroup.Get("/me", h.Me)
	userGroup.Patch("/me", h.UpdateMe)
	userGroup.Put("/me", h.UpdateMe)

	// Achievement routes
	achievementGroup := api.Group("/achievements", requireAuth)
	achievementGroup.Get("/", h.GetAchievements)

	// Iman tracker routes
	goalGroup := api.Group("/goals", requireAuth)
	goalGroup.Get("/", h.GetGoals)
	goalGroup.Patch("/", h.PatchGoals)
	goalGroup.Get("/score", h.GetScore)
	goalGroup.Get("/habits", h.GetHabits)
	goalGroup.Post("/:habit/step", h.StepGoal)
	goalGroup.Post("/:habit/toggle", h.ToggleGoal)
	goalGroup.Post("/:habit/log", h.LogGoal)

	// Prayer routes
	prayerGroup := api.Group("/prayers", requireAuth)
	prayerGroup.Get("/", h.GetPrayerDay)
	prayerGroup.Post("/mark", h.MarkPrayer)
	prayerGroup.Get("/streak", h.GetPrayerStreak)

	// Quiz routes
	quizGroup := api.Group("/quizzes", requireAuth)
	quizGroup.Get("/", h.GetQuizzes)
	quizGroup.Get("/stats", h.GetQuizStats)
	quizGroup.Get("/:slug/questions", h.GetQuizQuestions)
	quizGroup.Post("/:slug/submit", h.SubmitQuiz)

	// Mood routes
	moodGroup := api.Group("/moods", requireAuth)
	moodGroup.Get("/", h.GetMoods)
	moodGroup.Post("/", h.LogMood)
	moodGroup.Get("/summary", h.GetMoodSummary)
	moodGroup.Get("/support/:mood", h.GetMoodSupport)

	// Community routes
	communityGroup := api.Group("/communities", requireAuth)
	communityGroup.Post("/", h.CreateCommunity)
	communityGroup.Get("/", h.GetMyCommunities)
	communityGroup.Post("/join", h.JoinCommunity)
	communityGroup.Get("/:id", h.GetCommunity)
	communityGroup.Post("/:id/leave", h.LeaveCommunity)
	communityGroup.Get("/:id/members", h.GetCommunityMembers)
	communityGroup.Delete("/:id/members/:userId", h.RemoveCommunityMember)
	communityGroup.Put("/:id/members/:userId/role", h.SetCommunityRole)
	communityGroup.Put("/:id/visibility", h.SetScoreVisibility)
	communityGroup.Get("/:id/leaderboard", h.GetCommunityLeaderboard)

	// Leaderboard routes
	api.Get("/leaderboard", requireAuth, h.GetLeaderboard)

	// Content routes
	contentGroup := api.Group("/content", requireAuth)
	contentGroup.Get("/lectures", h.GetLectures)
	contentGroup.Get("/recitations", h.GetRecitations)

	// Admin routes
	if a := d.Admin; a != nil {
		adminGroup := api.Group("/admin", requireAuth, auth.Admin())

		adminGroup.Get("/achievements", a.GetAchievements)
		adminGroup.Post("/achievements", a.CreateAchievement)
		adminGroup.Put("/achievements/:id", a.UpdateAchievement)
		adminGroup.Delete("/achievements/:id", a.DeleteAchievement)

		adminGroup.Post("/content/video", a.AddVideo)
		adminGroup.Post("/content/playlist", a.ImportPlaylist)
		adminGroup.Post("/content/import/:kind", a.ImportSheet)

		adminGroup.Get("/users", a.GetUsers)
		adminGroup.Get("/users/:id", a.GetUser)
		adminGroup.Put("/users/:id/admin", a.SetUserAdmin)
		adminGroup.Post("/users/:id/reset-password", a.ResetUserPassword)
		adminGroup.Delete("/users/:id", a.DeleteUser)
		adminGroup.Post("/users/:id/progress", a.GrantProgress)

		if a.Cleanup != nil {
			adminGroup.Post("/maintenance/reset-goals", a.ResetGoals)
			adminGroup.Post("/maintenance/sweep", a.SweepCaches)
		}
	}

	// Live iman score
	app.Get("/ws/iman", handlers.RequireUpgrade, auth.WebSocket(), h.ImanSocket())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   Version,
		})
	})
}

func errorHandler(cfg *config.Config, log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Errorw("unhandled error", "request_id", middleware.RequestID(c), "path", c.Path(), "error", err)
			// Don't expose internal errors in production
			if cfg.IsProduction() {
				message = "An error occurred. Please try again later."
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
