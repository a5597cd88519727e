// handlers/scoring_routes.go
package handlers

import (
	"neoengine-ledger-service/middleware"
	"neoengine-ledger-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupScoringRoutes(app *fiber.App, scoringService *services.ScoringService) {
	// SSE stream authenticates via query params (EventSource cannot set
	// headers), so it registers ahead of the header-based user scope below.
	app.Get("/user/rewards/stream", middleware.SSEAuthMiddleware(), scoringService.StreamUserRewardEvents)

	// 🔐 Secured routes — require user context (userID, roles) from the Gateway.
	// Scoped by prefix: /healthz, /metrics and the stream above stay outside.
	securedGroup := app.Group("/user", middleware.UserContextMiddleware())
	adminGroup := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/scoring/initialize", func(c *fiber.Ctx) error {
		authorityID := c.Locals("user_id").(string)
		cfg, err := scoringService.InitializeScoring(authorityID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cfg)
	})

	securedGroup.Post("/scoring/initialize", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		record, err := scoringService.InitializeUserScoring(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	})

	securedGroup.Post("/rewards/daily", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		event, err := scoringService.RewardDailyContribution(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	securedGroup.Post("/rewards/referral", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			ReferredUserID string `json:"referred_user_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ReferredUserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "referred_user_id is required"})
		}

		event, err := scoringService.RewardReferral(userID, req.ReferredUserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	securedGroup.Post("/rewards/engagement", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			EngagementScore int64 `json:"engagement_score"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		event, err := scoringService.RewardContentEngagement(userID, req.EngagementScore)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	securedGroup.Post("/rewards/participation", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Points int64 `json:"points"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		event, err := scoringService.RewardCommunityParticipation(userID, req.Points)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	securedGroup.Get("/reputation", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		score, err := scoringService.ReputationScore(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"user_id": userID, "reputation_score": score})
	})

	securedGroup.Post("/reputation/sync", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		event, err := scoringService.UpdateReputationScore(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	securedGroup.Post("/badges/:badgeId", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		badgeID := c.Params("badgeId")

		var req struct {
			RequirementMet int64 `json:"requirement_met"`
		}
		// Body is optional — only streak badges carry external progress
		_ = c.BodyParser(&req)

		event, err := scoringService.AwardAchievementBadge(userID, badgeID, req.RequirementMet)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})
}
