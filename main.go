package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"neoengine-ledger-service/handlers"
	"neoengine-ledger-service/middleware"
	"neoengine-ledger-service/models"
	"neoengine-ledger-service/services"
	"neoengine-ledger-service/utils"
	"neoengine-ledger-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB — template artwork uploads
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.ScoringConfig{},
		&models.UserScoring{},
		&models.TokenMint{},
		&models.TokenAccount{},
		&models.CosmeticRegistry{},
		&models.CosmeticTemplate{},
		&models.CosmeticMint{},
		&models.CosmeticStakeRecord{},
		&models.RewardEvent{},
		&models.ReputationEvent{},
		&models.BadgeEvent{},
		&models.CosmeticEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- External collaborator: Profile Service ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	profileServiceToken := os.Getenv("PROFILE_SERVICE_TOKEN")
	if profileServiceToken == "" {
		log.Fatal("PROFILE_SERVICE_TOKEN environment variable not set")
	}
	profileClient := services.NewProfileServiceClient(profileServiceURL, profileServiceToken)

	locks := utils.NewKeyLock()
	ledger := services.NewTokenLedger()
	scoringService := services.NewScoringService(db, ledger, profileClient, locks)
	cosmeticService := services.NewCosmeticService(db, ledger, locks)

	// --- Vault custody audit loop ---
	auditor := workers.NewVaultAuditor(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollVaults(ctx, auditor, 5*time.Minute)

	scoringService.StartLedgerScheduler(90 * 24 * time.Hour)

	// Probe/scrape endpoints carry no user identity — they sit outside the
	// user-context scopes the route setups register below.
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ✅ Setup routes — enforced Gateway auth + user context from headers
	handlers.SetupScoringRoutes(app, scoringService)
	handlers.SetupCosmeticRoutes(app, cosmeticService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Vault audit loop running (every 5m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
