package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"find-bask-service/handlers"
	"find-bask-service/middleware"
	"find-bask-service/models"
	"find-bask-service/services"
	"find-bask-service/utils"
	"find-bask-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // 25MB — item photos and claim evidence
	})

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	jwtSecret := middleware.JWTSecret()

	if err := utils.InitStorage(); err != nil {
		log.Fatal("failed to initialize storage client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.FoundItem{},
		&models.ItemImage{},
		&models.ItemClaim{},
		&models.ClaimEvidence{},
		&models.Message{},
		&models.LostItemQuery{},
		&models.SuccessStory{},
		&models.AdminOperator{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	authService := services.NewAuthService(db, jwtSecret)
	profileService := services.NewProfileService(db)
	itemService := services.NewItemService(db)
	claimService := services.NewClaimService(db)
	messageService := services.NewMessageService(db)
	lostQueryService := services.NewLostQueryService(db)
	storyService := services.NewStoryService(db)
	adminService := services.NewAdminService(db, jwtSecret)
	placesClient := services.NewPlacesClient()

	if err := adminService.EnsureSeedOperator(os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Printf("⚠️  Admin operator not seeded: %v", err)
	}

	reconciler := workers.NewReconciler(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollReconcile(ctx, reconciler, 30*time.Second)

	claimService.StartClaimScheduler()

	handlers.SetupAuthRoutes(app, authService, profileService)
	handlers.SetupItemRoutes(app, itemService, claimService)
	handlers.SetupMessageRoutes(app, messageService)
	handlers.SetupCommunityRoutes(app, lostQueryService, storyService, placesClient)
	handlers.SetupAdminRoutes(app, adminService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Workflow reconciler running (every 30s)")
	log.Println("✅ Claim expiry scheduler running (every 10m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
