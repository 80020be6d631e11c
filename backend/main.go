package main

import (
	"log"
	"time"

	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/routes"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Nightly aggregate reconciliation (consistency backstop for the
	// incrementally maintained user totals)
	progressService := services.NewProgressService(db)
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(1).Day().At("03:00").Do(func() {
		if err := progressService.ReconcileAggregates(); err != nil {
			logger.Printf("aggregate reconciliation failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Error scheduling reconciliation: %v", err)
	}
	scheduler.StartAsync()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
