package main

import (
	"log"
	"os"
	"time"

	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/ai"
	"lab-inventory-api-server/internal/api/routes"
	"lab-inventory-api-server/internal/database"
	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/s3"
	"lab-inventory-api-server/internal/socket"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	// 1. Environment and configuration
	godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be configured")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// 2. MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// 3. Inventory core with websocket notifications
	wsHub := socket.NewHub()
	svc := inventory.NewService(database.NewStore(db))
	svc.SetNotifier(socket.NewInventoryNotifier(wsHub))

	// 4. Optional collaborators: AI features and the S3 scan archive
	gemini := ai.NewClient(cfg.Gemini)
	if !gemini.Enabled() {
		zlog.Warn().Msg("GEMINI_API_KEY not set, AI features disabled")
	}

	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		zlog.Warn().Msg("S3 bucket not configured, scan images will not be archived")
	}

	// 5. Router and server
	router := routes.SetupRouter(cfg, db, svc, gemini, s3Uploader, wsHub)

	zlog.Info().Str("port", cfg.Server.Port).Msg("starting API server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
