package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	"github.com/mesalibre/voice-booking-be/internal/core/agent"
	"github.com/mesalibre/voice-booking-be/internal/core/auth"
	"github.com/mesalibre/voice-booking-be/internal/core/llm"
	"github.com/mesalibre/voice-booking-be/internal/handlers"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
	"github.com/mesalibre/voice-booking-be/internal/services"
	"github.com/mesalibre/voice-booking-be/internal/shared/config"
	"github.com/mesalibre/voice-booking-be/internal/shared/database"
	"github.com/mesalibre/voice-booking-be/internal/shared/utils"

	_ "github.com/mesalibre/voice-booking-be/docs"
)

// @title Voice Booking SaaS API
// @version 1.0
// @description Backend for the AI voice reservation agent and booking dashboard
// @contact.name API Support
// @contact.email support@mesalibre.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	utils.InitLogger()

	// Load config
	cfg := config.LoadConfig()
	log.Printf("🚀 Starting api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories
	userRepo := repositories.NewUserRepo(db.GORM)
	businessRepo := repositories.NewBusinessRepo(db.GORM)
	reservationRepo := repositories.NewReservationRepo(db.GORM)
	conversationRepo := repositories.NewConversationRepo(db.GORM)
	callLogRepo := repositories.NewCallLogRepo(db.GORM)

	// Init LLM service (provider from environment)
	llmService := llm.NewService()

	// Init services
	reservationService := services.NewReservationService(reservationRepo, businessRepo, conversationRepo)
	telnyxClient := services.NewTelnyxClient(cfg.TelnyxAPIKey, cfg.TelnyxAPIURL)

	// Init the conversation engine
	engine := agent.NewEngine(businessRepo, conversationRepo, llmService, reservationService)

	// Init auth
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authHandler := auth.NewHandler(userRepo, jwtService)
	requireAuth := auth.Middleware(jwtService)

	// Init handlers
	aiHandler := handlers.NewAIHandler(engine, llmService)
	conversationHandler := handlers.NewConversationHandler(conversationRepo)
	reservationHandler := handlers.NewReservationHandler(reservationRepo, businessRepo, reservationService, jwtService)
	businessHandler := handlers.NewBusinessHandler(businessRepo)
	telnyxHandler := handlers.NewTelnyxHandler(telnyxClient, callLogRepo)
	healthHandler := handlers.NewHealthHandler(llmService)

	// Stale-conversation janitor
	janitor := services.NewJanitor(conversationRepo)
	if err := janitor.Start(); err != nil {
		log.Fatalf("Failed to start janitor: %v", err)
	}
	defer janitor.Stop()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Voice Booking SaaS API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	app.Get("/health", healthHandler.GetHealth)

	// Auth routes
	app.Post("/auth/register", authHandler.Register)
	app.Post("/auth/login", authHandler.Login)

	// AI agent routes (consumed by the voice client, unauthenticated)
	app.Post("/ai/generate", aiHandler.Generate)
	app.Post("/ai/transcribe", aiHandler.Transcribe)

	// Conversation management
	app.Put("/conversations", conversationHandler.Update)

	// Reservation routes (mixed: phone source is public, dashboard is not)
	app.Get("/reservations", reservationHandler.List)
	app.Post("/reservations", reservationHandler.Create)
	app.Get("/reservations/:id/qr", reservationHandler.QRCode)
	app.Put("/reservations", requireAuth, reservationHandler.Update)
	app.Delete("/reservations", requireAuth, reservationHandler.Delete)

	// Business routes (dashboard)
	app.Get("/businesses", requireAuth, businessHandler.List)
	app.Post("/businesses", requireAuth, businessHandler.Create)
	app.Put("/businesses/:id", requireAuth, businessHandler.Update)
	app.Delete("/businesses/:id", requireAuth, businessHandler.Delete)
	app.Get("/businesses/:id/settings", requireAuth, businessHandler.GetSettings)
	app.Put("/businesses/:id/settings", requireAuth, businessHandler.UpdateSettings)

	// Telephony webhook
	app.Post("/telnyx/voice", telnyxHandler.Voice)

	log.Printf("✅ api running at :%s", cfg.Port)
	log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
