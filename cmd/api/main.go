package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/congdat192/LuckySpin-sub000/api/routes"
	"github.com/congdat192/LuckySpin-sub000/internal/config"
	"github.com/congdat192/LuckySpin-sub000/internal/engine"
	"github.com/congdat192/LuckySpin-sub000/internal/handlers"
	"github.com/congdat192/LuckySpin-sub000/internal/services"
	"github.com/joho/godotenv"

	mongorepo "github.com/congdat192/LuckySpin-sub000/internal/repositories/mongodb"
	"github.com/congdat192/LuckySpin-sub000/pkg/invoiceapi"
	"github.com/congdat192/LuckySpin-sub000/pkg/mongodb"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	eventRepo := mongorepo.NewEventRepository(db)
	ruleRepo := mongorepo.NewRuleRepository(db)
	prizeRepo := mongorepo.NewPrizeRepository(db)
	inventoryRepo := mongorepo.NewInventoryRepository(db)
	sessionRepo := mongorepo.NewSessionRepository(db)
	spinRepo := mongorepo.NewSpinRecordRepository(db)
	adminUserRepo := mongorepo.NewAdminUserRepository(db)

	// Invoice provider client (mock mode for local development)
	invoiceClient := invoiceapi.NewClient(
		cfg.InvoiceAPI.BaseURL,
		cfg.InvoiceAPI.APIKey,
		cfg.InvoiceAPI.APISecret,
		cfg.InvoiceAPI.MockAPI,
	)

	picker := services.NewDefaultPicker()
	if cfg.Wheel.RandomSeed != 0 {
		picker = engine.NewPicker(cfg.Wheel.RandomSeed)
	}

	// Services
	authService := services.NewAuthService(adminUserRepo, cfg)
	eventService := services.NewEventService(eventRepo)
	ruleService := services.NewRuleService(ruleRepo, eventRepo)
	prizeService := services.NewPrizeService(prizeRepo, inventoryRepo, eventRepo)
	wheelService := services.NewWheelService(
		eventRepo, ruleRepo, prizeRepo, inventoryRepo, sessionRepo, spinRepo,
		invoiceClient, picker,
	)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:  handlers.NewAuthHandler(authService),
		WheelHandler: handlers.NewWheelHandler(wheelService),
		EventHandler: handlers.NewEventHandler(eventService),
		RuleHandler:  handlers.NewRuleHandler(ruleService),
		PrizeHandler: handlers.NewPrizeHandler(prizeService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
