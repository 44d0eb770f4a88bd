package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/app"
	"dispatch/internal/config"
	"dispatch/internal/handler"
	"dispatch/internal/middleware"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository/postgres"
	"dispatch/internal/service"
)

func main() {
	// Load .env if present, then configuration from the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, tripService := wireServer(db, redisClient, nrApp, cfg)

	// Expiry sweeper: booked trips whose window lapsed with no acceptance.
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go runExpirySweeper(sweeperCtx, tripService, cfg.Dispatch.SweepInterval)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSweeper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// trip service for the sweeper.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.TripService) {
	// Redis stores.
	presenceStore := internalRedis.NewPresenceStore(redisClient, cfg.Dispatch.HeartbeatTimeout)
	dispatchStore := internalRedis.NewDispatchStore(redisClient)
	broadcaster := internalRedis.NewBroadcaster(redisClient)

	// Repositories.
	tripRepo := postgres.NewTripRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	riderRepo := postgres.NewRiderRepository(db)
	fleetRepo := postgres.NewFleetRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	regionRepo := postgres.NewRegionRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	feedbackRepo := postgres.NewFeedbackRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	// Services.
	estimator := service.NewHaversineEstimator(cfg.Dispatch.AverageSpeedKmh)
	regionService := service.NewRegionService(regionRepo)
	fareService := service.NewFareService(regionService, serviceRepo, estimator)
	walletService := service.NewWalletService(ledgerRepo)
	settlementService := service.NewSettlementService(walletService, tripRepo)
	pushService := service.NewPushService()
	tripService := service.NewTripService(service.TripServiceDeps{
		TripRepo:        tripRepo,
		DriverRepo:      driverRepo,
		ServiceRepo:     serviceRepo,
		FleetRepo:       fleetRepo,
		ActivityRepo:    activityRepo,
		FeedbackRepo:    feedbackRepo,
		RegionService:   regionService,
		Estimator:       estimator,
		Presence:        presenceStore,
		Dispatch:        dispatchStore,
		Broadcaster:     broadcaster,
		Push:            pushService,
		Ledger:          walletService,
		Settlement:      settlementService,
		BookedThreshold: cfg.Dispatch.BookedThreshold,
		DispatchWindow:  cfg.Dispatch.DispatchWindow,
	})

	// Handlers.
	fareHandler := handler.NewFareHandler(fareService)
	tripHandler := handler.NewTripHandler(tripService)
	driverHandler := handler.NewDriverHandler(driverRepo, presenceStore)
	riderHandler := handler.NewRiderHandler(riderRepo)
	walletHandler := handler.NewWalletHandler(walletService)

	// Router.
	router := app.NewRouter(app.RouterDeps{
		FareHandler:   fareHandler,
		TripHandler:   tripHandler,
		DriverHandler: driverHandler,
		RiderHandler:  riderHandler,
		WalletHandler: walletHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
		JWTSecret:     cfg.Auth.JWTSecret,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, tripService
}

// runExpirySweeper periodically expires booked trips whose dispatch
// window lapsed. The sweep is idempotent, so overlap with the operator
// expire endpoint is harmless.
func runExpirySweeper(ctx context.Context, tripService *service.TripService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := tripService.SweepExpired(ctx)
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			for range expired {
				middleware.TrackTripEvent("expired")
			}
			if len(expired) > 0 {
				log.Printf("expired %d trips", len(expired))
			}
		}
	}
}
