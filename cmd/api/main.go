package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lifelink-api-server/config"
	"lifelink-api-server/internal/api/routes"
	"lifelink-api-server/internal/auth"
	"lifelink-api-server/internal/mailer"
	"lifelink-api-server/internal/service"
	"lifelink-api-server/internal/socket"
	"lifelink-api-server/internal/stock"
	"lifelink-api-server/internal/store"
)

func newLogger(level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func main() {
	// A .env file is optional; deployments usually set the environment directly.
	_ = godotenv.Load()

	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Token signing
	ttl, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		logger.Fatalw("invalid jwt expiration", "value", cfg.JWT.Expiration, "err", err)
	}
	auth.Init(cfg.JWT.Secret, ttl)

	// 3. MongoDB
	ctx := context.Background()
	st, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		logger.Fatalw("mongo connection failed", "err", err)
	}
	defer st.Close(ctx)

	ledgerStore := store.NewLedgerStore(st)
	userStore := store.NewUserStore(st)
	requestStore := store.NewHospitalRequestStore(st)
	donorRequestStore := store.NewDonorRequestStore(st)
	emergencyStore := store.NewEmergencyStore(st)
	campStore := store.NewCampStore(st)

	if err := userStore.EnsureIndexes(ctx); err != nil {
		logger.Fatalw("index creation failed", "err", err)
	}

	// 4. Shared infrastructure
	hub := socket.NewHub(logger)
	mail := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	aggregator := stock.NewAggregator(ledgerStore)
	lowStock := service.NewLowStockNotifier(aggregator, userStore, hub, logger)

	// 5. Wire everything into the router
	router := routes.SetupRouter(routes.Services{
		Users:         userStore,
		Inventory:     service.NewInventoryService(ledgerStore, userStore, aggregator, st, lowStock, logger),
		Requests:      service.NewHospitalRequestService(requestStore, ledgerStore, userStore, aggregator, st, lowStock, logger),
		DonorRequests: service.NewDonorRequestService(donorRequestStore, ledgerStore, userStore, st, mail, logger),
		Emergencies:   service.NewEmergencyService(emergencyStore, userStore, mail, logger),
		Camps:         service.NewCampService(campStore, userStore, mail, logger),
		Admin:         service.NewAdminService(userStore, logger),
		Hub:           hub,
		Log:           logger,
	})

	// 6. Start server
	logger.Infow("starting api server", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatalw("server stopped", "err", err)
	}
}
