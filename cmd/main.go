package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/monzter50/api-gamification-finances/internal/clients/redis"
	"github.com/monzter50/api-gamification-finances/internal/db"
	"github.com/monzter50/api-gamification-finances/internal/handlers"
	"github.com/monzter50/api-gamification-finances/internal/jobs"
	"github.com/monzter50/api-gamification-finances/internal/middleware"
	"github.com/monzter50/api-gamification-finances/internal/observability"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/server"
	"github.com/monzter50/api-gamification-finances/internal/services"
	"github.com/monzter50/api-gamification-finances/internal/utils"
)

const serviceName = "gamification-finances"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = shutdownOtel(shutdownCtx)
		}()
	}

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	sweepInterval := utils.GetEnvAsInt("REVOCATION_SWEEP_INTERVAL", 3600, log)

	// Database
	databaseService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := databaseService.AutoMigrateAll(); err != nil {
		log.Error("Database auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := databaseService.DB()

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(theDB, log)
	progressRepo := repos.NewUserProgressRepo(theDB, log)
	walletRepo := repos.NewUserWalletRepo(theDB, log)
	rewardRepo := repos.NewRewardDefinitionRepo(theDB, log)
	unlockRepo := repos.NewUserUnlockRepo(theDB, log)
	grantRepo := repos.NewRewardGrantRepo(theDB, log)
	revokedTokenRepo := repos.NewRevokedTokenRepo(theDB, log)

	// Revocation store: Redis with TTL-based expiry when configured, else
	// the database-backed store plus a periodic sweep.
	var revocations services.TokenRevocationStore
	if os.Getenv("REDIS_ADDR") != "" {
		store, err := redis.NewRevocationStore(log)
		if err != nil {
			log.Error("Redis revocation store init failed", "error", err)
			os.Exit(1)
		}
		revocations = store
	} else {
		revocations = services.NewDBRevocationStore(log, revokedTokenRepo)
		sweeper := jobs.NewRevocationSweeper(log, revocations, time.Duration(sweepInterval)*time.Second)
		sweeper.Start(ctx)
	}

	// Services
	log.Info("Setting up services...")
	authService := services.NewAuthService(theDB, log, userRepo, progressRepo, walletRepo, revocations, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	userService := services.NewUserService(theDB, log, userRepo, progressRepo)
	experienceLedger := services.NewExperienceLedger(theDB, log, progressRepo)
	walletLedger := services.NewWalletLedger(theDB, log, walletRepo)
	unlockRegistry := services.NewUnlockRegistry(log, unlockRepo)
	catalogService := services.NewCatalogService(theDB, log, rewardRepo)
	rewardCoordinator := services.NewRewardCoordinator(log, rewardRepo, grantRepo, progressRepo, walletRepo, unlockRegistry, walletLedger, experienceLedger)

	// Optional catalog seed
	if seedPath := os.Getenv("REWARD_SEED_PATH"); seedPath != "" {
		if _, err := catalogService.SeedFromFile(ctx, seedPath); err != nil {
			log.Warn("Reward catalog seed failed", "path", seedPath, "error", err)
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(walletLedger)
	rewardsHandler := handlers.NewRewardsHandler(rewardCoordinator, unlockRegistry)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	adminMiddleware := middleware.NewAdminMiddleware(log, utils.GetEnv("ADMIN_API_KEY", "", log))

	// Router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     serviceName,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		AdminMiddleware: adminMiddleware,
		UserHandler:     userHandler,
		WalletHandler:   walletHandler,
		RewardsHandler:  rewardsHandler,
		CatalogHandler:  catalogHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
