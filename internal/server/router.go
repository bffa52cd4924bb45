package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/monzter50/api-gamification-finances/internal/handlers"
	"github.com/monzter50/api-gamification-finances/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	AdminMiddleware *middleware.AdminMiddleware
	UserHandler     *handlers.UserHandler
	WalletHandler   *handlers.WalletHandler
	RewardsHandler  *handlers.RewardsHandler
	CatalogHandler  *handlers.CatalogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PATCH("/user", cfg.UserHandler.UpdateMe)
	protected.GET("/progress", cfg.UserHandler.GetProgress)
	// Wallet
	protected.GET("/wallet", cfg.WalletHandler.GetWallet)
	protected.POST("/wallet/spend", cfg.WalletHandler.Spend)
	protected.GET("/wallet/afford", cfg.WalletHandler.CanAfford)
	// Rewards
	protected.POST("/rewards/check", cfg.RewardsHandler.CheckAll)
	protected.POST("/rewards/:id/claim", cfg.RewardsHandler.Claim)
	protected.GET("/rewards/unlocked", cfg.RewardsHandler.ListUnlocked)
	// Catalog admin: a session alone is not enough, writes need the
	// deploy-time admin key on top of it.
	admin := protected.Group("/admin")
	admin.Use(cfg.AdminMiddleware.RequireAdminKey())
	admin.POST("/rewards", cfg.CatalogHandler.Create)
	admin.GET("/rewards", cfg.CatalogHandler.List)
	admin.GET("/rewards/:id", cfg.CatalogHandler.Get)
	admin.PATCH("/rewards/:id", cfg.CatalogHandler.Update)
	admin.DELETE("/rewards/:id", cfg.CatalogHandler.Delete)

	return router
}
