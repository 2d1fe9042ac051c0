package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"paisatrack/internal/config"
	"paisatrack/internal/database"
	"paisatrack/internal/handlers"
	"paisatrack/internal/logger"
	"paisatrack/internal/marketdata"
	"paisatrack/internal/middleware"
	"paisatrack/internal/services"
	"paisatrack/internal/validator"
)

// @title           PaisaTrack API
// @version         1.0
// @description     PaisaTrack is a personal finance application for tracking cryptocurrency investments in a local currency, valued against live market data.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Market data: cached CoinGecko prices and a USD-based FX table with a
	// primary and secondary source.
	priceSource := marketdata.NewCoinGeckoClient(appConfig.MarketRequestTimeout, log)
	priceCache := marketdata.NewPriceCache(priceSource, appConfig.PriceCacheTTL, log)
	fxService := marketdata.NewFXService(appConfig.FXCacheTTL, log,
		marketdata.NewOpenERAPIClient(appConfig.MarketRequestTimeout),
		marketdata.NewFrankfurterClient(appConfig.MarketRequestTimeout),
	)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	investmentService := services.NewInvestmentService(db, priceCache, fxService, appConfig.LocalCurrency)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)

	// Register custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/history", investmentHandler.GetHistory)
	investments.GET("/:id", investmentHandler.GetInvestment)
	investments.POST("/:id/sell", investmentHandler.SellInvestment)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	// Market data routes
	market := protected.Group("/market")
	market.GET("/prices", investmentHandler.BatchPrices)
	market.GET("/exchange-rate", investmentHandler.ExchangeRate)
	market.GET("/coins", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"coins": marketdata.SupportedCoins()})
	})

	log.Infof("Starting PaisaTrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
