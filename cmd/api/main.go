package main

import (
	"fmt"
	"net/http"
	"os"

	"saku/internal/cache"
	"saku/internal/config"
	"saku/internal/database"
	"saku/internal/handlers"
	"saku/internal/logger"
	"saku/internal/middleware"
	"saku/internal/services"
	"saku/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Saku API
// @version         1.0
// @description     Saku is a pocket-based personal finance application: money lives in named pockets, every change is an immutable ledger record, and balances are derived from monthly timelines.
// @termsOfService  http://swagger.io/terms/

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

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	timelineCache := cache.NewTimelineStore(appConfig.TimelineCacheSize, appConfig.TimelineCacheTTL)
	userService := services.NewUserService(db)
	pocketService := services.NewPocketService(db)
	categoryService := services.NewCategoryService(db)
	timelineService := services.NewTimelineService(db, pocketService, timelineCache, appConfig.TimelineFetchTimeout)
	recordService := services.NewRecordService(db, pocketService, timelineService)
	budgetService := services.NewBudgetService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, pocketService)
	pocketHandler := handlers.NewPocketHandler(pocketService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	recordHandler := handlers.NewRecordHandler(recordService, auditService)
	timelineHandler := handlers.NewTimelineHandler(timelineService, pocketService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)

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

	// Pocket routes
	pockets := protected.Group("/pockets")
	pockets.POST("", pocketHandler.CreatePocket)
	pockets.GET("", pocketHandler.GetPockets)
	pockets.GET("/:id", pocketHandler.GetPocketByID)
	pockets.PUT("/:id", pocketHandler.UpdatePocket)
	pockets.DELETE("/:id", pocketHandler.DeletePocket)
	pockets.GET("/:id/records", recordHandler.GetPocketRecords)
	pockets.GET("/:id/timeline", timelineHandler.GetTimeline)
	pockets.GET("/:id/timeline/export", timelineHandler.ExportTimeline)

	// Balance routes
	protected.GET("/balances", timelineHandler.GetBalances)

	// Record routes
	records := protected.Group("/records")
	records.POST("/income", recordHandler.CreateIncome)
	records.POST("/expense", recordHandler.CreateExpense)
	records.POST("/transfer", recordHandler.CreateTransfer)
	records.POST("/transfer/check", recordHandler.CheckTransfer)
	records.GET("/:id", recordHandler.GetRecordByID)
	records.DELETE("/:id", recordHandler.DeleteRecord)

	// Amount expression evaluation
	protected.POST("/amounts/evaluate", recordHandler.EvaluateAmount)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Budget routes
	categories.PUT("/:id/budget", budgetHandler.SetBudget)
	categories.GET("/:id/budget", budgetHandler.GetBudget)
	categories.DELETE("/:id/budget", budgetHandler.DeleteBudget)
	categories.GET("/:id/budget/status", budgetHandler.GetCategoryStatus)
	protected.GET("/budgets/status", budgetHandler.GetAllStatuses)

	log.Infof("Starting Saku backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
