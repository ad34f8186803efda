package router

import (
	"time"

	"finmate/internal/config"
	"finmate/internal/handler"
	"finmate/internal/middleware"
	"finmate/internal/provider"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and registers all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// uploaded avatars are served back as static files
	if cfg.Upload.Dir != "" {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	jwtSecret := cfg.JWT.Secret

	// public endpoints
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	r.POST("/users/register", authHandler.Register)
	r.POST("/users/login", authHandler.Login)

	// everything below requires a bearer token
	protected := r.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	userHandler := handler.NewUserHandler(db, cfg.Upload.Dir, cfg.Upload.PublicBase, cfg.Upload.MaxSizeMB)
	protected.GET("/users/profile", userHandler.GetProfile)
	protected.PUT("/users/profile", userHandler.UpdateProfile)
	protected.PATCH("/users/avatar", userHandler.UpdateAvatar)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.List)
	protected.POST("/categories", categoryHandler.Create)
	protected.PUT("/categories/:id", categoryHandler.Update)
	protected.DELETE("/categories/:id", categoryHandler.Delete)

	txHandler := handler.NewTransactionHandler(db)
	statsHandler := handler.NewStatsHandler(db)
	recurringHandler := handler.NewRecurringHandler(db)
	exportHandler := handler.NewExportHandler(db)

	tx := protected.Group("/transactions")
	{
		// fixed paths must be registered before the :id routes
		tx.GET("/summary", statsHandler.Summary)
		tx.GET("/statistics", statsHandler.Statistics)
		tx.GET("/calendar-view", statsHandler.CalendarView)
		tx.GET("/top-categories", statsHandler.TopCategories)
		tx.GET("/months-with-data", statsHandler.MonthsWithData)

		tx.GET("/export/csv", exportHandler.ExportCSV)
		tx.GET("/export/xlsx", exportHandler.ExportXLSX)

		tx.POST("/recurring", recurringHandler.Create)
		tx.GET("/recurring", recurringHandler.List)
		tx.PUT("/recurring/:id", recurringHandler.Update)
		tx.PATCH("/recurring/:id/toggle", recurringHandler.Toggle)
		tx.DELETE("/recurring/:id", recurringHandler.Delete)

		tx.GET("", txHandler.List)
		tx.POST("", txHandler.Create)
		tx.PUT("/:id", txHandler.Update)
		tx.DELETE("/:id", txHandler.Delete)
	}

	goalHandler := handler.NewGoalHandler(db)
	goals := protected.Group("/goals")
	{
		goals.GET("", goalHandler.List)
		goals.POST("", goalHandler.Create)
		goals.PUT("/:id", goalHandler.Update)
		goals.DELETE("/:id", goalHandler.Delete)
		goals.POST("/:id/add-money", goalHandler.AddMoney)
	}

	timeout := time.Duration(cfg.Provider.TimeoutSec) * time.Second
	ocrClient := provider.NewOCRClient(cfg.Provider.OCRURL, cfg.Provider.OCRKey, timeout)
	receiptHandler := handler.NewReceiptHandler(ocrClient, cfg.Upload.MaxSizeMB)
	protected.POST("/receipts/scan", receiptHandler.Scan)

	chatClient := provider.NewChatClient(cfg.Provider.ChatURL, cfg.Provider.ChatKey, cfg.Provider.ChatModel, timeout)
	chatHandler := handler.NewChatHandler(db, chatClient)
	protected.POST("/chat", chatHandler.Ask)

	return r
}
