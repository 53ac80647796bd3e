// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bullion/internal/handlers"
	"bullion/internal/metrics"
	"bullion/internal/middleware"
	"bullion/internal/services"
	"bullion/internal/validator"

	_ "bullion/internal/docs" // Import swagger docs
)

// Dependencies are the services the router serves.
type Dependencies struct {
	Accounts   services.AccountServicer
	Ledger     services.LedgerServicer
	Statements services.StatementServicer
	Audit      services.AuditServicer

	// Metrics is optional. A handler, when set, is mounted at /metrics.
	Recorder       metrics.Recorder
	MetricsHandler http.Handler

	// EnableSwagger mounts the API docs at /swagger.
	EnableSwagger bool
}

// NewRouter builds the Gin engine with middleware and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	// Registry records keep their exact decimal text through JSON binding.
	binding.EnableDecoderUseNumber = true
	validator.Register()

	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	accountHandler := handlers.NewAccountHandler(deps.Accounts, deps.Audit)
	ledgerHandler := handlers.NewLedgerHandler(deps.Ledger, deps.Audit)
	statementHandler := handlers.NewStatementHandler(deps.Statements)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(recorder))
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NotFound())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	if deps.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.POST("/:id/registry", ledgerHandler.CreateEntry)
	accounts.POST("/:id/registry/bulk", ledgerHandler.CreateEntries)
	accounts.GET("/:id/registry", ledgerHandler.GetEntries)
	accounts.GET("/:id/registry/export", ledgerHandler.ExportRegistry)
	accounts.GET("/:id/statement", statementHandler.GetStatement)

	registry := v1.Group("/registry")
	registry.GET("/:id", ledgerHandler.GetEntryByID)
	registry.DELETE("/:id", ledgerHandler.DeleteEntry)

	v1.POST("/statements/compute", statementHandler.Compute)

	return router
}
