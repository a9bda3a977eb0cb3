package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"opossum/internal/api/handlers"
	"opossum/internal/api/middleware"
	"opossum/internal/config"
	"opossum/internal/database"
	"opossum/internal/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, engine handlers.SyncEngine) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins()))

	// Initialize handlers
	itemHandler := handlers.NewItemHandler(database.NewItemRepository(db), logger)
	invoiceHandler := handlers.NewInvoiceHandler(database.NewInvoiceRepository(db), logger)
	issueHandler := handlers.NewIssueHandler(database.NewIssueRepository(db), logger)
	hiboutikHandler := handlers.NewHiboutikHandler(engine, logger)
	healthHandler := handlers.NewHealthHandler(db, cfg.Hiboutik.EnableSync)

	router.GET("/health", healthHandler.Health)

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Items
		items := v1.Group("/items")
		{
			items.GET("", itemHandler.List)
			items.POST("", itemHandler.Create)
			items.POST("/sync", hiboutikHandler.SyncAll)
			items.GET("/:code", itemHandler.Get)
			items.PUT("/:code", itemHandler.Update)
			items.DELETE("/:code", itemHandler.Delete)
			items.POST("/:code/sync", hiboutikHandler.SyncItem)
		}

		v1.PUT("/item-groups/:name", itemHandler.UpsertGroup)

		// Invoices
		invoices := v1.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.List)
			invoices.GET("/:id", invoiceHandler.Get)
		}

		// Issues
		issues := v1.Group("/issues")
		{
			issues.GET("", issueHandler.List)
			issues.GET("/:id", issueHandler.Get)
			issues.POST("/:id/resolve", issueHandler.Resolve)
		}

		// Hiboutik Integration
		hiboutik := v1.Group("/hiboutik")
		{
			hiboutik.POST("/webhooks/sale", hiboutikHandler.SaleWebhook)
			hiboutik.POST("/webhooks/register", hiboutikHandler.RegisterWebhook)
			hiboutik.POST("/sales/sync", hiboutikHandler.SyncSales)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Gin router, used by the serverless handler and tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
