package handler

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"opossum/internal/api"
	"opossum/internal/app"
	"opossum/internal/config"
	"opossum/internal/logger"
)

var (
	routerOnce sync.Once
	router     *gin.Engine
	routerErr  error
)

// initRouter builds the API router once per serverless instance
func initRouter() (*gin.Engine, error) {
	routerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			routerErr = fmt.Errorf("configuration: %w", err)
			return
		}

		gin.SetMode(gin.ReleaseMode)
		log := logger.New(cfg.LogLevel)

		application, err := app.New(cfg, log)
		if err != nil {
			routerErr = fmt.Errorf("initialization: %w", err)
			return
		}

		router = api.New(cfg, log, application.DB, application.Engine).Router()
	})
	return router, routerErr
}

// Handler serves the API as a serverless function
func Handler(w http.ResponseWriter, r *http.Request) {
	router, err := initRouter()
	if err != nil {
		http.Error(w, fmt.Sprintf("Service initialization failed: %v", err), http.StatusInternalServerError)
		return
	}

	router.ServeHTTP(w, r)
}
