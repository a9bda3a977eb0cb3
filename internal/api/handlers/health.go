package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	db          Pinger
	syncEnabled bool
}

func NewHealthHandler(db Pinger, syncEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, syncEnabled: syncEnabled}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"hiboutik_sync": h.syncEnabled,
	})
}
