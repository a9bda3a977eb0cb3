package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	connector "opossum/internal/connectors/hiboutik"
	"opossum/internal/logger"
	"opossum/internal/models"
)

// SyncEngine is the engine surface exposed over HTTP.
type SyncEngine interface {
	SyncItem(ctx context.Context, code string) (*connector.SyncResult, error)
	SyncAll(ctx context.Context) (*connector.SyncReport, error)
	RegisterSaleWebhook(ctx context.Context) (connector.WebhookResult, error)
	HandleSalePayload(ctx context.Context, contentType string, body []byte) (*models.POSInvoice, bool, error)
	SyncSalesOnDay(ctx context.Context, day time.Time) (*connector.SalesReplayReport, error)
}

type HiboutikHandler struct {
	engine SyncEngine
	logger *logger.Logger
}

func NewHiboutikHandler(engine SyncEngine, logger *logger.Logger) *HiboutikHandler {
	return &HiboutikHandler{
		engine: engine,
		logger: logger,
	}
}

// SyncItem pushes one item to Hiboutik
func (h *HiboutikHandler) SyncItem(c *gin.Context) {
	code := c.Param("code")

	result, err := h.engine.SyncItem(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Failed to sync item %s: %v", code, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// SyncAll pushes every syncable item. Partial failures are reported with 207.
func (h *HiboutikHandler) SyncAll(c *gin.Context) {
	report, err := h.engine.SyncAll(c.Request.Context())
	if report == nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"data":    report,
		"message": strconv.Itoa(len(report.Synced)) + " item(s) synced",
	})
}

// SaleWebhook receives the sale webhook posted by Hiboutik
func (h *HiboutikHandler) SaleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	invoice, created, err := h.engine.HandleSalePayload(c.Request.Context(), c.ContentType(), payload)
	if err != nil {
		h.logger.Error("Failed to process sale webhook: %v", err)
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": invoice, "created": created})
}

// RegisterWebhook points the Hiboutik sale webhook at this service
func (h *HiboutikHandler) RegisterWebhook(c *gin.Context) {
	result, err := h.engine.RegisterSaleWebhook(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to register sale webhook: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SyncSales replays the closed sales of ?day=YYYY-MM-DD, today by default
func (h *HiboutikHandler) SyncSales(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be formatted as YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	report, err := h.engine.SyncSalesOnDay(c.Request.Context(), day)
	if report == nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"data": report})
}
