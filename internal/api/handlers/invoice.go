package handlers

import (
	"net/http"

	"opossum/internal/database"
	"opossum/internal/logger"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoices *database.InvoiceRepository
	logger   *logger.Logger
}

func NewInvoiceHandler(invoices *database.InvoiceRepository, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		logger:   logger,
	}
}

func (h *InvoiceHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	invoices, total, err := h.invoices.List(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to fetch invoices: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": invoices,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}
