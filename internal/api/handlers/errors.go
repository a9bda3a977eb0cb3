package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	connector "opossum/internal/connectors/hiboutik"
	"opossum/internal/database"
	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
	"opossum/internal/validation"
)

// respondError maps sync errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var rights *hiboutik.InsufficientRightsError
	var apiErr *hiboutik.APIError
	var unknown *connector.UnknownProductError

	switch {
	case errors.Is(err, connector.ErrSyncDisabled):
		c.JSON(http.StatusConflict, gin.H{"error": "Hiboutik sync is disabled"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, connector.ErrInvalidPayload), errors.Is(err, validation.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &unknown):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "external_ids": unknown.ExternalIDs})
	case errors.Is(err, connector.ErrInvalidExternalID):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, hiboutik.ErrProductNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &rights):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
			"hint":  "the Hiboutik API user needs the rights to manage webhooks",
		})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": apiErr.StatusCode})
	case errors.Is(err, hiboutik.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
