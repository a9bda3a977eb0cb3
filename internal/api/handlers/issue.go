package handlers

import (
	"net/http"

	"opossum/internal/database"
	"opossum/internal/logger"

	"github.com/gin-gonic/gin"
)

type IssueHandler struct {
	issues *database.IssueRepository
	logger *logger.Logger
}

func NewIssueHandler(issues *database.IssueRepository, logger *logger.Logger) *IssueHandler {
	return &IssueHandler{
		issues: issues,
		logger: logger,
	}
}

func (h *IssueHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	issues, total, err := h.issues.List(c.Request.Context(), database.IssueFilter{
		Operation: c.Query("operation"),
		Severity:  c.Query("severity"),
		Resolved:  queryBool(c, "resolved"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		h.logger.Error("Failed to fetch issues: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": issues,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *IssueHandler) Get(c *gin.Context) {
	issue, err := h.issues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func (h *IssueHandler) Resolve(c *gin.Context) {
	issue, err := h.issues.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": issue})
}
