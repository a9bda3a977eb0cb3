package handlers

import (
	"net/http"

	"opossum/internal/database"
	"opossum/internal/logger"
	"opossum/internal/models"
	"opossum/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ItemHandler struct {
	items  *database.ItemRepository
	logger *logger.Logger
}

func NewItemHandler(items *database.ItemRepository, logger *logger.Logger) *ItemHandler {
	return &ItemHandler{
		items:  items,
		logger: logger,
	}
}

type itemRequest struct {
	Code             string           `json:"code"`
	Name             *string          `json:"name"`
	ItemGroup        *string          `json:"item_group"`
	TaxTemplate      *string          `json:"tax_template"`
	Price            *decimal.Decimal `json:"price"`
	Disabled         *bool            `json:"disabled"`
	IsStockItem      *bool            `json:"is_stock_item"`
	StockQty         *decimal.Decimal `json:"stock_qty"`
	SyncWithHiboutik *bool            `json:"sync_with_hiboutik"`
}

func (r itemRequest) apply(item *models.Item) {
	if r.Name != nil {
		item.Name = *r.Name
	}
	if r.ItemGroup != nil {
		item.ItemGroup = *r.ItemGroup
	}
	if r.TaxTemplate != nil {
		item.TaxTemplate = *r.TaxTemplate
	}
	if r.Price != nil {
		item.Price = *r.Price
	}
	if r.Disabled != nil {
		item.Disabled = *r.Disabled
	}
	if r.IsStockItem != nil {
		item.IsStockItem = *r.IsStockItem
	}
	if r.StockQty != nil {
		item.StockQty = *r.StockQty
	}
	if r.SyncWithHiboutik != nil {
		item.SyncWithHiboutik = *r.SyncWithHiboutik
	}
}

func (h *ItemHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	items, total, err := h.items.List(c.Request.Context(), database.ItemFilter{
		Search:   c.Query("search"),
		Synced:   queryBool(c, "synced"),
		Disabled: queryBool(c, "disabled"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("Failed to fetch items: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.GetItem(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *ItemHandler) Create(c *gin.Context) {
	var request itemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.Item{Code: request.Code}
	request.apply(&item)
	if err := validation.ValidateItem(&item); err != nil {
		respondError(c, err)
		return
	}

	if err := h.items.Create(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (h *ItemHandler) Update(c *gin.Context) {
	item, err := h.items.GetItem(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	var request itemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	request.apply(item)
	if err := validation.ValidateItem(item); err != nil {
		respondError(c, err)
		return
	}

	if err := h.items.Save(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.items.Delete(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpsertGroup sets the tax template inherited by the items of a group
func (h *ItemHandler) UpsertGroup(c *gin.Context) {
	var request struct {
		TaxTemplate string `json:"tax_template"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.ItemGroup{Name: c.Param("name"), TaxTemplate: request.TaxTemplate}
	if err := h.items.UpsertItemGroup(c.Request.Context(), &group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save item group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": group})
}
