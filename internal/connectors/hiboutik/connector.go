package hiboutik

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"opossum/internal/logger"
	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
)

// RemoteCatalog is the part of the Hiboutik API the connector drives.
type RemoteCatalog interface {
	GetProduct(ctx context.Context, productID int) (*hiboutik.Product, error)
	PostProduct(ctx context.Context, data hiboutik.ProductData) (int, error)
	UpdateProduct(ctx context.Context, productID int, update []hiboutik.ProductAttribute) error
	GetWebhooks(ctx context.Context) ([]hiboutik.Webhook, error)
	PostWebhook(ctx context.Context, webhook hiboutik.Webhook) (int, error)
	DeleteWebhook(ctx context.Context, webhookID int) error
	PostInventoryInput(ctx context.Context, productID, quantity int) (int, error)
	GetClosedSalesOnDay(ctx context.Context, day time.Time) ([]hiboutik.Sale, error)
}

type HiboutikConnector struct {
	api    RemoteCatalog
	logger *logger.Logger
}

func New(api RemoteCatalog, logger *logger.Logger) *HiboutikConnector {
	return &HiboutikConnector{
		api:    api,
		logger: logger,
	}
}

// SyncedItem is the outcome of reconciling one item. Product is the remote
// product as it was before the update, nil when it was just created.
type SyncedItem struct {
	Item       *models.Item
	ExternalID int
	Product    *hiboutik.Product
	Created    bool
	Updated    []hiboutik.ProductAttribute
}

// ProductDataFor maps a local item onto the writable product attributes.
func ProductDataFor(item *models.Item, vat int) hiboutik.ProductData {
	data := hiboutik.ProductData{
		Model: item.Name,
		Price: item.Price,
		VAT:   vat,
	}
	if item.Disabled {
		data.Arch = 1
	}
	if item.IsStockItem {
		data.StockManagement = 1
	}
	return data
}

// Sync creates the remote product of an item that has none, or pushes the
// attributes that drifted. The item's HiboutikID is set on creation.
func (sc *HiboutikConnector) Sync(ctx context.Context, item *models.Item, vat int) (*SyncedItem, error) {
	data := ProductDataFor(item, vat)

	if item.HiboutikID == "" {
		productID, err := sc.api.PostProduct(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("failed to create product for item %s: %w", item.Code, err)
		}
		item.HiboutikID = strconv.Itoa(productID)
		sc.logger.Info("Created Hiboutik product %d for item %s", productID, item.Code)
		return &SyncedItem{Item: item, ExternalID: productID, Created: true}, nil
	}

	productID, err := strconv.Atoi(item.HiboutikID)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w %q", item.Code, ErrInvalidExternalID, item.HiboutikID)
	}

	product, err := sc.api.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d for item %s: %w", productID, item.Code, err)
	}

	update := data.Diff(product.Data())
	if len(update) > 0 {
		if err := sc.api.UpdateProduct(ctx, productID, update); err != nil {
			return nil, fmt.Errorf("failed to update product %d for item %s: %w", productID, item.Code, err)
		}
		sc.logger.Info("Updated %d attribute(s) of Hiboutik product %d for item %s", len(update), productID, item.Code)
	} else {
		sc.logger.Debug("Hiboutik product %d is up to date", productID)
	}

	return &SyncedItem{Item: item, ExternalID: productID, Product: product, Updated: update}, nil
}
