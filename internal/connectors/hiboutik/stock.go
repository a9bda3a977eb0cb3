package hiboutik

import (
	"context"
	"fmt"

	"opossum/internal/logger"
	"opossum/internal/validation"
)

// StockSyncer brings the remote stock of a synced item in line with the ERP
// by posting inventory inputs.
type StockSyncer struct {
	api         RemoteCatalog
	warehouseID int
	logger      *logger.Logger
}

func NewStockSyncer(api RemoteCatalog, warehouseID int, logger *logger.Logger) *StockSyncer {
	return &StockSyncer{
		api:         api,
		warehouseID: warehouseID,
		logger:      logger,
	}
}

// Sync posts the difference between the local and remote stock and returns
// it. Quantities are truncated to whole units; one that does not fit an
// inventory input is an ItemError.
func (s *StockSyncer) Sync(ctx context.Context, synced *SyncedItem) (int, error) {
	item := synced.Item
	if !item.IsStockItem {
		return 0, nil
	}

	local, ok := validation.StockUnits(item.StockQty)
	if !ok {
		return 0, validation.StockQtyError(item.Code)
	}
	delta := local
	if remote, ok := synced.Product.StockIn(s.warehouseID); ok {
		delta = local - remote
	}
	if delta == 0 {
		s.logger.Debug("Stock of item %s is up to date", item.Code)
		return 0, nil
	}

	if _, err := s.api.PostInventoryInput(ctx, synced.ExternalID, delta); err != nil {
		return 0, fmt.Errorf("failed to post inventory input for item %s: %w", item.Code, err)
	}
	s.logger.Info("Posted inventory input of %d for item %s", delta, item.Code)
	return delta, nil
}
