package processors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	connector "opossum/internal/connectors/hiboutik"
	"opossum/internal/events"
	"opossum/internal/logger"
	"opossum/internal/models"
)

// SyncEngine is what the processor drives for each event.
type SyncEngine interface {
	SyncItem(ctx context.Context, code string) (*connector.SyncResult, error)
	HandleSalePayload(ctx context.Context, contentType string, body []byte) (*models.POSInvoice, bool, error)
}

type EventProcessor struct {
	engine SyncEngine
	logger *logger.Logger
}

func NewEventProcessor(engine SyncEngine, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		engine: engine,
		logger: logger,
	}
}

type itemData struct {
	Code string `json:"code"`
}

func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.TypeItemSaved, events.TypeItemDisabled:
		return ep.processItem(ctx, event)
	case events.TypeSaleReceived:
		return ep.processSale(ctx, event)
	default:
		ep.logger.Debug("Ignoring event of type %q", event.Type)
		return nil
	}
}

func (ep *EventProcessor) processItem(ctx context.Context, event events.Event) error {
	code := event.Subject
	if code == "" && len(event.Data) > 0 {
		var data itemData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("failed to parse item event data: %w", err)
		}
		code = data.Code
	}
	if code == "" {
		return fmt.Errorf("%s event %s has no item code", event.Type, event.ID)
	}

	result, err := ep.engine.SyncItem(ctx, code)
	if errors.Is(err, connector.ErrSyncDisabled) {
		ep.logger.Debug("Hiboutik sync disabled, skipping item %s", code)
		return nil
	}
	if err != nil {
		return err
	}

	ep.logger.Info("Synced item %s to Hiboutik product %d", code, result.ExternalID)
	return nil
}

// processSale accepts the sale either as a JSON object or as a JSON string
// holding the raw webhook body.
func (ep *EventProcessor) processSale(ctx context.Context, event events.Event) error {
	if len(event.Data) == 0 {
		return fmt.Errorf("sale event %s has no data", event.ID)
	}

	contentType := event.ContentType
	body := []byte(event.Data)
	var raw string
	if err := json.Unmarshal(event.Data, &raw); err == nil {
		body = []byte(raw)
		if contentType == "" {
			contentType = "application/x-www-form-urlencoded"
		}
	} else if contentType == "" {
		contentType = "application/json"
	}

	invoice, created, err := ep.engine.HandleSalePayload(ctx, contentType, body)
	if err != nil {
		return err
	}
	if created {
		ep.logger.Info("Created invoice %s from sale event %s", invoice.ID, event.ID)
	}
	return nil
}
