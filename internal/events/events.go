package events

import (
	"encoding/json"
	"time"
)

const (
	TypeItemSaved      = "item.saved"
	TypeItemDisabled   = "item.disabled"
	TypeSaleReceived   = "sale.received"
	TypeInvoiceCreated = "invoice.created"
)

// Event is the envelope exchanged on every topic. Subject is the item code
// for item events and the invoice id for invoice events.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Subject     string          `json:"subject"`
	ContentType string          `json:"content_type,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}
