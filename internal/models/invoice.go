package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// POSInvoice is an invoice received from the external POS.
type POSInvoice struct {
	ID           string           `json:"id" gorm:"type:uuid;primaryKey"`
	SaleID       *int             `json:"sale_id" gorm:"uniqueIndex"`
	UniqueSaleID string           `json:"unique_sale_id"`
	PostingDate  time.Time        `json:"posting_date" gorm:"not null"`
	Currency     string           `json:"currency"`
	Total        decimal.Decimal  `json:"total" gorm:"type:decimal(10,2)"`
	Status       InvoiceStatus    `json:"status" gorm:"default:SUBMITTED"`
	Items        []POSInvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type POSInvoiceItem struct {
	ID         string          `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceID  string          `json:"invoice_id" gorm:"type:uuid;index;not null"`
	ItemCode   string          `json:"item_code"`
	ExternalID string          `json:"external_id" gorm:"not null"`
	Qty        int             `json:"qty"`
	Rate       decimal.Decimal `json:"rate" gorm:"type:decimal(10,2)"`
	CreatedAt  time.Time       `json:"created_at"`
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSubmitted InvoiceStatus = "SUBMITTED"
)

func (inv *POSInvoice) BeforeCreate(tx *gorm.DB) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	return nil
}

func (it *POSInvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	return nil
}
