package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is the ERP catalog item synchronized to the POS.
type Item struct {
	ID               string          `json:"id" gorm:"type:uuid;primaryKey"`
	Code             string          `json:"code" gorm:"uniqueIndex;not null"`
	Name             string          `json:"name" gorm:"not null"`
	ItemGroup        string          `json:"item_group"`
	TaxTemplate      string          `json:"tax_template"`
	Price            decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Disabled         bool            `json:"disabled" gorm:"default:false"`
	IsStockItem      bool            `json:"is_stock_item" gorm:"default:false"`
	StockQty         decimal.Decimal `json:"stock_qty" gorm:"type:decimal(18,6)"`
	SyncWithHiboutik bool            `json:"sync_with_hiboutik" gorm:"default:false"`
	HiboutikID       string          `json:"hiboutik_id" gorm:"index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ItemGroup carries the tax template inherited by items that have none.
type ItemGroup struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	TaxTemplate string    `json:"tax_template"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

func (g *ItemGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}
