package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"opossum/internal/models"
)

// InvoiceRepository stores POS invoices. Invoices are unique per sale id.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *Database) *InvoiceRepository {
	return &InvoiceRepository{db: db.DB}
}

// CreateInvoice stores inv with its lines. When an invoice already exists for
// the same sale, inv is replaced by the stored invoice and false is returned.
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, inv *models.POSInvoice) (bool, error) {
	if inv.SaleID != nil {
		existing, err := r.GetBySaleID(ctx, *inv.SaleID)
		if err == nil {
			*inv = *existing
			return false, nil
		}
		if err != models.ErrNotFound {
			return false, err
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(inv).Error
	})
	if err != nil {
		if inv.SaleID != nil && isUniqueViolation(err) {
			existing, getErr := r.GetBySaleID(ctx, *inv.SaleID)
			if getErr != nil {
				return false, fmt.Errorf("failed to load concurrent invoice: %w", getErr)
			}
			*inv = *existing
			return false, nil
		}
		return false, fmt.Errorf("failed to create invoice: %w", err)
	}
	return true, nil
}

func (r *InvoiceRepository) HasSale(ctx context.Context, saleID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.POSInvoice{}).Where("sale_id = ?", saleID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up sale %d: %w", saleID, err)
	}
	return count > 0, nil
}

func (r *InvoiceRepository) GetBySaleID(ctx context.Context, saleID int) (*models.POSInvoice, error) {
	var inv models.POSInvoice
	if err := r.db.WithContext(ctx).Preload("Items").First(&inv, "sale_id = ?", saleID).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (*models.POSInvoice, error) {
	var inv models.POSInvoice
	if err := r.db.WithContext(ctx).Preload("Items").First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, page, limit int) ([]models.POSInvoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.POSInvoice{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	if page < 1 {
		page = 1
	}
	var invoices []models.POSInvoice
	err := query.Preload("Items").
		Order("posting_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}
