package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"opossum/internal/models"
)

// ItemRepository stores ERP items and item groups.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *Database) *ItemRepository {
	return &ItemRepository{db: db.DB}
}

type ItemFilter struct {
	Search   string
	Synced   *bool
	Page     int
	Limit    int
	Disabled *bool
}

func (r *ItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if filter.Synced != nil {
		query = query.Where("sync_with_hiboutik = ?", *filter.Synced)
	}
	if filter.Disabled != nil {
		query = query.Where("disabled = ?", *filter.Disabled)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var items []models.Item
	if err := query.Order("code").Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, total, nil
}

func (r *ItemRepository) GetItem(ctx context.Context, code string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "code = ?", code).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ListSyncable returns the enabled items flagged for Hiboutik sync.
func (r *ItemRepository) ListSyncable(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("sync_with_hiboutik = ? AND disabled = ?", true, false).
		Order("code").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list syncable items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "hiboutik_id = ?", externalID).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *ItemRepository) SetExternalID(ctx context.Context, code, externalID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("code = ?", code).
		Update("hiboutik_id", externalID)
	if result.Error != nil {
		return fmt.Errorf("failed to set hiboutik id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) ItemGroupTaxTemplate(ctx context.Context, group string) (string, error) {
	var itemGroup models.ItemGroup
	if err := r.db.WithContext(ctx).First(&itemGroup, "name = ?", group).Error; err != nil {
		return "", notFound(err)
	}
	return itemGroup.TaxTemplate, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s: %w", item.Code, ErrDuplicate)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Delete(&models.Item{}, "code = ?", code)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpsertItemGroup creates the group or replaces its tax template.
func (r *ItemRepository) UpsertItemGroup(ctx context.Context, group *models.ItemGroup) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"tax_template", "updated_at"}),
	}).Create(group).Error
	if err != nil {
		return fmt.Errorf("failed to save item group: %w", err)
	}
	return nil
}
