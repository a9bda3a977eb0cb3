package hiboutik

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"opossum/internal/logger"
	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
)

func spoon() *models.Item {
	return &models.Item{
		Code:  "large-spoon",
		Name:  "Spoon (large)",
		Price: decimal.RequireFromString("10.00"),
	}
}

func productFor(item *models.Item, id, vat int) *hiboutik.Product {
	data := ProductDataFor(item, vat)
	return &hiboutik.Product{
		ID:              id,
		Model:           data.Model,
		Price:           data.Price,
		VAT:             data.VAT,
		Arch:            data.Arch,
		StockManagement: data.StockManagement,
	}
}

func TestProductDataFor(t *testing.T) {
	item := spoon()
	item.Disabled = true
	item.IsStockItem = true

	data := ProductDataFor(item, TaxID5_5)

	assert.Equal(t, "Spoon (large)", data.Model)
	assert.True(t, data.Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 3, data.VAT)
	assert.Equal(t, 1, data.Arch)
	assert.Equal(t, 1, data.StockManagement)
}

func TestSyncCreatesProduct(t *testing.T) {
	api := new(mockCatalog)
	item := spoon()
	api.On("PostProduct", mock.Anything, ProductDataFor(item, TaxID20)).Return(35, nil).Once()

	synced, err := New(api, logger.Nop()).Sync(context.Background(), item, TaxID20)

	require.NoError(t, err)
	assert.True(t, synced.Created)
	assert.Equal(t, 35, synced.ExternalID)
	assert.Nil(t, synced.Product)
	assert.Equal(t, "35", item.HiboutikID)
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestSyncUpdatesOutdatedProduct(t *testing.T) {
	api := new(mockCatalog)
	item := spoon()
	item.HiboutikID = "27"
	outdated := &hiboutik.Product{
		ID:    27,
		Model: item.Name + " outdated",
		Price: item.Price.Add(decimal.RequireFromString("1.24")),
		VAT:   TaxID20 + 1,
	}
	api.On("GetProduct", mock.Anything, 27).Return(outdated, nil)
	api.On("UpdateProduct", mock.Anything, 27, []hiboutik.ProductAttribute{
		{Name: hiboutik.AttrModel, NewValue: "Spoon (large)"},
		{Name: hiboutik.AttrPrice, NewValue: "10.00"},
		{Name: hiboutik.AttrVAT, NewValue: "1"},
	}).Return(nil).Once()

	synced, err := New(api, logger.Nop()).Sync(context.Background(), item, TaxID20)

	require.NoError(t, err)
	assert.False(t, synced.Created)
	assert.Same(t, outdated, synced.Product)
	assert.Len(t, synced.Updated, 3)
	api.AssertExpectations(t)
}

func TestSyncPropagatesArchState(t *testing.T) {
	tests := []struct {
		name     string
		disabled bool
		remote   int
		want     string
	}{
		{name: "activated", disabled: false, remote: 1, want: "0"},
		{name: "deactivated", disabled: true, remote: 0, want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockCatalog)
			item := spoon()
			item.HiboutikID = "42"
			product := productFor(item, 42, TaxID20)
			product.Arch = tt.remote
			item.Disabled = tt.disabled

			api.On("GetProduct", mock.Anything, 42).Return(product, nil)
			api.On("UpdateProduct", mock.Anything, 42, []hiboutik.ProductAttribute{
				{Name: hiboutik.AttrArch, NewValue: tt.want},
			}).Return(nil).Once()

			_, err := New(api, logger.Nop()).Sync(context.Background(), item, TaxID20)

			require.NoError(t, err)
			api.AssertExpectations(t)
		})
	}
}

func TestSyncSkipsUpToDateProduct(t *testing.T) {
	api := new(mockCatalog)
	item := spoon()
	item.HiboutikID = "42"
	product := productFor(item, 42, TaxID20)
	product.Price = decimal.RequireFromString("10")
	api.On("GetProduct", mock.Anything, 42).Return(product, nil)

	synced, err := New(api, logger.Nop()).Sync(context.Background(), item, TaxID20)

	require.NoError(t, err)
	assert.Empty(t, synced.Updated)
	api.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncRejectsNonNumericExternalID(t *testing.T) {
	api := new(mockCatalog)
	item := spoon()
	item.HiboutikID = "abc"

	_, err := New(api, logger.Nop()).Sync(context.Background(), item, TaxID20)

	assert.ErrorIs(t, err, ErrInvalidExternalID)
	api.AssertNotCalled(t, "PostProduct", mock.Anything, mock.Anything)
}

func TestSyncReportsMissingRemoteProduct(t *testing.T) {
	api := new(mockCatalog)
	item := spoon()
	item.HiboutikID = "42"
	api.On("GetProduct", mock.Anything, 42).Return(nil, hiboutik.ErrProductNotFound)

	_, err := New(api, logger.Nop()).Sync(context.Background(), item, TaxID20)

	assert.ErrorIs(t, err, hiboutik.ErrProductNotFound)
	api.AssertNotCalled(t, "PostProduct", mock.Anything, mock.Anything)
}
