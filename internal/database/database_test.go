package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"opossum/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(gorm.ErrRecordNotFound))
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(newTestDatabase(t))

	for _, item := range []models.Item{
		{Code: "large-spoon", Name: "Spoon (large)", Price: decimal.RequireFromString("10.00"), SyncWithHiboutik: true},
		{Code: "fork", Name: "Fork", SyncWithHiboutik: true, Disabled: true},
		{Code: "knife", Name: "Knife", SyncWithHiboutik: false},
		{Code: "cup", Name: "Cup", SyncWithHiboutik: true},
	} {
		item := item
		require.NoError(t, repo.Create(ctx, &item))
		assert.NotEmpty(t, item.ID)
	}

	t.Run("get", func(t *testing.T) {
		item, err := repo.GetItem(ctx, "large-spoon")
		require.NoError(t, err)
		assert.Equal(t, "Spoon (large)", item.Name)
		assert.True(t, item.Price.Equal(decimal.NewFromInt(10)))

		_, err = repo.GetItem(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("duplicate code", func(t *testing.T) {
		err := repo.Create(ctx, &models.Item{Code: "cup", Name: "Another cup"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("list syncable", func(t *testing.T) {
		items, err := repo.ListSyncable(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "cup", items[0].Code)
		assert.Equal(t, "large-spoon", items[1].Code)
	})

	t.Run("external id", func(t *testing.T) {
		require.NoError(t, repo.SetExternalID(ctx, "large-spoon", "27"))

		item, err := repo.FindByExternalID(ctx, "27")
		require.NoError(t, err)
		assert.Equal(t, "large-spoon", item.Code)

		_, err = repo.FindByExternalID(ctx, "28")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, repo.SetExternalID(ctx, "nope", "1"), models.ErrNotFound)
	})

	t.Run("list with filter", func(t *testing.T) {
		synced := true
		items, total, err := repo.List(ctx, ItemFilter{Synced: &synced, Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 2)

		items, total, err = repo.List(ctx, ItemFilter{Search: "kni"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "knife", items[0].Code)
	})

	t.Run("item group tax template", func(t *testing.T) {
		require.NoError(t, repo.UpsertItemGroup(ctx, &models.ItemGroup{Name: "Cutlery", TaxTemplate: "TVA 20%"}))
		require.NoError(t, repo.UpsertItemGroup(ctx, &models.ItemGroup{Name: "Cutlery", TaxTemplate: "TVA 10%"}))

		template, err := repo.ItemGroupTaxTemplate(ctx, "Cutlery")
		require.NoError(t, err)
		assert.Equal(t, "TVA 10%", template)

		_, err = repo.ItemGroupTaxTemplate(ctx, "Plates")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "knife"))
		assert.ErrorIs(t, repo.Delete(ctx, "knife"), models.ErrNotFound)
	})
}

func TestInvoiceRepositoryIsIdempotentPerSale(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(newTestDatabase(t))
	saleID := 42
	newInvoice := func() *models.POSInvoice {
		id := saleID
		return &models.POSInvoice{
			SaleID:      &id,
			PostingDate: time.Date(2021, 4, 26, 15, 6, 34, 0, time.UTC),
			Items: []models.POSInvoiceItem{
				{ItemCode: "large-spoon", ExternalID: "3", Qty: 2},
				{ItemCode: "fork", ExternalID: "37", Qty: 1},
			},
		}
	}

	first := newInvoice()
	created, err := repo.CreateInvoice(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	second := newInvoice()
	created, err = repo.CreateInvoice(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Items, 2)

	exists, err := repo.HasSale(ctx, saleID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.HasSale(ctx, 43)
	require.NoError(t, err)
	assert.False(t, exists)

	invoices, total, err := repo.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, invoices, 1)
	assert.Len(t, invoices[0].Items, 2)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSubmitted, got.Status)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestInvoiceRepositoryAllowsInvoicesWithoutSaleID(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(newTestDatabase(t))

	for i := 0; i < 2; i++ {
		created, err := repo.CreateInvoice(ctx, &models.POSInvoice{
			PostingDate: time.Now(),
			Items:       []models.POSInvoiceItem{{ItemCode: "cup", ExternalID: "5", Qty: 1}},
		})
		require.NoError(t, err)
		assert.True(t, created)
	}
}

func TestIssueRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository(newTestDatabase(t))

	first := &models.Issue{
		Subject:     "large-spoon",
		Operation:   models.IssueOperationItemSync,
		Code:        "API_ERROR",
		Severity:    models.IssueSeverityMedium,
		Explanation: "first failure",
	}
	require.NoError(t, repo.Record(ctx, first))

	again := &models.Issue{
		Subject:     "large-spoon",
		Operation:   models.IssueOperationItemSync,
		Code:        "API_ERROR",
		Severity:    models.IssueSeverityMedium,
		Explanation: "second failure",
	}
	require.NoError(t, repo.Record(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	issues, total, err := repo.List(ctx, IssueFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "second failure", issues[0].Explanation)

	require.NoError(t, repo.ResolveSubject(ctx, "large-spoon", models.IssueOperationItemSync))
	resolved := true
	_, total, err = repo.List(ctx, IssueFilter{Resolved: &resolved})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	other := &models.Issue{
		Subject:     "webhook",
		Operation:   models.IssueOperationWebhook,
		Code:        "INSUFFICIENT_RIGHTS",
		Severity:    models.IssueSeverityCritical,
		Explanation: "forbidden",
	}
	require.NoError(t, repo.Record(ctx, other))
	got, err := repo.Resolve(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
	assert.NotNil(t, got.ResolvedAt)

	_, err = repo.Resolve(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
