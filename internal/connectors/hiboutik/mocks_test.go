package hiboutik

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stretchr/testify/mock"

	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID int) (*hiboutik.Product, error) {
	args := m.Called(ctx, productID)
	product, _ := args.Get(0).(*hiboutik.Product)
	return product, args.Error(1)
}

func (m *mockCatalog) PostProduct(ctx context.Context, data hiboutik.ProductData) (int, error) {
	args := m.Called(ctx, data)
	return args.Int(0), args.Error(1)
}

func (m *mockCatalog) UpdateProduct(ctx context.Context, productID int, update []hiboutik.ProductAttribute) error {
	return m.Called(ctx, productID, update).Error(0)
}

func (m *mockCatalog) GetWebhooks(ctx context.Context) ([]hiboutik.Webhook, error) {
	args := m.Called(ctx)
	webhooks, _ := args.Get(0).([]hiboutik.Webhook)
	return webhooks, args.Error(1)
}

func (m *mockCatalog) PostWebhook(ctx context.Context, webhook hiboutik.Webhook) (int, error) {
	args := m.Called(ctx, webhook)
	return args.Int(0), args.Error(1)
}

func (m *mockCatalog) DeleteWebhook(ctx context.Context, webhookID int) error {
	return m.Called(ctx, webhookID).Error(0)
}

func (m *mockCatalog) PostInventoryInput(ctx context.Context, productID, quantity int) (int, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *mockCatalog) GetClosedSalesOnDay(ctx context.Context, day time.Time) ([]hiboutik.Sale, error) {
	args := m.Called(ctx, day)
	sales, _ := args.Get(0).([]hiboutik.Sale)
	return sales, args.Error(1)
}

// fakeStore is an in-memory ItemLookup and InvoiceCreator.
type fakeStore struct {
	items       map[string]*models.Item
	groups      map[string]string
	invoices    map[int]*models.POSInvoice
	created     []*models.POSInvoice
	externalIDs map[string]string
}

func newFakeStore(items ...models.Item) *fakeStore {
	s := &fakeStore{
		items:       make(map[string]*models.Item),
		groups:      make(map[string]string),
		invoices:    make(map[int]*models.POSInvoice),
		externalIDs: make(map[string]string),
	}
	for i := range items {
		item := items[i]
		s.items[item.Code] = &item
	}
	return s
}

func (s *fakeStore) GetItem(ctx context.Context, code string) (*models.Item, error) {
	item, ok := s.items[code]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *fakeStore) ListSyncable(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	for _, code := range sortedKeys(s.items) {
		item := s.items[code]
		if item.SyncWithHiboutik && !item.Disabled {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *fakeStore) FindByExternalID(ctx context.Context, externalID string) (*models.Item, error) {
	for _, item := range s.items {
		if item.HiboutikID == externalID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStore) ItemGroupTaxTemplate(ctx context.Context, group string) (string, error) {
	template, ok := s.groups[group]
	if !ok {
		return "", models.ErrNotFound
	}
	return template, nil
}

func (s *fakeStore) SetExternalID(ctx context.Context, code, externalID string) error {
	item, ok := s.items[code]
	if !ok {
		return models.ErrNotFound
	}
	item.HiboutikID = externalID
	s.externalIDs[code] = externalID
	return nil
}

func (s *fakeStore) CreateInvoice(ctx context.Context, inv *models.POSInvoice) (bool, error) {
	if inv.SaleID != nil {
		if existing, ok := s.invoices[*inv.SaleID]; ok {
			*inv = *existing
			return false, nil
		}
	}
	inv.ID = fmt.Sprintf("inv-%d", len(s.created)+1)
	if inv.SaleID != nil {
		s.invoices[*inv.SaleID] = inv
	}
	s.created = append(s.created, inv)
	return true, nil
}

func (s *fakeStore) HasSale(ctx context.Context, saleID int) (bool, error) {
	_, ok := s.invoices[saleID]
	return ok, nil
}

func sortedKeys(m map[string]*models.Item) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type recordingNotifier struct {
	invoices []*models.POSInvoice
	err      error
}

func (n *recordingNotifier) InvoiceCreated(ctx context.Context, inv *models.POSInvoice) error {
	n.invoices = append(n.invoices, inv)
	return n.err
}

type fakeIssues struct {
	recorded []*models.Issue
	resolved []string
}

func (f *fakeIssues) Record(ctx context.Context, issue *models.Issue) error {
	f.recorded = append(f.recorded, issue)
	return nil
}

func (f *fakeIssues) ResolveSubject(ctx context.Context, subject string, operation models.IssueOperation) error {
	f.resolved = append(f.resolved, string(operation)+":"+subject)
	return nil
}
