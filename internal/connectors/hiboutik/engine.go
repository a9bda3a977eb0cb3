package hiboutik

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opossum/internal/logger"
	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
	"opossum/internal/validation"
)

// ItemLookup gives the engine access to the ERP items.
type ItemLookup interface {
	GetItem(ctx context.Context, code string) (*models.Item, error)
	ListSyncable(ctx context.Context) ([]models.Item, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Item, error)
	ItemGroupTaxTemplate(ctx context.Context, group string) (string, error)
	SetExternalID(ctx context.Context, code, externalID string) error
}

// InvoiceCreator records invoices. CreateInvoice reports false when an
// invoice for the same sale already existed, in which case inv is replaced
// by the stored one.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, inv *models.POSInvoice) (bool, error)
	HasSale(ctx context.Context, saleID int) (bool, error)
}

// InvoiceNotifier is told about every new invoice.
type InvoiceNotifier interface {
	InvoiceCreated(ctx context.Context, inv *models.POSInvoice) error
}

type EngineOptions struct {
	Enabled  bool
	API      RemoteCatalog
	Items    ItemLookup
	Invoices InvoiceCreator
	Notifier InvoiceNotifier
	Issues   IssueRecorder
	Taxes    TaxResolver
	Webhook  hiboutik.Webhook
	// WarehouseID receives inventory inputs and is read for remote stock.
	WarehouseID int
}

// Engine drives items to the POS and sales back into the ERP.
type Engine struct {
	enabled   bool
	api       RemoteCatalog
	connector *HiboutikConnector
	stock     *StockSyncer
	items     ItemLookup
	invoices  InvoiceCreator
	notifier  InvoiceNotifier
	issues    IssueRecorder
	taxes     TaxResolver
	webhook   hiboutik.Webhook
	logger    *logger.Logger
}

func NewEngine(opts EngineOptions, logger *logger.Logger) *Engine {
	return &Engine{
		enabled:   opts.Enabled,
		api:       opts.API,
		connector: New(opts.API, logger),
		stock:     NewStockSyncer(opts.API, opts.WarehouseID, logger),
		items:     opts.Items,
		invoices:  opts.Invoices,
		notifier:  opts.Notifier,
		issues:    opts.Issues,
		taxes:     opts.Taxes,
		webhook:   opts.Webhook,
		logger:    logger,
	}
}

func (e *Engine) Enabled() bool {
	return e.enabled
}

// SyncResult summarizes the sync of one item.
type SyncResult struct {
	Code       string   `json:"code"`
	ExternalID int      `json:"hiboutik_id"`
	Created    bool     `json:"created"`
	Updated    []string `json:"updated,omitempty"`
	StockDelta int      `json:"stock_delta"`
}

// SyncItem pushes one item, then its stock, to Hiboutik.
func (e *Engine) SyncItem(ctx context.Context, code string) (*SyncResult, error) {
	if !e.enabled {
		return nil, ErrSyncDisabled
	}

	item, err := e.items.GetItem(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", code, err)
	}
	return e.syncItem(ctx, item)
}

func (e *Engine) syncItem(ctx context.Context, item *models.Item) (*SyncResult, error) {
	result, err := e.pushItem(ctx, item)
	if err != nil {
		e.recordIssue(ctx, item.Code, models.IssueOperationItemSync, err)
		return result, err
	}
	e.resolveIssues(ctx, item.Code, models.IssueOperationItemSync)
	return result, nil
}

func (e *Engine) pushItem(ctx context.Context, item *models.Item) (*SyncResult, error) {
	if err := validation.ValidateItem(item); err != nil {
		return nil, err
	}

	vat, err := e.resolveVAT(ctx, item)
	if err != nil {
		return nil, err
	}

	previous := item.HiboutikID
	synced, err := e.connector.Sync(ctx, item, vat)
	if err != nil {
		return nil, err
	}

	if item.HiboutikID != previous {
		if err := e.items.SetExternalID(ctx, item.Code, item.HiboutikID); err != nil {
			return nil, fmt.Errorf("failed to store hiboutik id %s for item %s: %w", item.HiboutikID, item.Code, err)
		}
	}

	result := &SyncResult{
		Code:       item.Code,
		ExternalID: synced.ExternalID,
		Created:    synced.Created,
	}
	for _, attr := range synced.Updated {
		result.Updated = append(result.Updated, attr.Name)
	}

	delta, err := e.stock.Sync(ctx, synced)
	if err != nil {
		return result, err
	}
	result.StockDelta = delta
	return result, nil
}

func (e *Engine) resolveVAT(ctx context.Context, item *models.Item) (int, error) {
	template := item.TaxTemplate
	if template == "" && item.ItemGroup != "" {
		groupTemplate, err := e.items.ItemGroupTaxTemplate(ctx, item.ItemGroup)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("failed to get tax template of item group %s: %w", item.ItemGroup, err)
		}
		template = groupTemplate
	}
	return e.taxes.TaxID(template), nil
}

// ItemFailure is an item SyncAll could not sync.
type ItemFailure struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type SyncReport struct {
	Synced []SyncResult  `json:"synced"`
	Failed []ItemFailure `json:"failed"`
}

// SyncAll syncs every syncable item, carrying on past failures. The returned
// error joins every per-item failure.
func (e *Engine) SyncAll(ctx context.Context) (*SyncReport, error) {
	if !e.enabled {
		return nil, ErrSyncDisabled
	}

	items, err := e.items.ListSyncable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list syncable items: %w", err)
	}

	report := &SyncReport{Synced: []SyncResult{}, Failed: []ItemFailure{}}
	var errs []error
	for i := range items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := e.syncItem(ctx, &items[i])
		if err != nil {
			e.logger.Error("Failed to sync item %s: %v", items[i].Code, err)
			report.Failed = append(report.Failed, ItemFailure{Code: items[i].Code, Error: err.Error()})
			errs = append(errs, err)
			continue
		}
		report.Synced = append(report.Synced, *result)
	}

	e.logger.Info("Synced %d item(s) to Hiboutik, %d failure(s)", len(report.Synced), len(report.Failed))
	return report, errors.Join(errs...)
}

// RegisterSaleWebhook points the Hiboutik sale webhook at this service.
func (e *Engine) RegisterSaleWebhook(ctx context.Context) (WebhookResult, error) {
	if !e.enabled {
		return "", ErrSyncDisabled
	}
	result, err := e.connector.SetSaleWebhook(ctx, e.webhook)
	if err != nil {
		e.recordIssue(ctx, e.webhook.URL, models.IssueOperationWebhook, err)
		return "", err
	}
	e.resolveIssues(ctx, e.webhook.URL, models.IssueOperationWebhook)
	return result, nil
}

// HandleSalePayload parses a sale webhook body and records its invoice.
func (e *Engine) HandleSalePayload(ctx context.Context, contentType string, body []byte) (*models.POSInvoice, bool, error) {
	invoice, err := ParseSalePayload(contentType, body)
	if err != nil {
		e.recordIssue(ctx, "webhook", models.IssueOperationSale, err)
		return nil, false, err
	}
	return e.HandleSale(ctx, invoice)
}

// HandleSale maps every line of an invoice to its ERP item and records it.
// It reports whether a new invoice was created.
func (e *Engine) HandleSale(ctx context.Context, invoice *models.POSInvoice) (*models.POSInvoice, bool, error) {
	subject := saleSubject(invoice)
	var unknown []string
	for i := range invoice.Items {
		line := &invoice.Items[i]
		item, err := e.items.FindByExternalID(ctx, line.ExternalID)
		if errors.Is(err, models.ErrNotFound) {
			unknown = append(unknown, line.ExternalID)
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to find item for hiboutik product %s: %w", line.ExternalID, err)
		}
		line.ItemCode = item.Code
	}
	if len(unknown) > 0 {
		err := &UnknownProductError{ExternalIDs: unknown}
		e.recordIssue(ctx, subject, models.IssueOperationSale, err)
		return nil, false, err
	}

	created, err := e.invoices.CreateInvoice(ctx, invoice)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create invoice: %w", err)
	}
	e.resolveIssues(ctx, subject, models.IssueOperationSale)
	if !created {
		e.logger.Debug("Invoice %s already recorded", invoice.ID)
		return invoice, false, nil
	}

	e.logger.Info("Created POS invoice %s with %d line(s)", invoice.ID, len(invoice.Items))
	if e.notifier != nil {
		if err := e.notifier.InvoiceCreated(ctx, invoice); err != nil {
			e.logger.Warn("Failed to publish invoice %s: %v", invoice.ID, err)
		}
	}
	return invoice, true, nil
}

func saleSubject(invoice *models.POSInvoice) string {
	switch {
	case invoice.SaleID != nil:
		return fmt.Sprintf("sale %d", *invoice.SaleID)
	case invoice.UniqueSaleID != "":
		return "sale " + invoice.UniqueSaleID
	default:
		return "sale"
	}
}

// SalesReplayReport summarizes SyncSalesOnDay.
type SalesReplayReport struct {
	Day     string        `json:"day"`
	Fetched int           `json:"fetched"`
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Failed  []SaleFailure `json:"failed"`
}

type SaleFailure struct {
	SaleID int    `json:"sale_id"`
	Error  string `json:"error"`
}

// SyncSalesOnDay records the closed sales of a day that have no invoice yet.
func (e *Engine) SyncSalesOnDay(ctx context.Context, day time.Time) (*SalesReplayReport, error) {
	if !e.enabled {
		return nil, ErrSyncDisabled
	}

	subject := day.Format("2006-01-02")
	sales, err := e.api.GetClosedSalesOnDay(ctx, day)
	if err != nil {
		err = fmt.Errorf("failed to get closed sales: %w", err)
		e.recordIssue(ctx, subject, models.IssueOperationSalesReplay, err)
		return nil, err
	}

	report := &SalesReplayReport{Day: subject, Fetched: len(sales), Failed: []SaleFailure{}}
	var errs []error
	for _, sale := range sales {
		if sale.ID != 0 {
			exists, err := e.invoices.HasSale(ctx, sale.ID)
			if err != nil {
				return report, fmt.Errorf("failed to check sale %d: %w", sale.ID, err)
			}
			if exists {
				e.resolveIssues(ctx, fmt.Sprintf("sale %d", sale.ID), models.IssueOperationSale)
				report.Skipped++
				continue
			}
		}

		invoice, err := SaleToInvoice(sale)
		if err == nil {
			var created bool
			_, created, err = e.HandleSale(ctx, invoice)
			if err == nil && !created {
				report.Skipped++
				continue
			}
		}
		if err != nil {
			report.Failed = append(report.Failed, SaleFailure{SaleID: sale.ID, Error: err.Error()})
			errs = append(errs, fmt.Errorf("sale %d: %w", sale.ID, err))
			continue
		}
		report.Created++
	}

	e.logger.Info("Replayed sales of %s: %d fetched, %d created, %d skipped", report.Day, report.Fetched, report.Created, report.Skipped)
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	e.resolveIssues(ctx, subject, models.IssueOperationSalesReplay)
	return report, nil
}
