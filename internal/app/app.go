package app

import (
	"fmt"

	"golang.org/x/time/rate"

	connector "opossum/internal/connectors/hiboutik"
	"opossum/internal/config"
	"opossum/internal/database"
	"opossum/internal/events"
	"opossum/internal/logger"
	"opossum/internal/services/hiboutik"
)

// App holds the dependencies shared by the API server and the worker.
type App struct {
	DB        *database.Database
	Engine    *connector.Engine
	Publisher *events.Publisher
}

func New(cfg *config.Config, logger *logger.Logger) (*App, error) {
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var publisher *events.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 && cfg.KafkaInvoiceTopic != "" {
		publisher = events.NewPublisher(events.NewKafkaWriter(brokers, cfg.KafkaInvoiceTopic), logger)
	}

	return &App{
		DB:        db,
		Engine:    NewEngine(cfg, logger, db, publisher),
		Publisher: publisher,
	}, nil
}

// NewEngine wires the Hiboutik client and the repositories into an engine.
func NewEngine(cfg *config.Config, logger *logger.Logger, db *database.Database, publisher *events.Publisher) *connector.Engine {
	var limiter *rate.Limiter
	if cfg.Hiboutik.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Hiboutik.RateLimit), cfg.Hiboutik.RateLimit)
	}

	client := hiboutik.NewClient(hiboutik.ClientOptions{
		Account:     cfg.Hiboutik.Account,
		User:        cfg.Hiboutik.User,
		APIKey:      cfg.Hiboutik.APIKey,
		BaseURL:     cfg.Hiboutik.BaseURL,
		StoreID:     cfg.Hiboutik.StoreID,
		WarehouseID: cfg.Hiboutik.WarehouseID,
		Limiter:     limiter,
	}, logger)

	opts := connector.EngineOptions{
		Enabled:     cfg.Hiboutik.EnableSync,
		API:         client,
		Items:       database.NewItemRepository(db),
		Invoices:    database.NewInvoiceRepository(db),
		Issues:      database.NewIssueRepository(db),
		Taxes:       connector.NewTaxResolver(cfg.TaxTemplates),
		Webhook:     connector.SaleWebhook(cfg.SaleWebhookURL(), cfg.Hiboutik.WebhookAppID),
		WarehouseID: client.WarehouseID(),
	}
	if publisher != nil {
		opts.Notifier = publisher
	}
	return connector.NewEngine(opts, logger)
}

func (a *App) Close() error {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			return fmt.Errorf("failed to close publisher: %w", err)
		}
	}
	return a.DB.Close()
}
