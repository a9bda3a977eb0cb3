package hiboutik

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"opossum/internal/logger"
)

const defaultStoreID = 1

type ClientOptions struct {
	// Account is the Hiboutik instance name, as in {account}.hiboutik.com
	Account string
	User    string
	APIKey  string

	// BaseURL overrides the API root derived from Account.
	BaseURL     string
	StoreID     int
	WarehouseID int
	HTTPClient  *http.Client
	Limiter     *rate.Limiter
}

type Client struct {
	apiRoot     string
	user        string
	apiKey      string
	storeID     int
	warehouseID int
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *logger.Logger
}

func NewClient(opts ClientOptions, logger *logger.Logger) *Client {
	apiRoot := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if apiRoot == "" && opts.Account != "" {
		apiRoot = fmt.Sprintf("https://%s.hiboutik.com/api", opts.Account)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 5)
	}
	storeID := opts.StoreID
	if storeID <= 0 {
		storeID = defaultStoreID
	}
	warehouseID := opts.WarehouseID
	if warehouseID <= 0 {
		warehouseID = storeID
	}
	return &Client{
		apiRoot:     apiRoot,
		user:        opts.User,
		apiKey:      opts.APIKey,
		storeID:     storeID,
		warehouseID: warehouseID,
		httpClient:  httpClient,
		limiter:     limiter,
		logger:      logger,
	}
}

func (c *Client) WarehouseID() int {
	return c.warehouseID
}

// GetProducts fetches every product of the store
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by ID. Hiboutik answers with a one
// element array.
func (c *Client) GetProduct(ctx context.Context, productID int) (*Product, error) {
	var products []Product
	err := c.getJSON(ctx, fmt.Sprintf("/products/%d", productID), &products)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
		}
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	return &products[0], nil
}

// PostProduct creates a product and returns its ID
func (c *Client) PostProduct(ctx context.Context, data ProductData) (int, error) {
	body, err := c.do(ctx, http.MethodPost, "/products", data.Form(), http.StatusCreated)
	if err != nil {
		return 0, err
	}
	var created struct {
		ProductID int `json:"product_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return created.ProductID, nil
}

// UpdateProduct writes each attribute with its own PUT, in order. The first
// failure stops the update.
func (c *Client) UpdateProduct(ctx context.Context, productID int, update []ProductAttribute) error {
	path := fmt.Sprintf("/product/%d", productID)
	for i, attr := range update {
		if _, err := c.do(ctx, http.MethodPut, path, attr.Form(), http.StatusOK); err != nil {
			return &PartialUpdateError{
				ProductID: productID,
				Applied:   update[:i],
				Failed:    attr,
				Err:       err,
			}
		}
	}
	return nil
}

// GetWebhooks lists the webhooks registered on the store
func (c *Client) GetWebhooks(ctx context.Context) ([]Webhook, error) {
	var webhooks []Webhook
	if err := c.getJSON(ctx, "/webhooks", &webhooks); err != nil {
		return nil, err
	}
	return webhooks, nil
}

// PostWebhook registers a webhook and returns its ID
func (c *Client) PostWebhook(ctx context.Context, webhook Webhook) (int, error) {
	body, err := c.do(ctx, http.MethodPost, "/webhooks", webhook.Form(), http.StatusOK, http.StatusCreated)
	if err != nil {
		return 0, err
	}
	var created struct {
		WebhookID int `json:"webhook_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return created.WebhookID, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, webhookID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/webhooks/%d", webhookID), nil, http.StatusOK, http.StatusNoContent)
	return err
}

// PostInventoryInput adds quantity (possibly negative) to the stock of a
// product in the client's warehouse.
func (c *Client) PostInventoryInput(ctx context.Context, productID, quantity int) (int, error) {
	form := url.Values{
		"warehouse_id": {strconv.Itoa(c.warehouseID)},
		"product_id":   {strconv.Itoa(productID)},
		"product_size": {"0"},
		"quantity":     {strconv.Itoa(quantity)},
	}
	body, err := c.do(ctx, http.MethodPost, "/inventory_inputs", form, http.StatusOK, http.StatusCreated)
	if err != nil {
		return 0, err
	}
	var created struct {
		InventoryInputID int `json:"inventory_input_id"`
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			return 0, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return created.InventoryInputID, nil
}

// GetClosedSalesOnDay lists the sales closed on the given day
func (c *Client) GetClosedSalesOnDay(ctx context.Context, day time.Time) ([]Sale, error) {
	path := fmt.Sprintf("/closed_sales/%d/%d/%d/%d", c.storeID, day.Year(), int(day.Month()), day.Day())
	var sales []Sale
	if err := c.getJSON(ctx, path, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, expected ...int) ([]byte, error) {
	if c.apiRoot == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiRoot+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.user, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("HIBOUTIK %s %s %s > %d %s", method, path, form.Encode(), resp.StatusCode, string(body))

	for _, status := range expected {
		if resp.StatusCode == status {
			return body, nil
		}
	}
	return nil, newAPIError(method, path, resp.StatusCode, body)
}
