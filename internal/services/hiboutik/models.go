package hiboutik

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a Hiboutik product
type Product struct {
	ID              int             `json:"product_id"`
	Model           string          `json:"product_model"`
	Price           decimal.Decimal `json:"product_price"`
	VAT             int             `json:"product_vat"`
	Arch            int             `json:"product_arch"`
	StockManagement int             `json:"product_stock_management"`
	Barcode         string          `json:"product_barcode,omitempty"`
	StockAvailable  []ProductStock  `json:"stock_available"`
}

// ProductStock is the stock level of a product in one warehouse
type ProductStock struct {
	WarehouseID    int `json:"warehouse_id"`
	ProductSize    int `json:"product_size"`
	StockAvailable int `json:"stock_available"`
}

// ProductData holds the writable attributes of a product, in the order they
// are compared and updated.
type ProductData struct {
	Model           string
	Price           decimal.Decimal
	VAT             int
	Arch            int
	StockManagement int
}

const (
	AttrModel           = "product_model"
	AttrPrice           = "product_price"
	AttrVAT             = "product_vat"
	AttrArch            = "product_arch"
	AttrStockManagement = "product_stock_management"
)

// Data returns the writable attributes of a remote product.
func (p *Product) Data() ProductData {
	return ProductData{
		Model:           p.Model,
		Price:           p.Price,
		VAT:             p.VAT,
		Arch:            p.Arch,
		StockManagement: p.StockManagement,
	}
}

// StockIn returns the stock level for a warehouse, falling back to the first
// entry. ok is false when the product carries no stock information.
func (p *Product) StockIn(warehouseID int) (stock int, ok bool) {
	if p == nil || len(p.StockAvailable) == 0 {
		return 0, false
	}
	for _, s := range p.StockAvailable {
		if s.WarehouseID == warehouseID {
			return s.StockAvailable, true
		}
	}
	return p.StockAvailable[0].StockAvailable, true
}

// Form encodes the product data as a Hiboutik POST body.
func (d ProductData) Form() url.Values {
	form := url.Values{}
	for _, attr := range d.Attributes() {
		form.Set(attr.Name, attr.NewValue)
	}
	return form
}

// Attributes lists every writable attribute with its wire value.
func (d ProductData) Attributes() []ProductAttribute {
	return []ProductAttribute{
		{Name: AttrModel, NewValue: d.Model},
		{Name: AttrPrice, NewValue: d.Price.StringFixed(2)},
		{Name: AttrVAT, NewValue: strconv.Itoa(d.VAT)},
		{Name: AttrArch, NewValue: strconv.Itoa(d.Arch)},
		{Name: AttrStockManagement, NewValue: strconv.Itoa(d.StockManagement)},
	}
}

// Diff returns the attributes of d that differ from current, in attribute
// order. Prices compare by value so "10" and "10.00" are equal.
func (d ProductData) Diff(current ProductData) []ProductAttribute {
	var update []ProductAttribute
	want := d.Attributes()
	have := current.Attributes()
	for i, attr := range want {
		if attr.Name == AttrPrice {
			if !d.Price.Equal(current.Price) {
				update = append(update, attr)
			}
			continue
		}
		if attr.NewValue != have[i].NewValue {
			update = append(update, attr)
		}
	}
	return update
}

// ProductAttribute is a single attribute update
type ProductAttribute struct {
	Name     string `json:"product_attribute"`
	NewValue string `json:"new_value"`
}

func (a ProductAttribute) Form() url.Values {
	return url.Values{
		"product_attribute": {a.Name},
		"new_value":         {a.NewValue},
	}
}

// Webhook represents a Hiboutik webhook registration
type Webhook struct {
	ID       int    `json:"webhook_id,omitempty"`
	Label    string `json:"webhook_label"`
	URL      string `json:"webhook_url"`
	Action   string `json:"webhook_action"`
	AppIDInt string `json:"webhook_app_id_int"`
}

func (w Webhook) Form() url.Values {
	return url.Values{
		"webhook_label":      {w.Label},
		"webhook_url":        {w.URL},
		"webhook_action":     {w.Action},
		"webhook_app_id_int": {w.AppIDInt},
	}
}

// Sale represents a closed Hiboutik sale
type Sale struct {
	ID           int             `json:"sale_id"`
	UniqueSaleID string          `json:"unique_sale_id"`
	StoreID      int             `json:"store_id"`
	CreatedAt    Timestamp       `json:"created_at"`
	CompletedAt  Timestamp       `json:"completed_at"`
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	Payment      string          `json:"payment"`
	LineItems    []SaleLineItem  `json:"line_items"`
}

// SaleLineItem is one line of a sale
type SaleLineItem struct {
	LineItemID   int             `json:"line_item_id"`
	ProductID    int             `json:"product_id"`
	Quantity     int             `json:"quantity"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductModel string          `json:"product_model"`
	VAT          decimal.Decimal `json:"vat"`
}

// TimestampLayout is the datetime format used across the Hiboutik API.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp decodes Hiboutik datetimes. The zero date "0000-00-00 00:00:00"
// decodes to the zero time.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "0000-00-00") {
		return time.Time{}, nil
	}
	for _, layout := range []string{TimestampLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid hiboutik timestamp %q", value)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("0000-00-00 00:00:00")
	}
	return json.Marshal(t.Format(TimestampLayout))
}
