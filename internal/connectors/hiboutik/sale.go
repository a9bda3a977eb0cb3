package hiboutik

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
)

var lineItemKey = regexp.MustCompile(`^line_items\[(\d+)\]\[([^\]]+)\]$`)

// ParseSalePayload turns a sale webhook body into an invoice. JSON bodies are
// decoded as a Sale; anything else is read as a flattened form.
func ParseSalePayload(contentType string, body []byte) (*models.POSInvoice, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	trimmed := bytes.TrimSpace(body)

	if mediaType == "application/json" || bytes.HasPrefix(trimmed, []byte("{")) {
		var sale hiboutik.Sale
		if err := json.Unmarshal(trimmed, &sale); err == nil {
			return SaleToInvoice(sale)
		} else if mediaType == "application/json" {
			return nil, &PayloadError{Field: "body", Reason: err.Error()}
		}
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return nil, &PayloadError{Field: "body", Reason: err.Error()}
	}
	return ParseSaleForm(form)
}

// ParseSaleForm reads a flattened sale such as
// line_items[0][product_id]=12&line_items[0][quantity]=2&completed_at=...
// Line items are read from index 0 and stop at the first missing index.
func ParseSaleForm(form url.Values) (*models.POSInvoice, error) {
	lines := make(map[int]map[string]string)
	for key := range form {
		m := lineItemKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if lines[index] == nil {
			lines[index] = make(map[string]string)
		}
		lines[index][m[2]] = form.Get(key)
	}

	invoice := &models.POSInvoice{
		UniqueSaleID: form.Get("unique_sale_id"),
		Currency:     form.Get("currency"),
		Status:       models.InvoiceStatusSubmitted,
	}

	if raw := form.Get("sale_id"); raw != "" {
		saleID, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &PayloadError{Field: "sale_id", Reason: "not an integer"}
		}
		invoice.SaleID = &saleID
	}

	if raw := form.Get("total"); raw != "" {
		total, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &PayloadError{Field: "total", Reason: "not a number"}
		}
		invoice.Total = total
	}

	postingDate, err := postingDate(form.Get("completed_at"), form.Get("created_at"))
	if err != nil {
		return nil, err
	}
	invoice.PostingDate = postingDate

	for i := 0; ; i++ {
		props, ok := lines[i]
		if !ok {
			break
		}
		item, err := lineToInvoiceItem(i, props)
		if err != nil {
			return nil, err
		}
		invoice.Items = append(invoice.Items, item)
	}

	if len(invoice.Items) == 0 {
		return nil, &PayloadError{Field: "line_items", Reason: "no line items"}
	}
	return invoice, nil
}

// SaleToInvoice converts a decoded Sale, as returned by the closed sales
// endpoint, into an invoice.
func SaleToInvoice(sale hiboutik.Sale) (*models.POSInvoice, error) {
	invoice := &models.POSInvoice{
		UniqueSaleID: sale.UniqueSaleID,
		Currency:     sale.Currency,
		Total:        sale.Total,
		Status:       models.InvoiceStatusSubmitted,
	}
	if sale.ID != 0 {
		saleID := sale.ID
		invoice.SaleID = &saleID
	}

	switch {
	case !sale.CompletedAt.IsZero():
		invoice.PostingDate = sale.CompletedAt.Time
	case !sale.CreatedAt.IsZero():
		invoice.PostingDate = sale.CreatedAt.Time
	default:
		return nil, &PayloadError{Field: "completed_at", Reason: "missing"}
	}

	for i, line := range sale.LineItems {
		if line.ProductID == 0 {
			return nil, &PayloadError{Field: fmt.Sprintf("line_items[%d][product_id]", i), Reason: "missing"}
		}
		invoice.Items = append(invoice.Items, models.POSInvoiceItem{
			ExternalID: strconv.Itoa(line.ProductID),
			Qty:        line.Quantity,
			Rate:       line.ProductPrice,
		})
	}

	if len(invoice.Items) == 0 {
		return nil, &PayloadError{Field: "line_items", Reason: "no line items"}
	}
	return invoice, nil
}

func lineToInvoiceItem(index int, props map[string]string) (models.POSInvoiceItem, error) {
	field := func(name string) string {
		return fmt.Sprintf("line_items[%d][%s]", index, name)
	}

	productID := strings.TrimSpace(props["product_id"])
	if productID == "" {
		return models.POSInvoiceItem{}, &PayloadError{Field: field("product_id"), Reason: "missing"}
	}
	if _, err := strconv.Atoi(productID); err != nil {
		return models.POSInvoiceItem{}, &PayloadError{Field: field("product_id"), Reason: "not an integer"}
	}

	rawQty := strings.TrimSpace(props["quantity"])
	if rawQty == "" {
		return models.POSInvoiceItem{}, &PayloadError{Field: field("quantity"), Reason: "missing"}
	}
	qty, err := strconv.ParseInt(rawQty, 10, 32)
	if err != nil {
		return models.POSInvoiceItem{}, &PayloadError{Field: field("quantity"), Reason: "not an integer"}
	}

	item := models.POSInvoiceItem{
		ExternalID: productID,
		Qty:        int(qty),
	}
	if raw := strings.TrimSpace(props["product_price"]); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return models.POSInvoiceItem{}, &PayloadError{Field: field("product_price"), Reason: "not a number"}
		}
		item.Rate = rate
	}
	return item, nil
}

func postingDate(completedAt, createdAt string) (time.Time, error) {
	completed, err := hiboutik.ParseTimestamp(completedAt)
	if err != nil {
		return time.Time{}, &PayloadError{Field: "completed_at", Reason: err.Error()}
	}
	if !completed.IsZero() {
		return completed, nil
	}

	created, err := hiboutik.ParseTimestamp(createdAt)
	if err != nil {
		return time.Time{}, &PayloadError{Field: "created_at", Reason: err.Error()}
	}
	if created.IsZero() {
		return time.Time{}, &PayloadError{Field: "completed_at", Reason: "missing"}
	}
	return created, nil
}
