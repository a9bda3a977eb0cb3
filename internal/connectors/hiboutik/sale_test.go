package hiboutik

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSaleFormConvertsSaleToInvoice(t *testing.T) {
	form := url.Values{
		"completed_at":              {"2021-04-26 15:06:34"},
		"line_items[0][product_id]": {"3"},
		"line_items[0][quantity]":   {"2"},
		"line_items[1][product_id]": {"37"},
		"line_items[1][quantity]":   {"1"},
	}

	invoice, err := ParseSaleForm(form)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 4, 26, 15, 6, 34, 0, time.Local), invoice.PostingDate)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "3", invoice.Items[0].ExternalID)
	assert.Equal(t, 2, invoice.Items[0].Qty)
	assert.Equal(t, "37", invoice.Items[1].ExternalID)
	assert.Equal(t, 1, invoice.Items[1].Qty)
	assert.Nil(t, invoice.SaleID)
}

func TestParseSaleFormReadsSaleFields(t *testing.T) {
	form := url.Values{
		"sale_id":                      {"1042"},
		"unique_sale_id":               {"a1b2c3"},
		"currency":                     {"EUR"},
		"total":                        {"24.50"},
		"created_at":                   {"2021-04-26 15:00:00"},
		"completed_at":                 {"0000-00-00 00:00:00"},
		"line_items[0][product_id]":    {"3"},
		"line_items[0][quantity]":      {"2"},
		"line_items[0][product_price]": {"12.25"},
	}

	invoice, err := ParseSaleForm(form)

	require.NoError(t, err)
	require.NotNil(t, invoice.SaleID)
	assert.Equal(t, 1042, *invoice.SaleID)
	assert.Equal(t, "a1b2c3", invoice.UniqueSaleID)
	assert.Equal(t, "EUR", invoice.Currency)
	assert.True(t, invoice.Total.Equal(decimal.RequireFromString("24.5")))
	assert.Equal(t, time.Date(2021, 4, 26, 15, 0, 0, 0, time.Local), invoice.PostingDate)
	assert.Equal(t, 2, invoice.Items[0].Qty)
	assert.True(t, invoice.Items[0].Rate.Equal(decimal.RequireFromString("12.25")))
}

func TestParseSaleFormStopsAtFirstMissingIndex(t *testing.T) {
	form := url.Values{
		"completed_at":              {"2021-04-26 15:06:34"},
		"line_items[0][product_id]": {"3"},
		"line_items[0][quantity]":   {"2"},
		"line_items[2][product_id]": {"37"},
		"line_items[2][quantity]":   {"1"},
	}

	invoice, err := ParseSaleForm(form)

	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "3", invoice.Items[0].ExternalID)
}

func TestParseSaleFormErrors(t *testing.T) {
	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{
			name: "missing quantity",
			form: url.Values{
				"completed_at":              {"2021-04-26 15:06:34"},
				"line_items[0][product_id]": {"3"},
			},
			field: "line_items[0][quantity]",
		},
		{
			name: "invalid quantity",
			form: url.Values{
				"completed_at":              {"2021-04-26 15:06:34"},
				"line_items[0][product_id]": {"3"},
				"line_items[0][quantity]":   {"two"},
			},
			field: "line_items[0][quantity]",
		},
		{
			name: "fractional quantity",
			form: url.Values{
				"completed_at":              {"2021-04-26 15:06:34"},
				"line_items[0][product_id]": {"3"},
				"line_items[0][quantity]":   {"2.5"},
			},
			field: "line_items[0][quantity]",
		},
		{
			name: "quantity out of range",
			form: url.Values{
				"completed_at":              {"2021-04-26 15:06:34"},
				"line_items[0][product_id]": {"3"},
				"line_items[0][quantity]":   {"1e30"},
			},
			field: "line_items[0][quantity]",
		},
		{
			name: "quantity overflowing int32",
			form: url.Values{
				"completed_at":              {"2021-04-26 15:06:34"},
				"line_items[0][product_id]": {"3"},
				"line_items[0][quantity]":   {"5076944270305263616"},
			},
			field: "line_items[0][quantity]",
		},
		{
			name: "missing product id",
			form: url.Values{
				"completed_at":            {"2021-04-26 15:06:34"},
				"line_items[0][quantity]": {"1"},
			},
			field: "line_items[0][product_id]",
		},
		{
			name: "missing dates",
			form: url.Values{
				"line_items[0][product_id]": {"3"},
				"line_items[0][quantity]":   {"1"},
			},
			field: "completed_at",
		},
		{
			name:  "no line items",
			form:  url.Values{"completed_at": {"2021-04-26 15:06:34"}},
			field: "line_items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSaleForm(tt.form)

			require.ErrorIs(t, err, ErrInvalidPayload)
			var payloadErr *PayloadError
			require.ErrorAs(t, err, &payloadErr)
			assert.Equal(t, tt.field, payloadErr.Field)
		})
	}
}

func TestParseSalePayloadJSON(t *testing.T) {
	body := []byte(`{
		"sale_id": 7,
		"currency": "EUR",
		"completed_at": "2021-04-26 15:06:34",
		"line_items": [
			{"product_id": 3, "quantity": 2, "product_price": "5.00"}
		]
	}`)

	invoice, err := ParseSalePayload("application/json; charset=utf-8", body)

	require.NoError(t, err)
	require.NotNil(t, invoice.SaleID)
	assert.Equal(t, 7, *invoice.SaleID)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "3", invoice.Items[0].ExternalID)
	assert.Equal(t, 2, invoice.Items[0].Qty)
}

func TestParseSalePayloadForm(t *testing.T) {
	body := []byte("completed_at=2021-04-26+15%3A06%3A34&line_items%5B0%5D%5Bproduct_id%5D=3&line_items%5B0%5D%5Bquantity%5D=2")

	invoice, err := ParseSalePayload("application/x-www-form-urlencoded", body)

	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "3", invoice.Items[0].ExternalID)
}

func TestParseSalePayloadInvalidJSON(t *testing.T) {
	_, err := ParseSalePayload("application/json", []byte(`{"sale_id":`))

	assert.ErrorIs(t, err, ErrInvalidPayload)
}
