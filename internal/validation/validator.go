package validation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"opossum/internal/models"
)

// MaxModelLength is the longest product name Hiboutik stores.
const MaxModelLength = 255

var ErrInvalidItem = errors.New("invalid item")

var (
	minStockQty = decimal.NewFromInt(math.MinInt32)
	maxStockQty = decimal.NewFromInt(math.MaxInt32)

	stockQtyReason = fmt.Sprintf("must be between %d and %d", math.MinInt32, math.MaxInt32)
)

// StockUnits truncates a stock quantity to whole units. It reports false when
// the quantity does not fit an inventory input.
func StockUnits(qty decimal.Decimal) (int, bool) {
	units := qty.Truncate(0)
	if units.LessThan(minStockQty) || units.GreaterThan(maxStockQty) {
		return 0, false
	}
	return int(units.IntPart()), true
}

// StockQtyError reports a stock quantity that cannot be pushed.
func StockQtyError(code string) *ItemError {
	return &ItemError{Code: code, Fields: map[string]string{"stock_qty": stockQtyReason}}
}


// ItemError lists every field of an item that cannot be pushed to the POS.
type ItemError struct {
	Code   string
	Fields map[string]string
}

func (e *ItemError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return fmt.Sprintf("invalid item %s: %s", e.Code, strings.Join(parts, ", "))
}

func (e *ItemError) Is(target error) bool {
	return target == ErrInvalidItem
}

// ValidateItem checks the fields the POS requires before an item is synced.
func ValidateItem(item *models.Item) error {
	fields := make(map[string]string)

	if strings.TrimSpace(item.Code) == "" {
		fields["code"] = "is required"
	}
	switch name := strings.TrimSpace(item.Name); {
	case name == "":
		fields["name"] = "is required"
	case utf8.RuneCountInString(name) > MaxModelLength:
		fields["name"] = fmt.Sprintf("is longer than %d characters", MaxModelLength)
	}
	if item.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if _, ok := StockUnits(item.StockQty); !ok {
		fields["stock_qty"] = stockQtyReason
	}

	if len(fields) > 0 {
		return &ItemError{Code: item.Code, Fields: fields}
	}
	return nil
}
