package hiboutik

import "opossum/internal/config"

// Hiboutik tax ids, as created on a fresh French account.
const (
	TaxID20   = 1
	TaxID10   = 2
	TaxID5_5  = 3
	TaxID2_1  = 4
	TaxIDNone = 5
)

// TaxResolver maps ERP item tax template names to Hiboutik tax ids.
type TaxResolver struct {
	ids map[string]int
}

func NewTaxResolver(templates config.TaxTemplates) TaxResolver {
	ids := make(map[string]int)
	// Rates are checked from the highest down; the first match wins.
	for _, rate := range []struct {
		name string
		id   int
	}{
		{templates.Rate20, TaxID20},
		{templates.Rate10, TaxID10},
		{templates.Rate5_5, TaxID5_5},
		{templates.Rate2_1, TaxID2_1},
	} {
		if _, seen := ids[rate.name]; rate.name != "" && !seen {
			ids[rate.name] = rate.id
		}
	}
	return TaxResolver{ids: ids}
}

// TaxID returns the tax id of a template, TaxIDNone when it is unknown or empty.
func (r TaxResolver) TaxID(template string) int {
	if id, ok := r.ids[template]; ok && template != "" {
		return id
	}
	return TaxIDNone
}
