package usecase

import "strings"

// RefProduct is one entry of the static product reference table.
type RefProduct struct {
	Reference string
	Brand     string
	Family    string
}

// RefTable is the pre-loaded static lookup data the extraction parser
// enriches records from. Built once at startup; read-only afterwards.
type RefTable struct {
	products   map[string]RefProduct // keyed by canonical reference
	currencies map[string]string     // lowercase token -> ISO code
	curTokens  []string              // currency tokens, longest first
}

// NewRefTable builds a reference table from product entries and a currency
// token map.
func NewRefTable(products []RefProduct, currencies map[string]string) *RefTable {
	t := &RefTable{
		products:   make(map[string]RefProduct, len(products)),
		currencies: make(map[string]string, len(currencies)),
	}
	for _, p := range products {
		t.products[CanonicalRef(p.Reference)] = p
	}
	for token, iso := range currencies {
		lower := strings.ToLower(token)
		t.currencies[lower] = iso
		t.curTokens = append(t.curTokens, lower)
	}
	// Longest token first so "hk$" wins over "$".
	for i := 1; i < len(t.curTokens); i++ {
		for j := i; j > 0 && len(t.curTokens[j]) > len(t.curTokens[j-1]); j-- {
			t.curTokens[j], t.curTokens[j-1] = t.curTokens[j-1], t.curTokens[j]
		}
	}
	return t
}

// Lookup finds a product by reference code, tolerating separator and case
// differences.
func (t *RefTable) Lookup(ref string) (RefProduct, bool) {
	p, ok := t.products[CanonicalRef(ref)]
	return p, ok
}

// CurrencyISO normalizes a written currency token to its ISO code.
// Returns "" when the token is not a known currency.
func (t *RefTable) CurrencyISO(token string) string {
	return t.currencies[strings.ToLower(token)]
}

// CanonicalRef uppercases a reference code and strips the separators
// dealers sprinkle into them ("126610-LN", "311.30.42.30.01.005").
func CanonicalRef(ref string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(ref) {
		if r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
