package usecase

import (
	"testing"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

func newTestParser() *Parser {
	ref := NewRefTable(
		[]RefProduct{
			{Reference: "126234", Brand: "Rolex", Family: "Datejust 41"},
			{Reference: "126610LN", Brand: "Rolex", Family: "Submariner"},
			{Reference: "5711A", Brand: "Patek Philippe", Family: "Nautilus"},
			{Reference: "15202ST", Brand: "Audemars Piguet", Family: "Royal Oak"},
			{Reference: "311.30.42.30.01.005", Brand: "Omega", Family: "Speedmaster"},
		},
		map[string]string{
			"$": "USD", "usd": "USD", "hk$": "HKD", "hkd": "HKD",
			"€": "EUR", "chf": "CHF", "sgd": "SGD",
		},
	)
	return NewParser(ref)
}

func TestParse_DealerShorthandLine(t *testing.T) {
	p := newTestParser()

	lines := p.Parse("126234 g blue $102500 N6")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got.Reference != "126234" {
		t.Errorf("Expected reference 126234, got %s", got.Reference)
	}
	if got.Brand != "Rolex" || got.Family != "Datejust 41" {
		t.Errorf("Expected table enrichment, got brand=%s family=%s", got.Brand, got.Family)
	}
	if got.Variant != "blue" {
		t.Errorf("Expected variant blue, got %s", got.Variant)
	}
	if got.Price != 102500 || got.Currency != "USD" {
		t.Errorf("Expected USD 102500, got %s %.0f", got.Currency, got.Price)
	}
	if got.MonthCode != "N6" {
		t.Errorf("Expected month code N6, got %s", got.MonthCode)
	}
}

func TestParse_MultiLineMessage(t *testing.T) {
	p := newTestParser()

	text := "126610LN 2023 unworn $14,500\nsome chat in between\n5711A blue mint hk$ 850,000"
	lines := p.Parse(text)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	first := lines[0]
	if first.Reference != "126610LN" || first.Year != 2023 {
		t.Errorf("Unexpected first line: %+v", first)
	}
	if first.Condition != domain.ConditionUnworn {
		t.Errorf("Expected unworn, got %s", first.Condition)
	}
	if first.Price != 14500 || first.Currency != "USD" {
		t.Errorf("Expected USD 14500, got %s %.0f", first.Currency, first.Price)
	}

	second := lines[1]
	if second.Reference != "5711A" || second.Variant != "blue" {
		t.Errorf("Unexpected second line: %+v", second)
	}
	if second.Condition != domain.ConditionMint {
		t.Errorf("Expected mint, got %s", second.Condition)
	}
	if second.Price != 850000 || second.Currency != "HKD" {
		t.Errorf("Expected HKD 850000, got %s %.0f", second.Currency, second.Price)
	}
}

func TestParse_DottedReferenceNotAPrice(t *testing.T) {
	p := newTestParser()

	lines := p.Parse("311.30.42.30.01.005 panda 2021 chf 6'200")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got.Reference != "311.30.42.30.01.005" {
		t.Errorf("Expected dotted reference preserved, got %s", got.Reference)
	}
	if got.Brand != "Omega" {
		t.Errorf("Expected Omega, got %s", got.Brand)
	}
	if got.Price != 6200 || got.Currency != "CHF" {
		t.Errorf("Expected CHF 6200, got %s %.0f", got.Currency, got.Price)
	}
	if got.Variant != "panda" {
		t.Errorf("Expected variant panda, got %s", got.Variant)
	}
}

func TestParse_BareSeparatedAmountAsPrice(t *testing.T) {
	p := newTestParser()

	lines := p.Parse("5711A blue dial 102,500")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got.Price != 102500 {
		t.Errorf("Expected bare separated amount as price, got %.0f", got.Price)
	}
	if got.Currency != "" {
		t.Errorf("Expected no currency for a bare amount, got %s", got.Currency)
	}
}

func TestParse_KSuffixAmount(t *testing.T) {
	p := newTestParser()

	lines := p.Parse("126610LN bnib $14.5k")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got.Price != 14500 || got.Currency != "USD" {
		t.Errorf("Expected USD 14500, got %s %.0f", got.Currency, got.Price)
	}
	if got.Condition != domain.ConditionNew {
		t.Errorf("Expected bnib to normalize to new, got %s", got.Condition)
	}
}

func TestParse_UnknownRefStillExtracted(t *testing.T) {
	p := newTestParser()

	// Not in the table: brand comes from the loose brand mention.
	lines := p.Parse("patek 5167R-001 brown 2022")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got.Reference != "5167R-001" {
		t.Errorf("Expected reference 5167R-001, got %s", got.Reference)
	}
	if got.Brand != "Patek Philippe" {
		t.Errorf("Expected loose brand mapping, got %s", got.Brand)
	}
	if got.Family != "" {
		t.Errorf("Expected no family for an unknown reference, got %s", got.Family)
	}
}

func TestParse_TablePreferredOverFirstCandidate(t *testing.T) {
	p := newTestParser()

	// Both tokens are plausible codes; the one the table knows wins.
	lines := p.Parse("lot 4421 126234 wimbledon")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Reference != "126234" {
		t.Errorf("Expected table hit to win, got %s", lines[0].Reference)
	}
}

func TestParse_NoExtractableLines(t *testing.T) {
	p := newTestParser()

	for _, text := range []string{
		"",
		"good morning all",
		"anyone around today?",
		"prices are up again",
	} {
		if lines := p.Parse(text); len(lines) != 0 {
			t.Errorf("Expected no lines for %q, got %d", text, len(lines))
		}
	}
}

func TestParse_SmallBareNumberNotAPrice(t *testing.T) {
	p := newTestParser()

	// "1,5" style fragments and tiny numbers must not read as prices.
	lines := p.Parse("126234 blue set of 2,5 links")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Price != 0 {
		t.Errorf("Expected no price, got %.1f", lines[0].Price)
	}
}

func TestParse_DeterministicForSameInput(t *testing.T) {
	p := newTestParser()

	text := "126234 g blue $102500 N6"
	a := p.Parse(text)
	b := p.Parse(text)
	if len(a) != len(b) || a[0] != b[0] {
		t.Error("Expected identical output for identical input")
	}
}

func TestParseAmount_LocaleFormats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"102,500", 102500, true},
		{"102.500", 102500, true},
		{"102'500", 102500, true},
		{"1,025.50", 1025.50, true},
		{"1.025,50", 1025.50, true},
		{"12.5k", 12500, true},
		{"14k", 14000, true},
		{"9.5", 9.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-100", 0, false},
		{"12a34", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseAmount(%q) = (%.2f, %v), want (%.2f, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsMonthCode(t *testing.T) {
	for _, good := range []string{"N6", "a1", "J12"} {
		if !isMonthCode(good) {
			t.Errorf("Expected %q to be a month code", good)
		}
	}
	for _, bad := range []string{"N", "6N", "NNN", "N123", "blue"} {
		if isMonthCode(bad) {
			t.Errorf("Expected %q to not be a month code", bad)
		}
	}
}
