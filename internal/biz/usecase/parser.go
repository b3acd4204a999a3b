package usecase

import (
	"strconv"
	"strings"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// Parser extracts structured trade lines from free text. Parse is a pure
// function over its input and the pre-loaded reference table: no network,
// cache or persistence access, deterministic for any input string.
type Parser struct {
	ref *RefTable
}

// NewParser creates a parser over the given reference table.
func NewParser(ref *RefTable) *Parser {
	return &Parser{ref: ref}
}

// conditionWords normalizes dealer shorthand to the controlled vocabulary.
var conditionWords = map[string]domain.Condition{
	"new":       domain.ConditionNew,
	"bnib":      domain.ConditionNew,
	"brandnew":  domain.ConditionNew,
	"unworn":    domain.ConditionUnworn,
	"unused":    domain.ConditionUnworn,
	"used":      domain.ConditionUsed,
	"preowned":  domain.ConditionUsed,
	"pre-owned": domain.ConditionUsed,
	"worn":      domain.ConditionUsed,
	"mint":      domain.ConditionMint,
}

// variantWords are the dial/variant cues seen in dealer lines.
var variantWords = map[string]bool{
	"blue": true, "black": true, "green": true, "white": true,
	"silver": true, "gold": true, "grey": true, "gray": true,
	"brown": true, "red": true, "pink": true, "salmon": true,
	"champagne": true, "chocolate": true, "olive": true, "ice": true,
	"tiffany": true, "panda": true, "rhodium": true, "slate": true,
	"meteorite": true, "wimbledon": true,
}

// brandWords map loose brand mentions to canonical brand names, used only
// when the reference code is not in the table.
var brandWords = map[string]string{
	"rolex":    "Rolex",
	"patek":    "Patek Philippe",
	"pp":       "Patek Philippe",
	"ap":       "Audemars Piguet",
	"audemars": "Audemars Piguet",
	"omega":    "Omega",
	"cartier":  "Cartier",
	"rm":       "Richard Mille",
}

// Parse turns a message into zero or more structured lines. Lines that do
// not yield a reference code are skipped, never errored; a message with no
// extractable lines returns an empty slice.
func (p *Parser) Parse(text string) []domain.ParsedLine {
	var out []domain.ParsedLine
	for _, line := range strings.Split(text, "\n") {
		if parsed, ok := p.parseLine(line); ok {
			out = append(out, parsed)
		}
	}
	return out
}

func (p *Parser) parseLine(line string) (domain.ParsedLine, bool) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return domain.ParsedLine{}, false
	}

	tokens := strings.Fields(raw)
	used := make([]bool, len(tokens))

	parsed := domain.ParsedLine{RawLine: raw}

	// Price first: currency-marked amounts must not be mistaken for
	// reference codes later.
	p.extractPrice(tokens, used, &parsed)

	var refCandidates []int
	var bareAmounts []int
	brand := ""

	for i, tok := range tokens {
		if used[i] {
			continue
		}
		word := strings.Trim(tok, ",.;:()[]")
		lower := strings.ToLower(word)

		if parsed.Year == 0 && isYear(word) {
			parsed.Year, _ = strconv.Atoi(word)
			used[i] = true
			continue
		}
		if parsed.MonthCode == "" && isMonthCode(word) {
			parsed.MonthCode = strings.ToUpper(word)
			used[i] = true
			continue
		}
		if parsed.Condition == "" {
			if cond, ok := conditionWords[lower]; ok {
				parsed.Condition = cond
				used[i] = true
				continue
			}
		}
		if parsed.Variant == "" && variantWords[lower] {
			parsed.Variant = lower
			used[i] = true
			continue
		}
		if brand == "" {
			if b, ok := brandWords[lower]; ok {
				brand = b
				used[i] = true
				continue
			}
		}
		if isSeparatedAmount(word) {
			bareAmounts = append(bareAmounts, i)
			continue
		}
		if isRefCandidate(word) {
			refCandidates = append(refCandidates, i)
		}
	}

	// Prefer a candidate the reference table knows; fall back to the
	// first plausible code in the line.
	refIdx := -1
	for _, i := range refCandidates {
		if _, ok := p.ref.Lookup(strings.Trim(tokens[i], ",.;:()[]")); ok {
			refIdx = i
			break
		}
	}
	if refIdx < 0 && len(refCandidates) > 0 {
		refIdx = refCandidates[0]
	}
	if refIdx < 0 {
		return domain.ParsedLine{}, false
	}
	parsed.Reference = strings.Trim(tokens[refIdx], ",.;:()[]")

	// A separator-bearing bare number after the reference is a price when
	// no currency-marked amount was found.
	if parsed.Currency == "" && parsed.Price == 0 {
		for _, i := range bareAmounts {
			if i == refIdx {
				continue
			}
			if amount, ok := parseAmount(strings.Trim(tokens[i], ",.;:()[]")); ok && amount >= 100 {
				parsed.Price = amount
				break
			}
		}
	}

	if product, ok := p.ref.Lookup(parsed.Reference); ok {
		parsed.Brand = product.Brand
		parsed.Family = product.Family
	} else if brand != "" {
		parsed.Brand = brand
	}

	return parsed, true
}

// extractPrice finds the first currency-marked amount: a currency token
// attached as prefix or suffix, or standing beside the number.
func (p *Parser) extractPrice(tokens []string, used []bool, parsed *domain.ParsedLine) {
	for i, tok := range tokens {
		word := strings.Trim(tok, ",.;:()[]")
		lower := strings.ToLower(word)

		for _, cur := range p.ref.curTokens {
			if rest, ok := strings.CutPrefix(lower, cur); ok && rest != "" {
				if amount, okAmt := parseAmount(rest); okAmt {
					parsed.Price = amount
					parsed.Currency = p.ref.CurrencyISO(cur)
					used[i] = true
					return
				}
			}
			if rest, ok := strings.CutSuffix(lower, cur); ok && rest != "" {
				if amount, okAmt := parseAmount(rest); okAmt {
					parsed.Price = amount
					parsed.Currency = p.ref.CurrencyISO(cur)
					used[i] = true
					return
				}
			}
			// Currency token standing alone next to a number.
			if lower == cur {
				if j := i + 1; j < len(tokens) {
					if amount, okAmt := parseAmount(strings.Trim(tokens[j], ",.;:()[]")); okAmt {
						parsed.Price = amount
						parsed.Currency = p.ref.CurrencyISO(cur)
						used[i], used[j] = true, true
						return
					}
				}
				if j := i - 1; j >= 0 && !used[j] {
					if amount, okAmt := parseAmount(strings.Trim(tokens[j], ",.;:()[]")); okAmt {
						parsed.Price = amount
						parsed.Currency = p.ref.CurrencyISO(cur)
						used[i], used[j] = true, true
						return
					}
				}
			}
		}
	}
}

func isYear(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	if !strings.HasPrefix(tok, "19") && !strings.HasPrefix(tok, "20") {
		return false
	}
	_, err := strconv.Atoi(tok)
	return err == nil
}

// isMonthCode matches dealer month tokens like "N6": one letter followed
// by one or two digits.
func isMonthCode(tok string) bool {
	if len(tok) < 2 || len(tok) > 3 {
		return false
	}
	c := tok[0]
	if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
		return false
	}
	for _, d := range tok[1:] {
		if d < '0' || d > '9' {
			return false
		}
	}
	return true
}

// isRefCandidate accepts alphanumeric tokens with enough digits to be a
// reference code, tolerating the separators dealers use inside them.
func isRefCandidate(tok string) bool {
	canon := CanonicalRef(tok)
	if len(canon) < 3 {
		return false
	}
	digits := 0
	for _, r := range canon {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 2 {
		return false
	}
	// Every non-separator rune must survive canonicalization, otherwise
	// the token carries characters no reference code uses.
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', '/', ',':
			return -1
		}
		return r
	}, strings.ToUpper(tok))
	return len(stripped) == len(canon)
}

// isSeparatedAmount reports whether the token looks like a human-formatted
// number: thousands separators or a k suffix.
func isSeparatedAmount(tok string) bool {
	lower := strings.ToLower(tok)
	if strings.HasSuffix(lower, "k") {
		lower = lower[:len(lower)-1]
	} else if !strings.ContainsAny(lower, ",'’") {
		return false
	}
	if lower == "" {
		return false
	}
	for _, r := range lower {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '\'' || r == '’' {
			continue
		}
		return false
	}
	_, ok := parseAmount(tok)
	return ok
}

// parseAmount parses a locale-tolerant numeric amount: "102,500",
// "102.500", "102'500", "1,025.50", "12.5k". Returns false for anything
// that is not a clean number.
func parseAmount(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = s[:len(s)-1]
	}

	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, " ", "")

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		// The later separator is the decimal point.
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = resolveSingleSeparator(s, ",")
	case dot >= 0:
		s = resolveSingleSeparator(s, ".")
	}

	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * mult, true
}

// resolveSingleSeparator decides whether a lone separator kind is decimal
// or thousands: exactly one occurrence followed by one or two digits reads
// as decimal, everything else as grouping.
func resolveSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) == 1 {
		frac := s[strings.Index(s, sep)+1:]
		if len(frac) == 1 || len(frac) == 2 {
			return strings.Replace(s, sep, ".", 1)
		}
	}
	return strings.ReplaceAll(s, sep, "")
}
