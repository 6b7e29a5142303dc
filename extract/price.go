package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MinPlausiblePrice = 500.0
	MaxPlausiblePrice = 500000.0
)

const amountPattern = `\d{1,3}(?:[ \x{00A0}\x{202F}.,'’]\d{3})+(?:,\d{1,2})?|\d+(?:[.,]\d{1,2})?`

const gapPattern = `[\s\x{00A0}\x{202F}]*`

var priceRe = regexp.MustCompile(`(?i)(?:\b(` + amountPattern + `)` + gapPattern + `(?:€|eur\b|euros?\b)|(?:€|\beur)` + gapPattern + `(` + amountPattern + `))`)

// Price returns the largest plausible currency-tagged amount in text, or nil.
// Monthly instalments and fees fall under the plausibility floor, so the
// maximum is the sticker price.
func Price(text string) *float64 {
	var best *float64
	for _, m := range priceRe.FindAllStringSubmatch(text, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		v, ok := parseAmount(raw)
		if !ok || !PlausiblePrice(v) {
			continue
		}
		if best == nil || v > *best {
			value := v
			best = &value
		}
	}
	return best
}

// PlausiblePrice reports whether v falls in the accepted vehicle price window.
func PlausiblePrice(v float64) bool {
	return v >= MinPlausiblePrice && v <= MaxPlausiblePrice
}

// parseAmount reads "24 900", "24.900", "24,900", "24 900,50" or "24900.5".
// A final separator followed by one or two digits is the decimal mark; every
// other separator groups thousands.
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	intPart, frac := raw, ""
	if i := strings.LastIndexAny(raw, ".,"); i >= 0 {
		if tail := raw[i+1:]; len(tail) >= 1 && len(tail) <= 2 {
			intPart, frac = raw[:i], tail
		}
	}
	var digits strings.Builder
	for _, r := range intPart {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	s := digits.String()
	if frac != "" {
		s += "." + frac
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
