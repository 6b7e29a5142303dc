package extract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// knownBrands maps every recognised spelling to its canonical brand name.
// Vehicle makes and equipment manufacturers share the table.
var knownBrands = map[string]string{
	"Abarth":          "Abarth",
	"Alfa Romeo":      "Alfa Romeo",
	"Alpine":          "Alpine",
	"Aston Martin":    "Aston Martin",
	"Audi":            "Audi",
	"Bentley":         "Bentley",
	"BMW":             "BMW",
	"BYD":             "BYD",
	"Cadillac":        "Cadillac",
	"Chevrolet":       "Chevrolet",
	"Chrysler":        "Chrysler",
	"Citroën":         "Citroën",
	"Citroen":         "Citroën",
	"Cupra":           "Cupra",
	"Dacia":           "Dacia",
	"Daihatsu":        "Daihatsu",
	"Dodge":           "Dodge",
	"DS Automobiles":  "DS",
	"Ferrari":         "Ferrari",
	"Fiat":            "Fiat",
	"Ford":            "Ford",
	"Honda":           "Honda",
	"Hyundai":         "Hyundai",
	"Infiniti":        "Infiniti",
	"Isuzu":           "Isuzu",
	"Iveco":           "Iveco",
	"Jaguar":          "Jaguar",
	"Jeep":            "Jeep",
	"Kia":             "Kia",
	"Lada":            "Lada",
	"Lamborghini":     "Lamborghini",
	"Lancia":          "Lancia",
	"Land Rover":      "Land Rover",
	"Range Rover":     "Land Rover",
	"Lexus":           "Lexus",
	"Lotus":           "Lotus",
	"Lynk & Co":       "Lynk & Co",
	"Maserati":        "Maserati",
	"Mazda":           "Mazda",
	"McLaren":         "McLaren",
	"Mercedes-Benz":   "Mercedes-Benz",
	"Mercedes Benz":   "Mercedes-Benz",
	"Mercedes":        "Mercedes-Benz",
	"MG":              "MG",
	"Mini":            "Mini",
	"Mitsubishi":      "Mitsubishi",
	"Nissan":          "Nissan",
	"Opel":            "Opel",
	"Peugeot":         "Peugeot",
	"Polestar":        "Polestar",
	"Porsche":         "Porsche",
	"Renault":         "Renault",
	"Rover":           "Rover",
	"Saab":            "Saab",
	"Seat":            "Seat",
	"Skoda":           "Skoda",
	"Škoda":           "Skoda",
	"Smart":           "Smart",
	"SsangYong":       "SsangYong",
	"Subaru":          "Subaru",
	"Suzuki":          "Suzuki",
	"Tesla":           "Tesla",
	"Toyota":          "Toyota",
	"Volkswagen":      "Volkswagen",
	"VW":              "Volkswagen",
	"Volvo":           "Volvo",
	"Bobcat":          "Bobcat",
	"Caterpillar":     "Caterpillar",
	"Claas":           "Claas",
	"Fendt":           "Fendt",
	"JCB":             "JCB",
	"John Deere":      "John Deere",
	"Komatsu":         "Komatsu",
	"Kubota":          "Kubota",
	"Manitou":         "Manitou",
	"Massey Ferguson": "Massey Ferguson",
	"New Holland":     "New Holland",
}

type brandEntry struct {
	needle    string // lowercase spelling
	canonical string
}

// brandIndex lists spellings longest first so "Land Rover" wins over "Rover".
var brandIndex = buildBrandIndex(knownBrands)

func buildBrandIndex(brands map[string]string) []brandEntry {
	entries := make([]brandEntry, 0, len(brands))
	for spelling, canonical := range brands {
		entries = append(entries, brandEntry{needle: strings.ToLower(spelling), canonical: canonical})
	}
	sort.Slice(entries, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(entries[i].needle), utf8.RuneCountInString(entries[j].needle)
		if li != lj {
			return li > lj
		}
		return entries[i].needle < entries[j].needle
	})
	return entries
}

// DetectBrand returns the canonical brand mentioned in text, or "".
// Matching is case-insensitive and requires the spelling to stand as whole
// words, so "MG" does not match inside "IMG".
func DetectBrand(text string) string {
	lower := strings.ToLower(text)
	for _, e := range brandIndex {
		if containsWord(lower, e.needle) {
			return e.canonical
		}
	}
	return ""
}

// Brands returns the canonical brand names, sorted.
func Brands() []string {
	seen := make(map[string]bool)
	var out []string
	for _, canonical := range knownBrands {
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	sort.Strings(out)
	return out
}

func containsWord(haystack, needle string) bool {
	for start := 0; start < len(haystack); {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		if boundaryBefore(haystack, i) && boundaryAfter(haystack, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
