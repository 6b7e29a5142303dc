package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// attribute label keywords, folded.
var (
	yearLabels         = []string{"annee", "year", "mise en circulation", "millesime", "1ere immatriculation"}
	mileageLabels      = []string{"kilometrage", "mileage", "compteur", "km"}
	transmissionLabels = []string{"boite", "transmission", "gearbox"}
	energyLabels       = []string{"energie", "carburant", "fuel", "motorisation"}
	colorLabels        = []string{"couleur", "color", "colour", "teinte"}
	powerLabels        = []string{"puissance", "power", "chevaux"}
)

var (
	yearRe    = regexp.MustCompile(`\b(19[5-9]\d|20\d\d)\b`)
	mileageRe = regexp.MustCompile(`\d{1,3}(?:[ \x{00A0}\x{202F}.,']\d{3})+|\d+`)
)

// Normalize maps free-form spec labels onto typed attributes. Labels are
// visited in sorted order so the result does not depend on map iteration.
func Normalize(specs map[string]string) models.NormalizedAttributes {
	var attrs models.NormalizedAttributes

	labels := make([]string, 0, len(specs))
	for k := range specs {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	for _, label := range labels {
		value := strings.TrimSpace(specs[label])
		key := fold(label)
		switch {
		case attrs.Year == nil && labelMatches(key, yearLabels):
			if m := yearRe.FindString(value); m != "" {
				y, _ := strconv.Atoi(m)
				attrs.Year = &y
			}
		case attrs.MileageKm == nil && labelMatches(key, mileageLabels):
			if km, ok := parseMileage(value); ok {
				attrs.MileageKm = &km
			}
		case attrs.Transmission == "" && labelMatches(key, transmissionLabels):
			attrs.Transmission = NormalizeTransmission(value)
		case attrs.Energy == "" && labelMatches(key, energyLabels):
			attrs.Energy = NormalizeEnergy(value)
		case attrs.Color == "" && labelMatches(key, colorLabels):
			attrs.Color = titleCase(value)
		case attrs.Power == "" && labelMatches(key, powerLabels):
			attrs.Power = value
		}
	}
	return attrs
}

func labelMatches(label string, keywords []string) bool {
	for _, k := range keywords {
		if label == k || strings.HasPrefix(label, k+" ") || strings.Contains(label, " "+k) {
			return true
		}
	}
	return false
}

func parseMileage(value string) (int, bool) {
	m := mileageRe.FindString(value)
	if m == "" {
		return 0, false
	}
	var digits strings.Builder
	for _, r := range m {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	km, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return km, true
}

type bucket struct {
	value string
	// keywords match anywhere in the folded text.
	keywords []string
	// codes match whole letter runs only, so "hev" never hits "chevaux".
	codes []string
}

// energyBuckets are checked in order: plug-in hybrids before hybrids, hybrids
// before the fuels they combine.
var energyBuckets = []bucket{
	{string(models.EnergyPlugInHybrid), []string{"rechargeable", "plug-in", "plugin"}, []string{"phev"}},
	{string(models.EnergyHybrid), []string{"hybrid"}, []string{"hev", "mhev"}},
	{string(models.EnergyElectric), []string{"electrique", "electric", "100% elec"}, []string{"ev"}},
	{string(models.EnergyLPG), []string{"bicarburation"}, []string{"gpl", "lpg"}},
	{string(models.EnergyDiesel), []string{"diesel", "gazole", "gasoil", "hdi", "d-4d", "multijet"}, []string{"dci", "tdi", "crdi", "cdi", "jtd"}},
	{string(models.EnergyPetrol), []string{"essence", "petrol", "gasoline", "sans plomb", "puretech", "ecoboost", "sp95", "sp98"}, []string{"tsi", "tfsi", "tce", "vti", "thp"}},
}

var transmissionBuckets = []bucket{
	{string(models.TransmissionAutomatic), []string{"auto", "tiptronic", "s tronic", "steptronic"}, []string{"bva", "dsg", "edc", "eat", "cvt", "pdk"}},
	{string(models.TransmissionManual), []string{"manu", "mecanique"}, []string{"bvm"}},
}

// NormalizeEnergy maps a free-text energy onto its bucket, or returns the
// trimmed input when it matches none.
func NormalizeEnergy(v string) string {
	return classify(v, energyBuckets)
}

// NormalizeTransmission maps a free-text gearbox onto Manuelle or Automatique,
// or returns the trimmed input when it matches neither.
func NormalizeTransmission(v string) string {
	return classify(v, transmissionBuckets)
}

func classify(v string, buckets []bucket) string {
	folded := fold(v)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words[w] = true
	}
	for _, b := range buckets {
		for _, k := range b.keywords {
			if strings.Contains(folded, k) {
				return b.value
			}
		}
		for _, c := range b.codes {
			if words[c] {
				return b.value
			}
		}
	}
	return strings.TrimSpace(v)
}
