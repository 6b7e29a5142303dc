package models

// RenderedPage is the fully rendered content of one fetched URL.
type RenderedPage struct {
	URL      string `json:"url"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
}

// NormalizedAttributes are vehicle attributes derived from the raw spec table.
// Values outside the controlled vocabularies are kept as free text.
type NormalizedAttributes struct {
	Year         *int   `json:"year,omitempty"`
	MileageKm    *int   `json:"mileage_km,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Energy       string `json:"energy,omitempty"`
	Color        string `json:"color,omitempty"`
	Power        string `json:"power,omitempty"`
}

// ScrapedListing represents the fields extracted from a listing page.
// It is never persisted as-is.
type ScrapedListing struct {
	SourceURL   string               `json:"source_url"`
	Title       string               `json:"title"`
	Price       *float64             `json:"price"`           // nil when no plausible price was found
	Brand       string               `json:"brand,omitempty"` // empty when no known brand matched
	Images      []string             `json:"image_paths"`
	Description string               `json:"description"`
	RawSpecs    map[string]string    `json:"raw_specs,omitempty"`
	Attributes  NormalizedAttributes `json:"attributes"`

	// PriceEstimated is set when Price came from the estimator instead of the page.
	PriceEstimated bool `json:"price_estimated,omitempty"`
}

// HasPrice reports whether a price was found or estimated.
func (l *ScrapedListing) HasPrice() bool {
	return l.Price != nil && *l.Price > 0
}
