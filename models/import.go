package models

// ImportStatus is the state of one item in an import run.
type ImportStatus string

const (
	StatusPending    ImportStatus = "pending"
	StatusScraping   ImportStatus = "scraping"
	StatusGenerating ImportStatus = "generating"
	StatusImporting  ImportStatus = "importing"
	StatusImported   ImportStatus = "imported"
	StatusDuplicate  ImportStatus = "duplicate"
	StatusError      ImportStatus = "error"
)

// Terminal reports whether no further transition is possible.
func (s ImportStatus) Terminal() bool {
	return s == StatusImported || s == StatusDuplicate || s == StatusError
}

// ImportItem tracks a single URL through the import pipeline.
type ImportItem struct {
	URL       string            `json:"url"`
	Scraped   *ScrapedListing   `json:"scraped,omitempty"`
	Generated *GeneratedContent `json:"generated,omitempty"`
	Selected  bool              `json:"selected"`
	Status    ImportStatus      `json:"status"`
	Error     string            `json:"error,omitempty"`
	VehicleID string            `json:"vehicle_id,omitempty"`
}

// Ready reports whether AI content has been generated for a pending item.
func (i *ImportItem) Ready() bool {
	return i.Status == StatusPending && i.Generated != nil
}

// GeneratedContent is the AI-authored copy for a listing.
type GeneratedContent struct {
	Title                   string            `json:"title"`
	Description             string            `json:"description"`
	TitleTranslations       map[string]string `json:"title_translations"`
	DescriptionTranslations map[string]string `json:"description_translations"`
}

// ContentRequest is the input of the content generator.
type ContentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Price       *float64 `json:"price"`
}

// PriceEstimateRequest is the input of the price estimator.
type PriceEstimateRequest struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year,omitempty"`
	Mileage  int    `json:"mileage,omitempty"`
	Energy   string `json:"energy,omitempty"`
	Category string `json:"category,omitempty"`
}

// BatchSummary aggregates terminal statuses at the end of a batch commit.
type BatchSummary struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}
