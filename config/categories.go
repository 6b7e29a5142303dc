package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// Auto-fill configuration validation errors.
var (
	ErrNoCategories       = errors.New("at least one category is required")
	ErrCategoryMissingURL = errors.New("category url is required")
	ErrCategoryBadURL     = errors.New("category url must be absolute http(s)")
	ErrCategoryNoName     = errors.New("category name is required")
	ErrNegativeTarget     = errors.New("category target must be non-negative")
	ErrDuplicateSlug      = errors.New("category slug must be unique")
	ErrNegativeBuffer     = errors.New("scan_buffer must be non-negative")
)

// DefaultScanBuffer is the number of extra URLs requested per category scan
// to absorb duplicates and failures.
const DefaultScanBuffer = 5

// AutoFillConfig is the YAML document describing auto-fill targets.
type AutoFillConfig struct {
	ScanBuffer *int                    `yaml:"scan_buffer"`
	Categories []models.CategoryTarget `yaml:"categories"`
}

// Buffer returns the configured scan buffer or the default.
func (c *AutoFillConfig) Buffer() int {
	if c.ScanBuffer == nil {
		return DefaultScanBuffer
	}
	return *c.ScanBuffer
}

// LoadAutoFillConfig reads and validates an auto-fill YAML file.
func LoadAutoFillConfig(path string) (*AutoFillConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auto-fill config: %w", err)
	}
	return ParseAutoFillConfig(data)
}

// ParseAutoFillConfig parses and validates an auto-fill YAML document.
func ParseAutoFillConfig(data []byte) (*AutoFillConfig, error) {
	var cfg AutoFillConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse auto-fill config: %w", err)
	}
	for i := range cfg.Categories {
		c := &cfg.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Slug == "" {
			c.Slug = slugify(c.Name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *AutoFillConfig) Validate() error {
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}
	if c.ScanBuffer != nil && *c.ScanBuffer < 0 {
		return ErrNegativeBuffer
	}
	seen := make(map[string]bool)
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d]: %w", i, ErrCategoryNoName)
		}
		if cat.URL == "" {
			return fmt.Errorf("category %q: %w", cat.Name, ErrCategoryMissingURL)
		}
		u, err := url.Parse(cat.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("category %q: %w", cat.Name, ErrCategoryBadURL)
		}
		if cat.Target < 0 {
			return fmt.Errorf("category %q: %w", cat.Name, ErrNegativeTarget)
		}
		if seen[cat.Slug] {
			return fmt.Errorf("category %q: %w", cat.Name, ErrDuplicateSlug)
		}
		seen[cat.Slug] = true
	}
	return nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
