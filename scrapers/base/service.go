package base

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// ServiceRenderer delegates rendering to a hosted scraping service that
// returns both markdown and HTML for a URL.
type ServiceRenderer struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
	Limiter  *rate.Limiter
}

// NewServiceRenderer creates a renderer for the scraping service at endpoint.
func NewServiceRenderer(endpoint, apiKey string) *ServiceRenderer {
	return &ServiceRenderer{
		Endpoint: strings.TrimRight(endpoint, "/"),
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 90 * time.Second},
		Limiter:  SharedLimiter(),
	}
}

// UpstreamError carries the scraping service's own failure message.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string { return e.Message }

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
		Metadata struct {
			SourceURL string `json:"sourceURL"`
		} `json:"metadata"`
	} `json:"data"`
}

// Render asks the service for the markdown and HTML of url.
func (s *ServiceRenderer) Render(ctx context.Context, url string) (models.RenderedPage, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return models.RenderedPage{}, err
		}
	}

	payload, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown", "html"}})
	if err != nil {
		return models.RenderedPage{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint+"/v1/scrape", bytes.NewReader(payload))
	if err != nil {
		return models.RenderedPage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	res, err := s.Client.Do(req)
	if err != nil {
		return models.RenderedPage{}, fmt.Errorf("scraping service request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return models.RenderedPage{}, fmt.Errorf("read scraping service response: %w", err)
	}

	var out scrapeResponse
	decodeErr := json.Unmarshal(body, &out)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = res.Status
		}
		return models.RenderedPage{}, &UpstreamError{StatusCode: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return models.RenderedPage{}, fmt.Errorf("decode scraping service response: %w", decodeErr)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "scraping service reported failure"
		}
		return models.RenderedPage{}, &UpstreamError{StatusCode: res.StatusCode, Message: msg}
	}

	if !servicePagePlausible(out.Data.HTML, out.Data.Markdown) {
		return models.RenderedPage{}, fmt.Errorf("%s: %w", url, ErrImplausiblePage)
	}

	return models.RenderedPage{URL: url, HTML: out.Data.HTML, Markdown: out.Data.Markdown}, nil
}

// servicePagePlausible applies the local chain's rule to the service output.
// Pages whose HTML body is thin still pass when the markdown carries at least
// 200 characters, unless the title reads as a block page.
func servicePagePlausible(html, markdown string) bool {
	enough := len(strings.TrimSpace(markdown)) >= 200
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return enough
	}
	if blockedTitle(doc) {
		return false
	}
	return IsPlausible(doc) || enough
}
