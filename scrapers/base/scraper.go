package base

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// Renderer turns a page URL into its HTML and a markdown projection.
type Renderer interface {
	Render(ctx context.Context, url string) (models.RenderedPage, error)
}

// ErrImplausiblePage is returned when a fetched page looks blocked or empty.
var ErrImplausiblePage = errors.New("page looks blocked or empty")

const acceptLanguage = "fr-FR,fr;q=0.9,en;q=0.8"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	sharedLimiter     *rate.Limiter
	sharedLimiterOnce sync.Once
)

// SharedLimiter returns the process-wide page fetch limiter.
func SharedLimiter() *rate.Limiter {
	sharedLimiterOnce.Do(func() {
		perSec := config.FetchRatePerSec
		if perSec <= 0 {
			perSec = 0.5
		}
		sharedLimiter = rate.NewLimiter(rate.Limit(perSec), 1)
	})
	return sharedLimiter
}

// BaseScraper renders pages locally: plain HTTP first, then headless Chrome,
// then Selenium. The first document accepted by the validator wins.
type BaseScraper struct {
	Client  *http.Client
	Limiter *rate.Limiter
	Logger  *logger.Logger

	Headless         bool
	Selenium         bool
	ChromeDriverPath string
}

// NewBaseScraper creates a BaseScraper configured from the environment.
func NewBaseScraper(log *logger.Logger) *BaseScraper {
	return &BaseScraper{
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		Limiter:          SharedLimiter(),
		Logger:           log,
		Headless:         config.HeadlessEnabled,
		Selenium:         config.SeleniumEnabled,
		ChromeDriverPath: config.ChromeDriverPath,
	}
}

// Render fetches url and projects the document into markdown.
func (b *BaseScraper) Render(ctx context.Context, url string) (models.RenderedPage, error) {
	doc, err := b.FetchDocument(ctx, url, IsPlausible)
	if err != nil {
		return models.RenderedPage{}, err
	}
	html, err := doc.Html()
	if err != nil {
		return models.RenderedPage{}, fmt.Errorf("serialize %s: %w", url, err)
	}
	return models.RenderedPage{URL: url, HTML: html, Markdown: Markdown(doc)}, nil
}

type fetchStrategy struct {
	name  string
	fetch func(ctx context.Context, url string) (*goquery.Document, error)
}

// FetchDocument fetches the URL using multiple strategies with a custom validator
func (b *BaseScraper) FetchDocument(ctx context.Context, url string, validator func(*goquery.Document) bool) (*goquery.Document, error) {
	log := b.log().With("url", url)

	if b.Limiter != nil {
		if err := b.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	strategies := []fetchStrategy{{"http", b.FetchDocumentHTTP}}
	if b.Headless {
		strategies = append(strategies, fetchStrategy{"chromedp", b.FetchDocumentChromeDP})
	}
	if b.Selenium {
		strategies = append(strategies, fetchStrategy{"selenium", b.FetchDocumentSelenium})
	}

	var errs []error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.fetch(ctx, url)
		if err != nil {
			log.Debug("fetch strategy failed", "strategy", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		if !validator(doc) {
			log.Debug("fetch strategy yielded invalid content, trying fallbacks", "strategy", s.name)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, ErrImplausiblePage))
			continue
		}
		log.Debug("fetch succeeded", "strategy", s.name)
		return doc, nil
	}
	return nil, fmt.Errorf("all strategies failed for %s: %w", url, errors.Join(errs...))
}

func (b *BaseScraper) log() *logger.Logger {
	if b.Logger == nil {
		return logger.Discard()
	}
	return b.Logger
}

// IsPlausible reports whether doc looks like real content: more than 200
// characters of body text and no robot-check title.
func IsPlausible(doc *goquery.Document) bool {
	if blockedTitle(doc) {
		return false
	}
	return len(strings.TrimSpace(doc.Find("body").Text())) > 200
}

func blockedTitle(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	return strings.Contains(title, "robot check") ||
		strings.Contains(title, "captcha") ||
		strings.Contains(title, "access denied")
}

// FetchDocumentHTTP fetches the URL with a plain HTTP GET, decoding the body
// from its declared charset.
func (b *BaseScraper) FetchDocumentHTTP(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Common headers to mimic a real browser
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	res, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
	}

	body, err := charset.NewReader(res.Body, res.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	return goquery.NewDocumentFromReader(body)
}
