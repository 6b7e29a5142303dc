package base

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const (
	seleniumBasePort  = 4444
	seleniumPortRange = 16
)

// FetchDocumentSelenium renders the URL in a full Chrome driven by
// chromedriver. It is the slowest strategy and only runs when enabled.
func (b *BaseScraper) FetchDocumentSelenium(ctx context.Context, url string) (*goquery.Document, error) {
	ports := DriverPorts()
	port, err := ports.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer ports.Release(port)

	service, err := selenium.NewChromeDriverService(b.ChromeDriverPath, port)
	if err != nil {
		return nil, fmt.Errorf("error starting Chrome driver service: %w", err)
	}
	defer service.Stop()

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless=new",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-extensions",
			"--disable-gpu",
			"--window-size=1920,1080",
			fmt.Sprintf("--user-agent=%s", userAgent),
		},
		ExcludeSwitches: []string{"enable-automation"},
		Prefs: map[string]interface{}{
			"profile.default_content_setting_values.notifications": 2,
		},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		return nil, fmt.Errorf("error creating WebDriver: %w", err)
	}
	defer driver.Quit()

	if err := driver.SetPageLoadTimeout(60 * time.Second); err != nil {
		return nil, fmt.Errorf("page load timeout: %w", err)
	}
	if err := driver.Get(url); err != nil {
		return nil, fmt.Errorf("navigation error: %w", err)
	}

	// Scroll once so lazy-loaded gallery images get their real src.
	if _, err := driver.ExecuteScript(`window.scrollTo(0, document.body.scrollHeight / 2);`, nil); err != nil {
		return nil, fmt.Errorf("scroll error: %w", err)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
	}

	html, err := driver.PageSource()
	if err != nil {
		return nil, fmt.Errorf("page source error: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
