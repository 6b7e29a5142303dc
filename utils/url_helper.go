package utils

import (
	"context"
	"net/http"
	"time"
)

// ResolveShortenedURL follows redirects to find the final URL
func ResolveShortenedURL(ctx context.Context, url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	resolve := func(method string) (string, int, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return url, 0, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		resp, err := client.Do(req)
		if err != nil {
			return url, 0, err
		}
		defer resp.Body.Close()
		return resp.Request.URL.String(), resp.StatusCode, nil
	}

	// Some sites reject HEAD; fall back to GET.
	final, status, err := resolve(http.MethodHead)
	if err == nil && status == http.StatusOK {
		return final, nil
	}
	final, _, err = resolve(http.MethodGet)
	if err != nil {
		return url, err
	}
	return final, nil
}
