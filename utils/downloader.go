package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
)

const maxImageBytes = 15 << 20

// UploadFunc stores body under objectKey and returns the stored key.
type UploadFunc func(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error)

// ImageUploader copies remote images into owned storage.
type ImageUploader struct {
	Client *http.Client
	Upload UploadFunc
	Logger *logger.Logger
	// Concurrency bounds parallel downloads; defaults to 5.
	Concurrency int
}

// NewImageUploader uploads to S3.
func NewImageUploader(log *logger.Logger) *ImageUploader {
	return &ImageUploader{
		Client:      &http.Client{Timeout: 30 * time.Second},
		Upload:      UploadFileToS3,
		Logger:      log,
		Concurrency: 5,
	}
}

// UploadImages downloads every URL and uploads it under folderPrefix.
// It returns original URL -> object key for the images that made it; a
// failed image is logged and left out.
func (u *ImageUploader) UploadImages(ctx context.Context, urls []string, folderPrefix string) map[string]string {
	urlToKey := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	limit := u.Concurrency
	if limit <= 0 {
		limit = 5
	}
	semaphore := make(chan struct{}, limit)

	for _, src := range urls {
		if src == "" {
			continue
		}
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			key, err := u.downloadAndUpload(ctx, src, folderPrefix)
			if err != nil {
				if u.Logger != nil {
					u.Logger.Warn("image archival failed", "url", src, "error", err)
				}
				return
			}

			mu.Lock()
			urlToKey[src] = key
			mu.Unlock()
		}(src)
	}

	wg.Wait()
	return urlToKey
}

func (u *ImageUploader) downloadAndUpload(ctx context.Context, src, folderPrefix string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("not an image: %s", contentType)
	}

	objectKey := fmt.Sprintf("%s/%s%s", strings.Trim(folderPrefix, "/"), uuid.NewString(), imageExtension(src, contentType))
	return u.Upload(ctx, bytes.NewReader(body), objectKey, contentType)
}

func imageExtension(src, contentType string) string {
	p := src
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if ext := strings.ToLower(path.Ext(p)); ext != "" && len(ext) <= 5 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}
