// Package archive copies imported vehicle images into owned object storage
// and repoints the catalog at the copies.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// Request asks for the images of one vehicle to be archived.
type Request struct {
	VehicleID string               `json:"vehicle_id"`
	Images    []models.ImageRecord `json:"images"`
}

// Archiver archives the images of a vehicle.
type Archiver interface {
	Archive(ctx context.Context, req Request) error
}

// Uploader copies remote images and returns original URL -> object key.
type Uploader interface {
	UploadImages(ctx context.Context, urls []string, folderPrefix string) map[string]string
}

// ImageURLUpdater repoints a stored image.
type ImageURLUpdater interface {
	ReplaceImageURL(ctx context.Context, imageID, newURL string) error
}

// DirectArchiver uploads in-process and updates the catalog.
type DirectArchiver struct {
	Uploader  Uploader
	Store     ImageURLUpdater
	PublicURL func(objectKey string) string
	Logger    *logger.Logger
}

// Archive uploads every image of req. Images that fail keep their original
// URL; the returned error reports how many were left behind.
func (a *DirectArchiver) Archive(ctx context.Context, req Request) error {
	if len(req.Images) == 0 {
		return nil
	}
	urls := make([]string, len(req.Images))
	for i, img := range req.Images {
		urls[i] = img.URL
	}

	keys := a.Uploader.UploadImages(ctx, urls, "vehicles/"+req.VehicleID)

	var errs []error
	archived := 0
	for _, img := range req.Images {
		key, ok := keys[img.URL]
		if !ok {
			continue
		}
		if err := a.Store.ReplaceImageURL(ctx, img.ID, a.PublicURL(key)); err != nil {
			errs = append(errs, fmt.Errorf("image %s: %w", img.ID, err))
			continue
		}
		archived++
	}
	if archived < len(req.Images) {
		errs = append(errs, fmt.Errorf("archived %d of %d images", archived, len(req.Images)))
	}
	if a.Logger != nil {
		a.Logger.Info("images archived", "vehicle_id", req.VehicleID, "archived", archived, "total", len(req.Images))
	}
	return errors.Join(errs...)
}
