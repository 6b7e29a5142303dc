// Package store persists catalog vehicles and their images.
package store

import (
	"context"
	"errors"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

var (
	// ErrDuplicate is returned when a vehicle with the same source URL exists.
	ErrDuplicate = errors.New("a vehicle with this source url already exists")
	ErrNotFound  = errors.New("not found")
)

// CatalogStore is the persistence used by the import pipeline.
type CatalogStore interface {
	// ExistsBySourceURL reports whether a vehicle was imported from sourceURL.
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	// InsertVehicle persists v and its images. Implementations return
	// ErrDuplicate when v.SourceURL is already taken and never leave a
	// vehicle without its images behind.
	InsertVehicle(ctx context.Context, v *models.VehicleRecord, images []models.ImageRecord) error
	// CountMatching counts vehicles whose brand or category contains term,
	// case-insensitively.
	CountMatching(ctx context.Context, term string) (int, error)
	// ReplaceImageURL points an image at its archived copy.
	ReplaceImageURL(ctx context.Context, imageID, newURL string) error
	Close(ctx context.Context) error
}
