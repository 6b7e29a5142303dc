package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// MemoryStore is an in-process CatalogStore used by tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]models.VehicleRecord
	bySource map[string]string
	images   map[string]models.ImageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: make(map[string]models.VehicleRecord),
		bySource: make(map[string]string),
		images:   make(map[string]models.ImageRecord),
	}
}

func (m *MemoryStore) ExistsBySourceURL(_ context.Context, sourceURL string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bySource[sourceURL]
	return ok, nil
}

func (m *MemoryStore) InsertVehicle(_ context.Context, v *models.VehicleRecord, images []models.ImageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v.SourceURL != nil {
		if _, taken := m.bySource[*v.SourceURL]; taken {
			return ErrDuplicate
		}
		m.bySource[*v.SourceURL] = v.ID
	}
	m.vehicles[v.ID] = *v
	for _, img := range images {
		m.images[img.ID] = img
	}
	return nil
}

func (m *MemoryStore) CountMatching(_ context.Context, term string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(term)
	n := 0
	for _, v := range m.vehicles {
		if strings.Contains(strings.ToLower(v.Brand), needle) || strings.Contains(strings.ToLower(v.Category), needle) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ReplaceImageURL(_ context.Context, imageID, newURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	img, ok := m.images[imageID]
	if !ok {
		return ErrNotFound
	}
	img.URL = newURL
	m.images[imageID] = img
	return nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }

// Vehicle returns a stored vehicle by id.
func (m *MemoryStore) Vehicle(id string) (models.VehicleRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	return v, ok
}

// Images returns the images of a vehicle ordered by position.
func (m *MemoryStore) Images(vehicleID string) []models.ImageRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.ImageRecord
	for _, img := range m.images {
		if img.VehicleID == vehicleID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Len returns the number of stored vehicles.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vehicles)
}
