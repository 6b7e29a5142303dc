package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

const (
	vehiclesCollection = "vehicles"
	imagesCollection   = "vehicle_images"
)

// MongoStore keeps vehicles and images in two MongoDB collections.
type MongoStore struct {
	client   *mongo.Client
	vehicles *mongo.Collection
	images   *mongo.Collection
	log      *logger.Logger
}

// NewMongoStore wraps an already connected client.
func NewMongoStore(client *mongo.Client, dbName string, log *logger.Logger) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:   client,
		vehicles: db.Collection(vehiclesCollection),
		images:   db.Collection(imagesCollection),
		log:      log,
	}
}

// EnsureIndexes creates the unique source_url index. Vehicles entered by hand
// carry no source_url, so the index only covers string values.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.vehicles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "source_url", Value: 1}},
		Options: options.Index().
			SetName("source_url_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"source_url": bson.M{"$type": "string"}}),
	})
	if err != nil {
		return fmt.Errorf("create source_url index: %w", err)
	}
	_, err = s.images.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "position", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create vehicle_images index: %w", err)
	}
	return nil
}

func (s *MongoStore) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	n, err := s.vehicles.CountDocuments(ctx, bson.M{"source_url": sourceURL}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count by source_url: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) InsertVehicle(ctx context.Context, v *models.VehicleRecord, images []models.ImageRecord) error {
	if _, err := s.vehicles.InsertOne(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	if len(images) == 0 {
		return nil
	}

	docs := make([]interface{}, len(images))
	for i, img := range images {
		docs[i] = img
	}
	if _, err := s.images.InsertMany(ctx, docs); err != nil {
		// Remove the vehicle so it is not left without images.
		if _, delErr := s.vehicles.DeleteOne(ctx, bson.M{"_id": v.ID}); delErr != nil {
			s.log.Error("compensating vehicle delete failed", "vehicle_id", v.ID, "error", delErr)
		}
		if _, delErr := s.images.DeleteMany(ctx, bson.M{"vehicle_id": v.ID}); delErr != nil {
			s.log.Error("compensating image delete failed", "vehicle_id", v.ID, "error", delErr)
		}
		return fmt.Errorf("insert images: %w", err)
	}
	return nil
}

func (s *MongoStore) CountMatching(ctx context.Context, term string) (int, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
	n, err := s.vehicles.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"brand": pattern},
		bson.M{"category": pattern},
	}})
	if err != nil {
		return 0, fmt.Errorf("count matching %q: %w", term, err)
	}
	return int(n), nil
}

func (s *MongoStore) ReplaceImageURL(ctx context.Context, imageID, newURL string) error {
	res, err := s.images.UpdateOne(ctx, bson.M{"_id": imageID}, bson.M{"$set": bson.M{"url": newURL}})
	if err != nil {
		return fmt.Errorf("update image url: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	return nil
}
