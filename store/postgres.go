package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS vehicles (
	id                       text PRIMARY KEY,
	source_url               text UNIQUE,
	brand                    text NOT NULL,
	model                    text NOT NULL,
	year                     integer NOT NULL,
	price                    double precision NOT NULL,
	monthly_price            double precision,
	mileage_km               integer NOT NULL,
	transmission             text NOT NULL,
	energy                   text NOT NULL,
	category                 text,
	color                    text,
	doors                    integer NOT NULL,
	power                    text,
	co2                      integer,
	euro_norm                text,
	status                   text NOT NULL,
	description              text,
	description_translations jsonb,
	title_translations       jsonb,
	equipment                jsonb,
	equipment_translations   jsonb,
	created_at               timestamptz NOT NULL,
	updated_at               timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS vehicle_images (
	id         text PRIMARY KEY,
	vehicle_id text NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
	url        text NOT NULL,
	position   integer NOT NULL
);
CREATE INDEX IF NOT EXISTS vehicle_images_vehicle_idx ON vehicle_images (vehicle_id, position);
`

// PostgresStore keeps the catalog in PostgreSQL. A vehicle and its images
// are written in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresStore opens a pool on dsn.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int, log *logger.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 4
	}
	cfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, log: log}, nil
}

// EnsureSchema creates the catalog tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vehicles WHERE source_url = $1)`, sourceURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by source_url: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) InsertVehicle(ctx context.Context, v *models.VehicleRecord, images []models.ImageRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO vehicles
		(id, source_url, brand, model, year, price, monthly_price, mileage_km, transmission, energy,
		 category, color, doors, power, co2, euro_norm, status, description,
		 description_translations, title_translations, equipment, equipment_translations,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT (source_url) DO NOTHING`,
		v.ID, v.SourceURL, v.Brand, v.Model, v.Year, v.Price, v.MonthlyPrice, v.MileageKm,
		string(v.Transmission), string(v.Energy), v.Category, v.Color, v.Doors, v.Power, v.CO2,
		v.EuroNorm, string(v.Status), v.Description,
		v.DescriptionTranslations, v.TitleTranslations, v.Equipment, v.EquipmentTranslations,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}

	if len(images) > 0 {
		b := &pgx.Batch{}
		for _, img := range images {
			b.Queue(`INSERT INTO vehicle_images (id, vehicle_id, url, position) VALUES ($1,$2,$3,$4)`,
				img.ID, img.VehicleID, img.URL, img.Position)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("insert images: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountMatching(ctx context.Context, term string) (int, error) {
	pattern := "%" + escapeLike(term) + "%"
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM vehicles WHERE brand ILIKE $1 OR category ILIKE $1`, pattern).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count matching %q: %w", term, err)
	}
	return n, nil
}

func (s *PostgresStore) ReplaceImageURL(ctx context.Context, imageID, newURL string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE vehicle_images SET url = $2 WHERE id = $1`, imageID, newURL)
	if err != nil {
		return fmt.Errorf("update image url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
