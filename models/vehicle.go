package models

import "time"

// Transmission values accepted by the catalog.
type Transmission string

const (
	TransmissionManual    Transmission = "Manuelle"
	TransmissionAutomatic Transmission = "Automatique"
)

// Energy values accepted by the catalog.
type Energy string

const (
	EnergyDiesel       Energy = "Diesel"
	EnergyPetrol       Energy = "Essence"
	EnergyHybrid       Energy = "Hybride"
	EnergyPlugInHybrid Energy = "Hybride rechargeable"
	EnergyElectric     Energy = "Électrique"
	EnergyLPG          Energy = "GPL"
)

// VehicleStatus is the sales status of a catalog vehicle.
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "available"
	VehicleSold      VehicleStatus = "sold"
	VehicleReserved  VehicleStatus = "reserved"
)

// VehicleRecord is a persisted catalog vehicle.
type VehicleRecord struct {
	ID        string  `bson:"_id" json:"id"`
	SourceURL *string `bson:"source_url,omitempty" json:"source_url,omitempty"` // set only for imported vehicles

	Brand        string        `bson:"brand" json:"brand"`
	Model        string        `bson:"model" json:"model"`
	Year         int           `bson:"year" json:"year"`
	Price        float64       `bson:"price" json:"price"`
	MonthlyPrice *float64      `bson:"monthly_price,omitempty" json:"monthly_price,omitempty"`
	MileageKm    int           `bson:"mileage_km" json:"mileage_km"`
	Transmission Transmission  `bson:"transmission" json:"transmission"`
	Energy       Energy        `bson:"energy" json:"energy"`
	Category     string        `bson:"category,omitempty" json:"category,omitempty"`
	Color        string        `bson:"color,omitempty" json:"color,omitempty"`
	Doors        int           `bson:"doors" json:"doors"`
	Power        string        `bson:"power,omitempty" json:"power,omitempty"`
	CO2          *int          `bson:"co2,omitempty" json:"co2,omitempty"`
	EuroNorm     string        `bson:"euro_norm,omitempty" json:"euro_norm,omitempty"`
	Status       VehicleStatus `bson:"status" json:"status"`

	Description             string              `bson:"description" json:"description"`
	DescriptionTranslations map[string]string   `bson:"description_translations,omitempty" json:"description_translations,omitempty"`
	TitleTranslations       map[string]string   `bson:"title_translations,omitempty" json:"title_translations,omitempty"`
	Equipment               []string            `bson:"equipment,omitempty" json:"equipment,omitempty"`
	EquipmentTranslations   map[string][]string `bson:"equipment_translations,omitempty" json:"equipment_translations,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ImageRecord is one ordered image of a vehicle.
type ImageRecord struct {
	ID        string `bson:"_id" json:"id"`
	VehicleID string `bson:"vehicle_id" json:"vehicle_id"`
	URL       string `bson:"url" json:"url"`
	Position  int    `bson:"position" json:"position"`
}
