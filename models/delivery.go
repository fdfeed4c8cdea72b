package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryStatus represents the current stage of a delivery
type DeliveryStatus string

const (
	StatusAssigned       DeliveryStatus = "Assigned"
	StatusOutForDelivery DeliveryStatus = "Out for Delivery"
	StatusReachedArea    DeliveryStatus = "Reached Area"
	StatusDelivered      DeliveryStatus = "Delivered"
)

// IsValid checks if the status is one of the known values
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case StatusAssigned, StatusOutForDelivery, StatusReachedArea, StatusDelivered:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the status is the terminal "Delivered" stage
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusDelivered
}

// Delivery pairs one approved donation to one approved request and tracks the
// handoff through its status lifecycle. The request/donation references are
// immutable after creation; unique indexes back the at-most-one-delivery
// invariant at the database level.
type Delivery struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID   string         `json:"request_id" gorm:"type:uuid;not null;uniqueIndex"`
	DonationID  string         `json:"donation_id" gorm:"type:uuid;not null;uniqueIndex"`
	Coordinator string         `json:"coordinator" gorm:"size:255;not null"`
	Status      DeliveryStatus `json:"status" gorm:"type:varchar(30);not null;default:'Assigned';check:status IN ('Assigned','Out for Delivery','Reached Area','Delivered')"`

	// Last known position, written only by the location tracker. The server
	// stamps its own receipt time; client clocks are not trusted.
	LastLat       *float64   `json:"last_lat" gorm:"type:decimal(10,8)"`
	LastLng       *float64   `json:"last_lng" gorm:"type:decimal(11,8)"`
	LastSeenAt    *time.Time `json:"last_seen_at"`
	LocationStale bool       `json:"location_stale" gorm:"default:false"` // set by the watchdog job

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Request  *AidRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Donation *Donation   `json:"donation,omitempty" gorm:"foreignKey:DonationID"`
}

// TableName specifies the table name for the Delivery model
func (Delivery) TableName() string {
	return "deliveries"
}

// BeforeCreate is a GORM hook that runs before creating a delivery
func (d *Delivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = StatusAssigned
	}
	return nil
}

// DeliveryLocation is the freshest (lat, lng, receipt-time) triple for a delivery
type DeliveryLocation struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ReportedAt time.Time `json:"reported_at"`
}

// DeliveryCreate represents the request structure for creating a delivery assignment
type DeliveryCreate struct {
	RequestID   string `json:"request_id" binding:"required"`
	DonationID  string `json:"donation_id" binding:"required"`
	Coordinator string `json:"coordinator" binding:"required"`
}

// DeliveryStatusUpdate represents the request structure for advancing a delivery
type DeliveryStatusUpdate struct {
	Status DeliveryStatus `json:"status" binding:"required"`
}

// LocationReport represents a position report from a coordinator device
type LocationReport struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}
