package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestUrgency ranks how quickly an aid request needs fulfilling
type RequestUrgency string

const (
	UrgencyNormal   RequestUrgency = "Normal"
	UrgencyHigh     RequestUrgency = "High"
	UrgencyCritical RequestUrgency = "Critical"
)

// IsValid checks if the urgency is one of the known values
func (u RequestUrgency) IsValid() bool {
	switch u {
	case UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	default:
		return false
	}
}

// AidRequest represents a stated need pending admin approval and later matching
type AidRequest struct {
	ID            string         `json:"id" gorm:"type:uuid;primaryKey"`
	Item          string         `json:"item" gorm:"size:255;not null"`
	Qty           int            `json:"qty" gorm:"not null;check:qty > 0"`
	Urgency       RequestUrgency `json:"urgency" gorm:"type:varchar(20);not null;default:'Normal';check:urgency IN ('Normal','High','Critical')"`
	Location      string         `json:"location" gorm:"size:500"` // delivery location, free text
	RecipientName string         `json:"recipient_name" gorm:"size:255"`
	Phone         string         `json:"phone" gorm:"size:20"`
	Approved      bool           `json:"approved" gorm:"default:false"`  // set only by an admin
	Delivered     bool           `json:"delivered" gorm:"default:false"` // set only on terminal delivery transition

	// DeliveryID is set exactly once by the matching engine. Non-null means
	// the request is consumed by an active delivery.
	DeliveryID *string `json:"delivery_id" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the AidRequest model
func (AidRequest) TableName() string {
	return "aid_requests"
}

// BeforeCreate is a GORM hook that runs before creating an aid request
func (r *AidRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyNormal
	}
	return nil
}

// IsMatched checks if the request is already consumed by a delivery
func (r *AidRequest) IsMatched() bool {
	return r.DeliveryID != nil
}

// AidRequestCreate represents the request structure for submitting an aid request
type AidRequestCreate struct {
	Item          string         `json:"item" binding:"required"`
	Qty           int            `json:"qty" binding:"required,min=1"`
	Urgency       RequestUrgency `json:"urgency"`
	Location      string         `json:"location" binding:"required"`
	RecipientName string         `json:"recipient_name" binding:"required"`
	Phone         string         `json:"phone"`
}
