package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DonationCategory classifies the kind of goods being offered
type DonationCategory string

const (
	CategoryFood     DonationCategory = "Food"
	CategoryClothes  DonationCategory = "Clothes"
	CategoryMedicine DonationCategory = "Medicine"
	CategoryHygiene  DonationCategory = "Hygiene"
	CategoryOther    DonationCategory = "Other"
)

// IsValid checks if the category is one of the known values
func (c DonationCategory) IsValid() bool {
	switch c {
	case CategoryFood, CategoryClothes, CategoryMedicine, CategoryHygiene, CategoryOther:
		return true
	default:
		return false
	}
}

// Donation represents an offered item pending admin approval and later matching
type Donation struct {
	ID        string           `json:"id" gorm:"type:uuid;primaryKey"`
	Item      string           `json:"item" gorm:"size:255;not null"`
	Qty       int              `json:"qty" gorm:"not null;check:qty > 0"`
	Category  DonationCategory `json:"category" gorm:"type:varchar(20);not null;default:'Food';check:category IN ('Food','Clothes','Medicine','Hygiene','Other')"`
	Location  string           `json:"location" gorm:"size:500"` // pickup location, free text
	DonorName string           `json:"donor_name" gorm:"size:255"`
	Phone     string           `json:"phone" gorm:"size:20"`
	PhotoURL  *string          `json:"photo_url" gorm:"size:500"`
	Approved  bool             `json:"approved" gorm:"default:false"` // set only by an admin

	// MatchedRequestID is set exactly once by the matching engine. Non-null
	// means the donation is consumed by an active delivery.
	MatchedRequestID *string `json:"matched_request_id" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Donation model
func (Donation) TableName() string {
	return "donations"
}

// BeforeCreate is a GORM hook that runs before creating a donation
func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Category == "" {
		d.Category = CategoryFood
	}
	return nil
}

// IsMatched checks if the donation is already consumed by a delivery
func (d *Donation) IsMatched() bool {
	return d.MatchedRequestID != nil
}

// DonationCreate represents the request structure for submitting a donation
type DonationCreate struct {
	Item      string           `json:"item" binding:"required"`
	Qty       int              `json:"qty" binding:"required,min=1"`
	Category  DonationCategory `json:"category"`
	Location  string           `json:"location" binding:"required"`
	DonorName string           `json:"donor_name" binding:"required"`
	Phone     string           `json:"phone"`
}
