package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback represents a recipient's feedback on a fulfilled aid request.
// Created once after the request is delivered; never mutated.
type Feedback struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID string    `json:"request_id" gorm:"type:uuid;not null;index"`
	Message   string    `json:"message" gorm:"type:text"`
	Rating    int       `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Request *AidRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
}

// TableName sets custom table name
func (Feedback) TableName() string { return "feedback" }

// BeforeCreate is a GORM hook that runs before creating a feedback entry
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FeedbackCreate represents the request structure for leaving feedback
type FeedbackCreate struct {
	RequestID string `json:"request_id" binding:"required"`
	Message   string `json:"message"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
}
