package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"aid-relief-server/models"
)

// DeliveryLifecycleService advances a delivery through its status stages:
// Assigned -> Out for Delivery -> Reached Area -> Delivered.
//
// Any status in the enumerated set may be targeted at any time, including
// moving backward; coordinators routinely correct mis-taps in the field.
// Only the transition to Delivered has a side effect: it marks the linked
// request delivered, idempotently.
type DeliveryLifecycleService struct {
	db *gorm.DB
}

// NewDeliveryLifecycleService creates a new lifecycle service
func NewDeliveryLifecycleService(db *gorm.DB) *DeliveryLifecycleService {
	return &DeliveryLifecycleService{db: db}
}

// Advance sets the delivery's status to target
func (s *DeliveryLifecycleService) Advance(deliveryID string, target models.DeliveryStatus) (*models.Delivery, error) {
	if !target.IsValid() {
		return nil, NewValidationError("unknown delivery status %q", target)
	}

	var delivery models.Delivery
	if err := s.db.First(&delivery, "id = ?", deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "delivery", ID: deliveryID}
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Delivery{}).
			Where("id = ?", deliveryID).
			Update("status", target).Error; err != nil {
			return err
		}

		if target.IsTerminal() {
			// Flipping the flag on an already-delivered request is a no-op,
			// which makes repeated terminal transitions idempotent.
			if err := tx.Model(&models.AidRequest{}).
				Where("id = ?", delivery.RequestID).
				Update("delivered", true).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	delivery.Status = target

	log.Printf("🚚 Delivery %s status -> %s", deliveryID, target)

	return &delivery, nil
}
