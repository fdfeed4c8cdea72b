package services

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"aid-relief-server/models"
)

// MatchingService pairs an approved, unconsumed donation with an approved,
// undelivered request by creating a delivery. The delivery row and both
// cross-reference updates are applied in a single transaction so a partial
// match is never observable.
type MatchingService struct {
	db *gorm.DB
}

// NewMatchingService creates a new matching service
func NewMatchingService(db *gorm.DB) *MatchingService {
	return &MatchingService{db: db}
}

// CreateDelivery validates the pairing and atomically creates the delivery.
// Concurrent attempts to consume the same donation or request resolve to
// exactly one winner; losers receive a ConflictError.
func (s *MatchingService) CreateDelivery(requestID, donationID, coordinator string) (*models.Delivery, error) {
	coordinator = strings.TrimSpace(coordinator)
	if coordinator == "" {
		return nil, NewValidationError("coordinator name is required")
	}

	var request models.AidRequest
	if err := s.db.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "request", ID: requestID}
		}
		return nil, err
	}

	var donation models.Donation
	if err := s.db.First(&donation, "id = ?", donationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "donation", ID: donationID}
		}
		return nil, err
	}

	// Preconditions checked up front so callers get a clear validation
	// failure; the guarded updates below re-check under the transaction.
	if !request.Approved {
		return nil, NewValidationError("request %s is not approved", requestID)
	}
	if request.Delivered {
		return nil, NewValidationError("request %s is already delivered", requestID)
	}
	if request.IsMatched() {
		return nil, NewValidationError("request %s is already assigned to a delivery", requestID)
	}
	if !donation.Approved {
		return nil, NewValidationError("donation %s is not approved", donationID)
	}
	if donation.IsMatched() {
		return nil, NewValidationError("donation %s is already matched", donationID)
	}

	delivery := models.Delivery{
		RequestID:   requestID,
		DonationID:  donationID,
		Coordinator: coordinator,
		Status:      models.StatusAssigned,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Guarded compare-and-set: the WHERE clause only matches if the
		// donation is still unconsumed, so exactly one concurrent matcher
		// can claim it.
		res := tx.Model(&models.Donation{}).
			Where("id = ? AND approved = ? AND matched_request_id IS NULL", donationID, true).
			Update("matched_request_id", requestID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Reason: "donation " + donationID + " was matched by a concurrent assignment"}
		}

		if err := tx.Create(&delivery).Error; err != nil {
			return err
		}

		res = tx.Model(&models.AidRequest{}).
			Where("id = ? AND approved = ? AND delivered = ? AND delivery_id IS NULL", requestID, true, false).
			Update("delivery_id", delivery.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Reason: "request " + requestID + " was assigned by a concurrent matcher"}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Delivery %s created: request %s <- donation %s (coordinator %s)",
		delivery.ID, requestID, donationID, coordinator)

	return &delivery, nil
}
