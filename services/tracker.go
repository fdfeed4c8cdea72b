package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"aid-relief-server/models"
	"aid-relief-server/utils"
)

// LocationPublisher pushes a fresh position to live viewers. The websocket
// hub satisfies this; tests pass a recorder.
type LocationPublisher interface {
	PublishLocation(deliveryID string, loc models.DeliveryLocation)
}

// LocationTracker retains the single freshest position report per delivery.
// Reports carry no trustworthy client clock, so the server stamps its own
// receipt time and the last report to arrive wins. Readers never observe a
// torn triple: the in-memory map is guarded by a RWMutex and values are
// replaced whole.
//
// The freshest triple is also written through to the delivery row so a
// restart does not lose the last known position.
type LocationTracker struct {
	db        *gorm.DB
	publisher LocationPublisher

	mu     sync.RWMutex
	latest map[string]models.DeliveryLocation
}

// NewLocationTracker creates a new location tracker. publisher may be nil.
func NewLocationTracker(db *gorm.DB, publisher LocationPublisher) *LocationTracker {
	return &LocationTracker{
		db:        db,
		publisher: publisher,
		latest:    make(map[string]models.DeliveryLocation),
	}
}

// Report records a position report from a coordinator device. Reports for a
// delivered delivery are accepted but ignored.
func (t *LocationTracker) Report(deliveryID string, lat, lng float64) (models.DeliveryLocation, error) {
	if !utils.IsLocationValid(lat, lng) {
		return models.DeliveryLocation{}, NewValidationError("invalid coordinates %f, %f", lat, lng)
	}

	var delivery models.Delivery
	if err := t.db.First(&delivery, "id = ?", deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DeliveryLocation{}, &NotFoundError{Kind: "delivery", ID: deliveryID}
		}
		return models.DeliveryLocation{}, err
	}

	if delivery.Status.IsTerminal() {
		// Late reports from a device that hasn't noticed completion yet.
		loc, _ := t.lastKnown(deliveryID, &delivery)
		return loc, nil
	}

	// Stamping the receipt time inside the lock serializes reports for the
	// same delivery by arrival order.
	t.mu.Lock()
	loc := models.DeliveryLocation{Lat: lat, Lng: lng, ReportedAt: time.Now().UTC()}
	t.latest[deliveryID] = loc
	t.mu.Unlock()

	if err := t.db.Model(&models.Delivery{}).Where("id = ?", deliveryID).Updates(map[string]interface{}{
		"last_lat":       lat,
		"last_lng":       lng,
		"last_seen_at":   loc.ReportedAt,
		"location_stale": false,
	}).Error; err != nil {
		log.Printf("⚠️ Failed to persist location for delivery %s: %v", deliveryID, err)
	}

	if t.publisher != nil {
		t.publisher.PublishLocation(deliveryID, loc)
	}

	return loc, nil
}

// Current returns the freshest known position for a delivery. The second
// return value is false when no report has ever arrived.
func (t *LocationTracker) Current(deliveryID string) (models.DeliveryLocation, bool, error) {
	t.mu.RLock()
	loc, ok := t.latest[deliveryID]
	t.mu.RUnlock()
	if ok {
		return loc, true, nil
	}

	var delivery models.Delivery
	if err := t.db.First(&delivery, "id = ?", deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DeliveryLocation{}, false, &NotFoundError{Kind: "delivery", ID: deliveryID}
		}
		return models.DeliveryLocation{}, false, err
	}

	loc, ok = t.lastKnown(deliveryID, &delivery)
	return loc, ok, nil
}

// lastKnown reads the in-memory triple, falling back to the persisted row
func (t *LocationTracker) lastKnown(deliveryID string, delivery *models.Delivery) (models.DeliveryLocation, bool) {
	t.mu.RLock()
	loc, ok := t.latest[deliveryID]
	t.mu.RUnlock()
	if ok {
		return loc, true
	}

	if delivery.LastLat == nil || delivery.LastLng == nil || delivery.LastSeenAt == nil {
		return models.DeliveryLocation{}, false
	}
	return models.DeliveryLocation{
		Lat:        *delivery.LastLat,
		Lng:        *delivery.LastLng,
		ReportedAt: *delivery.LastSeenAt,
	}, true
}
