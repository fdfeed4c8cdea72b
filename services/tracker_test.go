package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-relief-server/models"
)

// recordingPublisher captures published locations for assertions
type recordingPublisher struct {
	mu      sync.Mutex
	updates []models.DeliveryLocation
}

func (p *recordingPublisher) PublishLocation(deliveryID string, loc models.DeliveryLocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, loc)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

func TestReportLastWriteWins(t *testing.T) {
	db := newTestDB(t, "tracker_lww")
	tracker := NewLocationTracker(db, nil)

	delivery := createTestDelivery(t, db, models.StatusOutForDelivery)

	first, err := tracker.Report(delivery.ID, 33.50, 36.30)
	require.NoError(t, err)

	second, err := tracker.Report(delivery.ID, 33.51, 36.31)
	require.NoError(t, err)

	assert.False(t, second.ReportedAt.Before(first.ReportedAt))

	got, ok, err := tracker.Current(delivery.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 33.51, got.Lat)
	assert.Equal(t, 36.31, got.Lng)
	assert.Equal(t, second.ReportedAt, got.ReportedAt)
}

func TestReportPersistsToDeliveryRow(t *testing.T) {
	db := newTestDB(t, "tracker_persist")
	tracker := NewLocationTracker(db, nil)

	delivery := createTestDelivery(t, db, models.StatusOutForDelivery)

	loc, err := tracker.Report(delivery.ID, 33.50, 36.30)
	require.NoError(t, err)

	var stored models.Delivery
	require.NoError(t, db.First(&stored, "id = ?", delivery.ID).Error)
	require.NotNil(t, stored.LastLat)
	require.NotNil(t, stored.LastLng)
	require.NotNil(t, stored.LastSeenAt)
	assert.Equal(t, loc.Lat, *stored.LastLat)
	assert.Equal(t, loc.Lng, *stored.LastLng)
	assert.False(t, stored.LocationStale)

	// A fresh tracker (as after a restart) falls back to the stored row
	restarted := NewLocationTracker(db, nil)
	got, ok, err := restarted.Current(delivery.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, loc.Lat, got.Lat)
	assert.Equal(t, loc.Lng, got.Lng)
}

func TestCurrentUnknownWhenNeverReported(t *testing.T) {
	db := newTestDB(t, "tracker_unknown")
	tracker := NewLocationTracker(db, nil)

	delivery := createTestDelivery(t, db, models.StatusAssigned)

	_, ok, err := tracker.Current(delivery.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentDeliveryNotFound(t *testing.T) {
	db := newTestDB(t, "tracker_not_found")
	tracker := NewLocationTracker(db, nil)

	_, _, err := tracker.Current("missing")
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestReportRejectsInvalidCoordinates(t *testing.T) {
	db := newTestDB(t, "tracker_invalid_coords")
	tracker := NewLocationTracker(db, nil)

	delivery := createTestDelivery(t, db, models.StatusOutForDelivery)

	var validationErr *ValidationError

	_, err := tracker.Report(delivery.ID, 91.0, 0.0)
	assert.ErrorAs(t, err, &validationErr)

	_, err = tracker.Report(delivery.ID, 0.0, -181.0)
	assert.ErrorAs(t, err, &validationErr)
}

func TestReportAfterDeliveredIsNoOp(t *testing.T) {
	db := newTestDB(t, "tracker_terminal")
	tracker := NewLocationTracker(db, nil)

	delivery := createTestDelivery(t, db, models.StatusDelivered)

	// A late report from a device that missed the completion
	_, err := tracker.Report(delivery.ID, 33.50, 36.30)
	require.NoError(t, err)

	_, ok, err := tracker.Current(delivery.ID)
	require.NoError(t, err)
	assert.False(t, ok, "terminal deliveries must not record new positions")
}

func TestReportPublishesToViewers(t *testing.T) {
	db := newTestDB(t, "tracker_publish")
	publisher := &recordingPublisher{}
	tracker := NewLocationTracker(db, publisher)

	delivery := createTestDelivery(t, db, models.StatusOutForDelivery)

	_, err := tracker.Report(delivery.ID, 33.50, 36.30)
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.count())

	// Terminal deliveries publish nothing
	term := createTestDelivery(t, db, models.StatusDelivered)
	_, err = tracker.Report(term.ID, 33.50, 36.30)
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.count())
}

func TestConcurrentReportsAndReads(t *testing.T) {
	db := newTestDB(t, "tracker_concurrent")
	tracker := NewLocationTracker(db, nil)

	delivery := createTestDelivery(t, db, models.StatusOutForDelivery)

	const writers = 4
	const reads = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := tracker.Report(delivery.ID, 33.0+float64(w)*0.01, 36.0+float64(i)*0.01)
				assert.NoError(t, err)
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < reads; i++ {
			loc, ok, err := tracker.Current(delivery.ID)
			assert.NoError(t, err)
			if ok {
				// The triple is never torn: coordinates stay in the
				// range the writers produce.
				assert.GreaterOrEqual(t, loc.Lat, 33.0)
				assert.GreaterOrEqual(t, loc.Lng, 36.0)
				assert.False(t, loc.ReportedAt.IsZero())
			}
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()

	got, ok, err := tracker.Current(delivery.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.ReportedAt.IsZero())
}
