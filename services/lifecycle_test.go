package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-relief-server/models"
)

func TestAdvanceThroughStages(t *testing.T) {
	db := newTestDB(t, "lifecycle_stages")
	svc := NewDeliveryLifecycleService(db)

	delivery := createTestDelivery(t, db, models.StatusAssigned)

	for _, target := range []models.DeliveryStatus{
		models.StatusOutForDelivery,
		models.StatusReachedArea,
		models.StatusDelivered,
	} {
		got, err := svc.Advance(delivery.ID, target)
		require.NoError(t, err)
		assert.Equal(t, target, got.Status)
	}

	var stored models.Delivery
	require.NoError(t, db.First(&stored, "id = ?", delivery.ID).Error)
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

func TestAdvanceToDeliveredMarksRequest(t *testing.T) {
	db := newTestDB(t, "lifecycle_delivered")
	svc := NewDeliveryLifecycleService(db)

	delivery := createTestDelivery(t, db, models.StatusReachedArea)

	_, err := svc.Advance(delivery.ID, models.StatusDelivered)
	require.NoError(t, err)

	var request models.AidRequest
	require.NoError(t, db.First(&request, "id = ?", delivery.RequestID).Error)
	assert.True(t, request.Delivered)

	// Repeating the terminal transition is idempotent
	_, err = svc.Advance(delivery.ID, models.StatusDelivered)
	require.NoError(t, err)

	require.NoError(t, db.First(&request, "id = ?", delivery.RequestID).Error)
	assert.True(t, request.Delivered)
}

func TestAdvanceBackwardAllowed(t *testing.T) {
	db := newTestDB(t, "lifecycle_backward")
	svc := NewDeliveryLifecycleService(db)

	// Coordinators correct mis-taps by moving the status back
	delivery := createTestDelivery(t, db, models.StatusReachedArea)

	got, err := svc.Advance(delivery.ID, models.StatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutForDelivery, got.Status)
}

func TestAdvanceRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t, "lifecycle_unknown_status")
	svc := NewDeliveryLifecycleService(db)

	delivery := createTestDelivery(t, db, models.StatusAssigned)

	_, err := svc.Advance(delivery.ID, "Teleported")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAdvanceDeliveryNotFound(t *testing.T) {
	db := newTestDB(t, "lifecycle_not_found")
	svc := NewDeliveryLifecycleService(db)

	_, err := svc.Advance("missing", models.StatusDelivered)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
