package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"aid-relief-server/models"
)

func TestCreateDelivery(t *testing.T) {
	db := newTestDB(t, "matching_create")
	svc := NewMatchingService(db)

	request, donation := createApprovedPair(t, db)

	delivery, err := svc.CreateDelivery(request.ID, donation.ID, "Samir")
	require.NoError(t, err)
	require.NotNil(t, delivery)

	assert.NotEmpty(t, delivery.ID)
	assert.Equal(t, request.ID, delivery.RequestID)
	assert.Equal(t, donation.ID, delivery.DonationID)
	assert.Equal(t, "Samir", delivery.Coordinator)
	assert.Equal(t, models.StatusAssigned, delivery.Status)

	// Both sides carry the cross-reference afterwards
	var gotRequest models.AidRequest
	require.NoError(t, db.First(&gotRequest, "id = ?", request.ID).Error)
	require.NotNil(t, gotRequest.DeliveryID)
	assert.Equal(t, delivery.ID, *gotRequest.DeliveryID)
	assert.False(t, gotRequest.Delivered)

	var gotDonation models.Donation
	require.NoError(t, db.First(&gotDonation, "id = ?", donation.ID).Error)
	require.NotNil(t, gotDonation.MatchedRequestID)
	assert.Equal(t, request.ID, *gotDonation.MatchedRequestID)
}

func TestCreateDeliveryValidation(t *testing.T) {
	tests := []struct {
		name        string
		prepare     func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation)
		coordinator string
	}{
		{
			name: "request not approved",
			prepare: func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation) {
				require.NoError(t, db.Model(request).Update("approved", false).Error)
			},
			coordinator: "Samir",
		},
		{
			name: "donation not approved",
			prepare: func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation) {
				require.NoError(t, db.Model(donation).Update("approved", false).Error)
			},
			coordinator: "Samir",
		},
		{
			name: "request already delivered",
			prepare: func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation) {
				require.NoError(t, db.Model(request).Update("delivered", true).Error)
			},
			coordinator: "Samir",
		},
		{
			name: "request already matched",
			prepare: func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation) {
				require.NoError(t, db.Model(request).Update("delivery_id", "some-delivery").Error)
			},
			coordinator: "Samir",
		},
		{
			name: "donation already matched",
			prepare: func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation) {
				require.NoError(t, db.Model(donation).Update("matched_request_id", "some-request").Error)
			},
			coordinator: "Samir",
		},
		{
			name:        "blank coordinator",
			prepare:     func(t *testing.T, db *gorm.DB, request *models.AidRequest, donation *models.Donation) {},
			coordinator: "   ",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t, fmt.Sprintf("matching_validation_%d", i))
			svc := NewMatchingService(db)

			request, donation := createApprovedPair(t, db)
			tt.prepare(t, db, request, donation)

			_, err := svc.CreateDelivery(request.ID, donation.ID, tt.coordinator)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestCreateDeliveryNotFound(t *testing.T) {
	db := newTestDB(t, "matching_not_found")
	svc := NewMatchingService(db)

	request, donation := createApprovedPair(t, db)

	var notFoundErr *NotFoundError

	_, err := svc.CreateDelivery("missing", donation.ID, "Samir")
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "request", notFoundErr.Kind)

	_, err = svc.CreateDelivery(request.ID, "missing", "Samir")
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "donation", notFoundErr.Kind)
}

func TestCreateDeliverySecondAttemptRejected(t *testing.T) {
	db := newTestDB(t, "matching_second_attempt")
	svc := NewMatchingService(db)

	request, donation := createApprovedPair(t, db)
	otherRequest := &models.AidRequest{
		Item:          "Water",
		Qty:           50,
		Location:      "North shelter",
		RecipientName: "Lina",
		Approved:      true,
	}
	require.NoError(t, db.Create(otherRequest).Error)

	_, err := svc.CreateDelivery(request.ID, donation.ID, "Samir")
	require.NoError(t, err)

	// The donation is consumed; pairing it with a different request fails
	_, err = svc.CreateDelivery(otherRequest.ID, donation.ID, "Samir")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateDeliveryConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t, "matching_concurrent")
	svc := NewMatchingService(db)

	request, donation := createApprovedPair(t, db)

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateDelivery(request.ID, donation.ID, "Samir")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		// Losers see either the upfront check or the guarded update fail
		var validationErr *ValidationError
		var conflictErr *ConflictError
		if !errors.As(err, &validationErr) && !errors.As(err, &conflictErr) {
			t.Fatalf("unexpected error from losing matcher: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent matcher must win")

	var count int64
	require.NoError(t, db.Model(&models.Delivery{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
