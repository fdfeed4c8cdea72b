package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aid-relief-server/database"
	"aid-relief-server/models"
)

// newTestDB opens an isolated in-memory sqlite database. Each test passes a
// unique name so parallel tests never share state.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite handles one writer at a time; a single connection keeps
	// concurrent test goroutines from tripping over SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// createApprovedPair seeds one approved aid request and one approved donation
func createApprovedPair(t *testing.T, db *gorm.DB) (*models.AidRequest, *models.Donation) {
	t.Helper()

	request := &models.AidRequest{
		Item:          "Blankets",
		Qty:           20,
		Urgency:       models.UrgencyHigh,
		Location:      "Riverside camp, sector 3",
		RecipientName: "Amal Haddad",
		Approved:      true,
	}
	require.NoError(t, db.Create(request).Error)

	donation := &models.Donation{
		Item:      "Blankets",
		Qty:       20,
		Category:  models.CategoryClothes,
		Location:  "Central depot",
		DonorName: "Nour Khalil",
		Approved:  true,
	}
	require.NoError(t, db.Create(donation).Error)

	return request, donation
}

// createTestDelivery seeds a matched request/donation pair and its delivery
func createTestDelivery(t *testing.T, db *gorm.DB, status models.DeliveryStatus) *models.Delivery {
	t.Helper()

	request, donation := createApprovedPair(t, db)

	delivery := &models.Delivery{
		RequestID:   request.ID,
		DonationID:  donation.ID,
		Coordinator: "Samir",
		Status:      status,
	}
	require.NoError(t, db.Create(delivery).Error)

	require.NoError(t, db.Model(donation).Update("matched_request_id", request.ID).Error)
	require.NoError(t, db.Model(request).Update("delivery_id", delivery.ID).Error)

	return delivery
}
