package jobs

import (
	"log"
	"time"

	"aid-relief-server/config"
	"aid-relief-server/database"
	"aid-relief-server/models"
)

// StaleLocationJob flags in-transit deliveries whose last GPS fix is too old
type StaleLocationJob struct {
	stopChan chan bool
}

// NewStaleLocationJob creates a new stale location watchdog
func NewStaleLocationJob() *StaleLocationJob {
	return &StaleLocationJob{
		stopChan: make(chan bool),
	}
}

// Start begins the watchdog loop
func (j *StaleLocationJob) Start() {
	go j.run()
	log.Println("🚀 Stale location watchdog started")
}

// Stop stops the watchdog loop
func (j *StaleLocationJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Stale location watchdog stopped")
}

func (j *StaleLocationJob) run() {
	interval := time.Duration(config.AppConfig.Tracking.WatchdogIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.CheckStaleLocations()
		case <-j.stopChan:
			return
		}
	}
}

// CheckStaleLocations marks deliveries whose tracking signal went quiet
func (j *StaleLocationJob) CheckStaleLocations() {
	maxAge := time.Duration(config.AppConfig.Tracking.StaleAfterMinutes) * time.Minute
	cutoff := time.Now().UTC().Add(-maxAge)

	// Only in-transit deliveries are expected to keep reporting
	result := database.DB.Model(&models.Delivery{}).
		Where("status IN ?", []string{string(models.StatusOutForDelivery), string(models.StatusReachedArea)}).
		Where("location_stale = ?", false).
		Where("last_seen_at IS NOT NULL AND last_seen_at <= ?", cutoff).
		Update("location_stale", true)

	if result.Error != nil {
		log.Printf("❌ Error checking stale locations: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("⏰ Flagged %d deliveries with stale tracking", result.RowsAffected)
	}
}
