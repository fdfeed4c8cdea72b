package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReverseGeocodingResult represents the result of a reverse geocoding lookup
type ReverseGeocodingResult struct {
	DisplayName string `json:"display_name"`
}

var geocodingClient = &http.Client{Timeout: 10 * time.Second}

// ReverseGeocode converts coordinates to a human-readable address using
// OpenStreetMap Nominatim. This is a free service, but for production use,
// consider using Google Maps API or similar.
func ReverseGeocode(lat, lng float64) (*ReverseGeocodingResult, error) {
	if !IsLocationValid(lat, lng) {
		return nil, fmt.Errorf("invalid coordinates: %f, %f", lat, lng)
	}

	apiURL := fmt.Sprintf("https://nominatim.openstreetmap.org/reverse?format=json&lat=%f&lon=%f", lat, lng)

	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	// Nominatim usage policy requires an identifying user agent
	req.Header.Set("User-Agent", "aid-relief-server/1.0")

	resp, err := geocodingClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make reverse geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status: %d", resp.StatusCode)
	}

	var result ReverseGeocodingResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if result.DisplayName == "" {
		return nil, fmt.Errorf("no address found for coordinates")
	}

	return &result, nil
}
