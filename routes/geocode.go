package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aid-relief-server/services"
	"aid-relief-server/utils"
)

// RegisterGeocodeRoutes registers the reverse geocoding helper endpoint
func RegisterGeocodeRoutes(router *gin.RouterGroup) {
	router.GET("/reverse", reverseGeocode)
}

// reverseGeocode resolves coordinates into a human-readable place name.
// Used by tracking dashboards to label a delivery's last known position.
func reverseGeocode(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid coordinates",
			"message": "lat must be a number",
		})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid coordinates",
			"message": "lng must be a number",
		})
		return
	}

	if !utils.IsLocationValid(lat, lng) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid coordinates",
			"message": "Coordinates are out of range",
		})
		return
	}

	result, err := utils.ReverseGeocode(lat, lng)
	if err != nil {
		respondError(c, &services.TransportError{Op: "reverse geocode", Err: err})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lat":          lat,
		"lng":          lng,
		"display_name": result.DisplayName,
	})
}
