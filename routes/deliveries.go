package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aid-relief-server/database"
	"aid-relief-server/middleware"
	"aid-relief-server/models"
	"aid-relief-server/services"
	ws "aid-relief-server/websocket"
)

// DeliveryDeps bundles the services the delivery routes depend on
type DeliveryDeps struct {
	Matching  *services.MatchingService
	Lifecycle *services.DeliveryLifecycleService
	Tracker   *services.LocationTracker
	Hub       *ws.Hub
}

// RegisterDeliveryRoutes registers delivery coordination routes
func RegisterDeliveryRoutes(router *gin.RouterGroup, deps DeliveryDeps) {
	router.GET("/", listDeliveries)
	router.GET("/:id", getDelivery)
	router.POST("/", middleware.CoordinatorOnly(), createDelivery(deps.Matching))
	router.PATCH("/:id/status", middleware.CoordinatorOnly(), updateDeliveryStatus(deps.Lifecycle, deps.Hub))
	router.POST("/:id/location", middleware.CoordinatorOnly(), reportLocation(deps.Tracker))
	router.GET("/:id/location", getLocation(deps.Tracker))
}

// listDeliveries returns deliveries with their matched request and donation
func listDeliveries(c *gin.Context) {
	query := database.DB.Model(&models.Delivery{}).
		Preload("Request").
		Preload("Donation")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if coordinator := c.Query("coordinator"); coordinator != "" {
		query = query.Where("coordinator = ?", coordinator)
	}

	var deliveries []models.Delivery
	if err := query.Order("created_at DESC").Find(&deliveries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Query failed",
			"message": "Failed to fetch deliveries",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": deliveries,
		"count":      len(deliveries),
	})
}

// getDelivery returns a single delivery by ID
func getDelivery(c *gin.Context) {
	var delivery models.Delivery
	if err := database.DB.Preload("Request").Preload("Donation").
		First(&delivery, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Delivery not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"delivery": delivery})
}

// createDelivery matches an approved donation to an approved request
func createDelivery(matching *services.MatchingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DeliveryCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		delivery, err := matching.CreateDelivery(req.RequestID, req.DonationID, req.Coordinator)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "Delivery created",
			"delivery": delivery,
		})
	}
}

// updateDeliveryStatus moves a delivery to a new lifecycle status
func updateDeliveryStatus(lifecycle *services.DeliveryLifecycleService, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DeliveryStatusUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		delivery, err := lifecycle.Advance(c.Param("id"), req.Status)
		if err != nil {
			respondError(c, err)
			return
		}

		hub.PublishStatus(delivery.ID, delivery.Status)

		c.JSON(http.StatusOK, gin.H{
			"message":  "Delivery status updated",
			"delivery": delivery,
		})
	}
}

// reportLocation records a GPS fix for an in-transit delivery
func reportLocation(tracker *services.LocationTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LocationReport
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		loc, err := tracker.Report(c.Param("id"), req.Lat, req.Lng)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Location recorded",
			"location": loc,
		})
	}
}

// getLocation returns the latest known position of a delivery
func getLocation(tracker *services.LocationTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deliveryID := c.Param("id")

		loc, ok, err := tracker.Current(deliveryID)
		if err != nil {
			respondError(c, err)
			return
		}

		if !ok {
			c.JSON(http.StatusOK, gin.H{
				"delivery_id":  deliveryID,
				"has_location": false,
				"message":      "Location unknown",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"delivery_id":  deliveryID,
			"has_location": true,
			"location":     loc,
		})
	}
}

// RegisterTrackingRoutes registers the live tracking websocket endpoint
func RegisterTrackingRoutes(router *gin.RouterGroup, hub *ws.Hub) {
	router.GET("/deliveries/:id/track", func(c *gin.Context) {
		deliveryID := c.Param("id")

		var delivery models.Delivery
		if err := database.DB.First(&delivery, "id = ?", deliveryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not found",
				"message": "Delivery not found",
			})
			return
		}

		userID := c.GetString("user_id")
		ws.ServeViewer(hub, c.Writer, c.Request, userID, deliveryID)
	})
}
