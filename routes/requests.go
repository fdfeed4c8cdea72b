package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aid-relief-server/database"
	"aid-relief-server/models"
)

// RegisterRequestRoutes registers aid request routes
func RegisterRequestRoutes(router *gin.RouterGroup) {
	router.POST("/", createRequest)
	router.GET("/", listRequests)
	router.GET("/:id", getRequest)
}

// createRequest records a new aid request, pending admin approval
func createRequest(c *gin.Context) {
	var req models.AidRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	if req.Urgency != "" && !req.Urgency.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid urgency",
			"message": "Urgency must be one of: Normal, High, Critical",
		})
		return
	}

	request := models.AidRequest{
		Item:          req.Item,
		Qty:           req.Qty,
		Urgency:       req.Urgency,
		Location:      req.Location,
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
	}

	if err := database.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Request creation failed",
			"message": "Failed to record aid request",
		})
		return
	}

	log.Printf("🆘 Aid request %s created: %d x %s (%s)", request.ID, request.Qty, request.Item, request.Urgency)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Aid request recorded, pending approval",
		"request": request,
	})
}

// listRequests returns aid requests, optionally filtered by state
func listRequests(c *gin.Context) {
	query := database.DB.Model(&models.AidRequest{})

	if approved := c.Query("approved"); approved != "" {
		query = query.Where("approved = ?", approved == "true")
	}
	if c.Query("unmatched") == "true" {
		query = query.Where("delivery_id IS NULL")
	}
	if urgency := c.Query("urgency"); urgency != "" {
		query = query.Where("urgency = ?", urgency)
	}
	if delivered := c.Query("delivered"); delivered != "" {
		query = query.Where("delivered = ?", delivered == "true")
	}

	var requests []models.AidRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Query failed",
			"message": "Failed to fetch aid requests",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// getRequest returns a single aid request by ID
func getRequest(c *gin.Context) {
	var request models.AidRequest
	if err := database.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Aid request not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}
