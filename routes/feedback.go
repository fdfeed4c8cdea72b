package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aid-relief-server/database"
	"aid-relief-server/models"
)

// RegisterFeedbackRoutes registers feedback routes
func RegisterFeedbackRoutes(router *gin.RouterGroup) {
	router.POST("/", createFeedback)
	router.GET("/", listFeedback)
}

// createFeedback records recipient feedback for a delivered aid request
func createFeedback(c *gin.Context) {
	var req models.FeedbackCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var request models.AidRequest
	if err := database.DB.First(&request, "id = ?", req.RequestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Aid request not found",
		})
		return
	}

	// Feedback only makes sense once the aid actually arrived
	if !request.Delivered {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"message": "Feedback can only be left for delivered requests",
		})
		return
	}

	feedback := models.Feedback{
		RequestID: req.RequestID,
		Message:   req.Message,
		Rating:    req.Rating,
	}

	if err := database.DB.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Feedback creation failed",
			"message": "Failed to record feedback",
		})
		return
	}

	log.Printf("⭐ Feedback %s recorded for request %s (%d/5)", feedback.ID, feedback.RequestID, feedback.Rating)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Feedback recorded",
		"feedback": feedback,
	})
}

// listFeedback returns feedback entries, optionally for one request
func listFeedback(c *gin.Context) {
	query := database.DB.Model(&models.Feedback{})

	if requestID := c.Query("request_id"); requestID != "" {
		query = query.Where("request_id = ?", requestID)
	}

	var entries []models.Feedback
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Query failed",
			"message": "Failed to fetch feedback",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"count":    len(entries),
	})
}
