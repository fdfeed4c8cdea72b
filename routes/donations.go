package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aid-relief-server/database"
	"aid-relief-server/models"
)

// RegisterDonationRoutes registers donation routes
func RegisterDonationRoutes(router *gin.RouterGroup) {
	router.POST("/", createDonation)
	router.GET("/", listDonations)
	router.GET("/:id", getDonation)
}

// createDonation records a new donation offer, pending admin approval
func createDonation(c *gin.Context) {
	var req models.DonationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	if req.Category != "" && !req.Category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid category",
			"message": "Category must be one of: Food, Clothes, Medicine, Hygiene, Other",
		})
		return
	}

	donation := models.Donation{
		Item:      req.Item,
		Qty:       req.Qty,
		Category:  req.Category,
		Location:  req.Location,
		DonorName: req.DonorName,
		Phone:     req.Phone,
	}

	if err := database.DB.Create(&donation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Donation creation failed",
			"message": "Failed to record donation",
		})
		return
	}

	log.Printf("🎁 Donation %s created: %d x %s", donation.ID, donation.Qty, donation.Item)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Donation recorded, pending approval",
		"donation": donation,
	})
}

// listDonations returns donations, optionally filtered by approval and match state
func listDonations(c *gin.Context) {
	query := database.DB.Model(&models.Donation{})

	if approved := c.Query("approved"); approved != "" {
		query = query.Where("approved = ?", approved == "true")
	}
	if c.Query("unmatched") == "true" {
		query = query.Where("matched_request_id IS NULL")
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var donations []models.Donation
	if err := query.Order("created_at DESC").Find(&donations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Query failed",
			"message": "Failed to fetch donations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"donations": donations,
		"count":     len(donations),
	})
}

// getDonation returns a single donation by ID
func getDonation(c *gin.Context) {
	var donation models.Donation
	if err := database.DB.First(&donation, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Donation not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donation": donation})
}
