package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aid-relief-server/database"
	"aid-relief-server/models"
)

// RegisterAdminRoutes registers admin approval and management routes.
// The caller is expected to wrap the group in auth + admin middleware.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PATCH("/donations/:id/approval", setDonationApproval)
	router.PATCH("/requests/:id/approval", setRequestApproval)
	router.GET("/dashboard/stats", getDashboardStats)
	router.GET("/users", listUsers)
	router.PATCH("/users/:id/status", setUserStatus)
}

// ApprovalUpdate represents an approval decision
type ApprovalUpdate struct {
	Approved *bool `json:"approved" binding:"required"`
}

// setDonationApproval approves or un-approves a donation
func setDonationApproval(c *gin.Context) {
	var req ApprovalUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var donation models.Donation
	if err := database.DB.First(&donation, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Donation not found",
		})
		return
	}

	// Approval cannot be withdrawn once the donation is consumed by a delivery
	if donation.IsMatched() && !*req.Approved {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": "Donation is already matched to a delivery",
		})
		return
	}

	if err := database.DB.Model(&donation).Update("approved", *req.Approved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Update failed",
			"message": "Failed to update donation approval",
		})
		return
	}

	log.Printf("✅ Donation %s approval set to %v", donation.ID, *req.Approved)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Donation approval updated",
		"donation": donation,
	})
}

// setRequestApproval approves or un-approves an aid request
func setRequestApproval(c *gin.Context) {
	var req ApprovalUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var request models.AidRequest
	if err := database.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Aid request not found",
		})
		return
	}

	if request.IsMatched() && !*req.Approved {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": "Request is already matched to a delivery",
		})
		return
	}

	if err := database.DB.Model(&request).Update("approved", *req.Approved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Update failed",
			"message": "Failed to update request approval",
		})
		return
	}

	log.Printf("✅ Aid request %s approval set to %v", request.ID, *req.Approved)

	c.JSON(http.StatusOK, gin.H{
		"message": "Request approval updated",
		"request": request,
	})
}

// getDashboardStats returns counts for the admin dashboard
func getDashboardStats(c *gin.Context) {
	var stats struct {
		TotalDonations     int64 `json:"total_donations"`
		PendingDonations   int64 `json:"pending_donations"`
		TotalRequests      int64 `json:"total_requests"`
		PendingRequests    int64 `json:"pending_requests"`
		ActiveDeliveries   int64 `json:"active_deliveries"`
		CompletedDeliveries int64 `json:"completed_deliveries"`
		TotalUsers         int64 `json:"total_users"`
		FeedbackCount      int64 `json:"feedback_count"`
	}

	database.DB.Model(&models.Donation{}).Count(&stats.TotalDonations)
	database.DB.Model(&models.Donation{}).Where("approved = ?", false).Count(&stats.PendingDonations)
	database.DB.Model(&models.AidRequest{}).Count(&stats.TotalRequests)
	database.DB.Model(&models.AidRequest{}).Where("approved = ?", false).Count(&stats.PendingRequests)
	database.DB.Model(&models.Delivery{}).Where("status <> ?", models.StatusDelivered).Count(&stats.ActiveDeliveries)
	database.DB.Model(&models.Delivery{}).Where("status = ?", models.StatusDelivered).Count(&stats.CompletedDeliveries)
	database.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	database.DB.Model(&models.Feedback{}).Count(&stats.FeedbackCount)

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// listUsers returns all user accounts
func listUsers(c *gin.Context) {
	query := database.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Query failed",
			"message": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// setUserStatus activates or deactivates a user account
func setUserStatus(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "User not found",
		})
		return
	}

	if err := database.DB.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Update failed",
			"message": "Failed to update user status",
		})
		return
	}

	log.Printf("👤 User %s active set to %v", user.ID, *req.IsActive)

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated",
		"user":    user,
	})
}
