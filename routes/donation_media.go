package routes

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"

	"aid-relief-server/database"
	"aid-relief-server/models"
)

// validateImageFile validates mimetype and size (<= 5MB)
func validateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// RegisterDonationMediaRoutes adds the donation photo upload endpoint
func RegisterDonationMediaRoutes(rg *gin.RouterGroup) {
	rg.POST("/donations/:id/photo", func(c *gin.Context) {
		var donation models.Donation
		if err := database.DB.First(&donation, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Donation not found"})
			return
		}

		if err := c.Request.ParseMultipartForm(10 << 20); err != nil { // 10MB
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid form data"})
			return
		}

		header, _ := c.FormFile("photo")
		if header == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file provided"})
			return
		}
		if !validateImageFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid photo"})
			return
		}

		cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
		apiKey := os.Getenv("CLOUDINARY_API_KEY")
		apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
		if cloudName == "" || apiKey == "" || apiSecret == "" {
			log.Printf("❌ Cloudinary environment variables not set")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary not configured"})
			return
		}

		cld, err := cloudinary.NewFromURL(fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName))
		if err != nil {
			log.Printf("❌ Failed to initialize Cloudinary: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary initialization failed"})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read photo"})
			return
		}
		defer file.Close()

		ow := true
		uf := true
		folder := "donations/" + donation.ID
		log.Printf("📸 Uploading donation photo to folder: %s", folder)

		up, err := cld.Upload.Upload(context.Background(), file, uploader.UploadParams{
			Folder:         folder,
			PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
			Overwrite:      &ow,
			UniqueFilename: &uf,
			ResourceType:   "image",
		})
		if err != nil {
			log.Printf("❌ Donation photo upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Photo upload failed"})
			return
		}

		if err := database.DB.Model(&donation).Update("photo_url", up.SecureURL).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save photo URL"})
			return
		}

		log.Printf("✅ Donation photo uploaded: %s", up.SecureURL)

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"photo_url": up.SecureURL,
		})
	})
}
