package handlers

import (
	"net/http"
	"strconv"

	"group-dating-app/internal/config"
	"group-dating-app/internal/models"
	"group-dating-app/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PhotoHandler struct {
	db      *gorm.DB
	storage *services.StorageService
	cfg     *config.Config
}

func NewPhotoHandler(db *gorm.DB, storage *services.StorageService, cfg *config.Config) *PhotoHandler {
	return &PhotoHandler{db: db, storage: storage, cfg: cfg}
}

func (h *PhotoHandler) UploadGroupPhoto(c *gin.Context) {
	userID, _ := c.Get("user_id")
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var membership models.GroupMember
	if err := h.db.Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		First(&membership).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be a member of this group"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	if fileHeader.Size > h.cfg.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	allowed := false
	for _, t := range h.cfg.AllowedImageTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	key, url, err := h.storage.UploadGroupPhoto(c.Request.Context(), uint(groupID), file, fileHeader.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	photo := models.GroupPhoto{
		GroupID:    uint(groupID),
		URL:        url,
		ObjectKey:  key,
		UploadedBy: userID.(uint),
	}
	if err := h.db.Create(&photo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photo": photo})
}

func (h *PhotoHandler) DeleteGroupPhoto(c *gin.Context) {
	userID, _ := c.Get("user_id")
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}
	photoID, err := strconv.ParseUint(c.Param("photo_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	var membership models.GroupMember
	if err := h.db.Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		First(&membership).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be a member of this group"})
		return
	}

	var photo models.GroupPhoto
	if err := h.db.Where("id = ? AND group_id = ?", photoID, groupID).First(&photo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	if err := h.storage.DeletePhoto(c.Request.Context(), photo.ObjectKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}

	if err := h.db.Delete(&photo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}
