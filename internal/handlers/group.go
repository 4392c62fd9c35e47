package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"group-dating-app/internal/config"
	"group-dating-app/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

type CreateGroupRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MemberIDs   []uint `json:"member_ids" binding:"required,min=1"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role,omitempty" binding:"omitempty,oneof=member admin"`
}

func NewGroupHandler(db *gorm.DB, cfg *config.Config) *GroupHandler {
	return &GroupHandler{db: db, cfg: cfg}
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}

	// The creator is always a member, whether or not they listed themselves.
	memberIDs := req.MemberIDs
	creatorIncluded := false
	for _, id := range memberIDs {
		if id == userID.(uint) {
			creatorIncluded = true
			break
		}
	}
	if !creatorIncluded {
		memberIDs = append(memberIDs, userID.(uint))
	}

	var users []models.User
	if err := h.db.Where("id IN ? AND is_active = ?", memberIDs, true).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up members"})
		return
	}
	if len(users) != len(memberIDs) {
		c.JSON(http.StatusNotFound, gin.H{"error": "One or more members not found"})
		return
	}

	creatorID := userID.(uint)
	group := models.Group{
		CreatedByID: &creatorID,
		IsActive:    true,
	}
	if req.Name != "" {
		group.Name = &req.Name
	}
	if req.Description != "" {
		group.Description = &req.Description
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		members := make([]models.GroupMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			role := "member"
			if id == creatorID {
				role = "admin"
			}
			members = append(members, models.GroupMember{
				GroupID:  group.ID,
				UserID:   id,
				Role:     role,
				IsActive: true,
			})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	if err := h.db.Preload("Members").First(&group, group.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := h.db.Preload("Members").Preload("Photos").
		Where("id = ? AND is_active = ?", groupID, true).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, _ := c.Get("user_id")
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}

	var group models.Group
	if err := h.db.Where("id = ? AND is_active = ?", groupID, true).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	// Only existing active members may add people.
	var callerMembership models.GroupMember
	if err := h.db.Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		First(&callerMembership).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be a member of this group"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ? AND is_active = ?", req.UserID, true).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	role := req.Role
	if role == "" {
		role = "member"
	}

	member := models.GroupMember{
		GroupID:  uint(groupID),
		UserID:   req.UserID,
		Role:     role,
		IsActive: true,
	}
	if err := h.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this group"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}
