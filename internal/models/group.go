package models

import (
	"time"

	"gorm.io/gorm"
)

type Group struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	CreatedByID *uint          `json:"created_by_id,omitempty" gorm:"index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Members     []GroupMember  `json:"members,omitempty"`
	Photos      []GroupPhoto   `json:"photos,omitempty"`
	CreatedBy   *User          `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

type GroupMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	GroupID  uint      `json:"group_id" gorm:"not null;uniqueIndex:uq_group_member;index"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:uq_group_member;index"`
	Role     string    `json:"role" gorm:"default:member"` // member, admin
	IsActive bool      `json:"is_active" gorm:"default:true"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
	Group    Group     `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type GroupPhoto struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	GroupID    uint           `json:"group_id" gorm:"not null;index"`
	URL        string         `json:"url" gorm:"not null"`
	ObjectKey  string         `json:"object_key" gorm:"not null"`
	UploadedBy uint           `json:"uploaded_by" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	Group      Group          `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}
