package models

import (
	"time"

	"gorm.io/gorm"
)

// Like status values. A like starts pending on the likee side, advances to
// the liker side once every likee member has approved, and ends matched or
// rejected. Matched and rejected are terminal.
const (
	LikeStatusPendingLikee = "pending_likee"
	LikeStatusPendingLiker = "pending_liker"
	LikeStatusMatched      = "matched"
	LikeStatusRejected     = "rejected"
)

// Sides of a like, as stored on approval records.
const (
	ApprovalSideLiker = "liker"
	ApprovalSideLikee = "likee"
)

type Like struct {
	ID              uint  `json:"id" gorm:"primaryKey"`
	LikerGroupID    uint  `json:"liker_group_id" gorm:"not null;uniqueIndex:uq_like;index:idx_likes_liker"`
	LikeeGroupID    uint  `json:"likee_group_id" gorm:"not null;uniqueIndex:uq_like;index:idx_likes_likee"`
	InitiatorUserID *uint `json:"initiator_user_id,omitempty" gorm:"index"`

	// Denormalized approval counters, frozen at like creation. Status is
	// derived from these and never recomputed from approval rows.
	LikeeApprovalsCount int `json:"likee_approvals_count" gorm:"not null;default:0"`
	LikeeRequiredCount  int `json:"likee_required_count" gorm:"not null"`
	LikerApprovalsCount int `json:"liker_approvals_count" gorm:"not null;default:0"`
	LikerRequiredCount  int `json:"liker_required_count" gorm:"not null"`

	Status    string     `json:"status" gorm:"not null;default:pending_likee;index:idx_likes_liker;index:idx_likes_likee"`
	MatchedAt *time.Time `json:"matched_at,omitempty"`

	// Bumped on every mutation; the optimistic-lock token for approvals.
	Version int `json:"-" gorm:"not null;default:1"`

	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	LikerGroup Group          `json:"liker_group,omitempty" gorm:"foreignKey:LikerGroupID"`
	LikeeGroup Group          `json:"likee_group,omitempty" gorm:"foreignKey:LikeeGroupID"`
	Approvals  []LikeApproval `json:"approvals,omitempty"`
}

// LikeApproval records a single member's consent on a like. The unique index
// on (like_id, user_id) is what makes approvals idempotent at the storage
// level, even if two requests race past the application check.
type LikeApproval struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LikeID    uint      `json:"like_id" gorm:"not null;uniqueIndex:uq_like_approval;index"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:uq_like_approval;index"`
	Side      string    `json:"side" gorm:"not null"` // liker, likee
	CreatedAt time.Time `json:"created_at"`
	Like      Like      `json:"like,omitempty" gorm:"foreignKey:LikeID"`
}

// Match rows always store the smaller group id in Group1ID so the pair
// (A,B) and (B,A) collapse onto one row, backed by the unique index.
type Match struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Group1ID      uint           `json:"group1_id" gorm:"not null;uniqueIndex:uq_match;index:idx_matches_group1"`
	Group2ID      uint           `json:"group2_id" gorm:"not null;uniqueIndex:uq_match;index:idx_matches_group2"`
	MatchedAt     time.Time      `json:"matched_at" gorm:"not null"`
	LastMessageAt *time.Time     `json:"last_message_at,omitempty"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Group1        Group          `json:"group1,omitempty" gorm:"foreignKey:Group1ID"`
	Group2        Group          `json:"group2,omitempty" gorm:"foreignKey:Group2ID"`
}
