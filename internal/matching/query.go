package matching

import (
	"context"
	"errors"

	"group-dating-app/internal/models"

	"gorm.io/gorm"
)

// Role restricts pending-like listings to one side of the like.
type Role string

const (
	RoleAny   Role = ""
	RoleLiker Role = "liker"
	RoleLikee Role = "likee"
)

// PendingLikeFilter narrows PendingLikes. Zero value means all non-terminal
// likes involving the group, on either side.
type PendingLikeFilter struct {
	Role   Role
	Status string // optional, one of the pending status literals
}

// PendingLikes lists the non-terminal likes a group is involved in, answered
// from the stored status column alone.
func (s *Service) PendingLikes(ctx context.Context, groupID uint, filter PendingLikeFilter) ([]models.Like, error) {
	q := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("status IN ?", []string{models.LikeStatusPendingLikee, models.LikeStatusPendingLiker})

	switch filter.Role {
	case RoleLiker:
		q = q.Where("liker_group_id = ?", groupID)
	case RoleLikee:
		q = q.Where("likee_group_id = ?", groupID)
	default:
		q = q.Where("(liker_group_id = ? OR likee_group_id = ?)", groupID, groupID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var likes []models.Like
	if err := q.Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// Matches lists a group's active matches, most recent first.
func (s *Service) Matches(ctx context.Context, groupID uint) ([]models.Match, error) {
	var matches []models.Match
	err := s.db.WithContext(ctx).
		Where("(group1_id = ? OR group2_id = ?) AND is_active = ?", groupID, groupID, true).
		Order("matched_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// IsFullyApproved reports whether both sides of a like have met their
// required counts. A single row read over the denormalized counters; no
// aggregation over approval rows.
func (s *Service) IsFullyApproved(ctx context.Context, likeID uint) (bool, error) {
	var like models.Like
	err := s.db.WithContext(ctx).
		Select("likee_approvals_count", "likee_required_count", "liker_approvals_count", "liker_required_count").
		First(&like, likeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrLikeNotFound
	} else if err != nil {
		return false, err
	}
	return fullyApproved(&like), nil
}

// GetLike fetches a single like by id.
func (s *Service) GetLike(ctx context.Context, likeID uint) (*models.Like, error) {
	var like models.Like
	err := s.db.WithContext(ctx).First(&like, likeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLikeNotFound
	} else if err != nil {
		return nil, err
	}
	return &like, nil
}
