package matching

import (
	"context"

	"group-dating-app/internal/models"

	"gorm.io/gorm"
)

// MembershipOracle answers who is currently an active member of a group.
// The matching core only ever reads membership; group CRUD lives elsewhere.
type MembershipOracle interface {
	MemberCount(ctx context.Context, groupID uint) (int, error)
	IsActiveMember(ctx context.Context, groupID, userID uint) (bool, error)
}

type gormMembershipOracle struct {
	db *gorm.DB
}

// NewMembershipOracle returns a MembershipOracle backed by the group_members
// table.
func NewMembershipOracle(db *gorm.DB) MembershipOracle {
	return &gormMembershipOracle{db: db}
}

func (o *gormMembershipOracle) MemberCount(ctx context.Context, groupID uint) (int, error) {
	var count int64
	err := o.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND is_active = ?", groupID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (o *gormMembershipOracle) IsActiveMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := o.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
