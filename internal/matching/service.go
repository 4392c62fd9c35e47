package matching

import (
	"context"
	"errors"
	"time"

	"group-dating-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service runs the like/match state machine on top of gorm. Every mutation
// of a like happens inside one transaction with an optimistic version check,
// so concurrent approvals on the same like serialize instead of losing
// updates. Version conflicts are retried internally a bounded number of
// times before ErrConcurrencyConflict reaches the caller.
type Service struct {
	db         *gorm.DB
	oracle     MembershipOracle
	log        *logrus.Logger
	maxRetries int
	retryDelay time.Duration
}

func NewService(db *gorm.DB, oracle MembershipOracle, log *logrus.Logger, maxRetries int, retryDelay time.Duration) *Service {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Service{
		db:         db,
		oracle:     oracle,
		log:        log,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// CreateLike records that likerGroupID likes likeeGroupID, snapshotting both
// groups' active member counts as the required approval counts. The snapshot
// is frozen: membership changes after creation do not alter it.
func (s *Service) CreateLike(ctx context.Context, likerGroupID, likeeGroupID, initiatorUserID uint) (*models.Like, error) {
	if likerGroupID == likeeGroupID {
		return nil, ErrSelfLike
	}

	for _, groupID := range []uint{likerGroupID, likeeGroupID} {
		var group models.Group
		err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", groupID, true).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		} else if err != nil {
			return nil, err
		}
	}

	isMember, err := s.oracle.IsActiveMember(ctx, likerGroupID, initiatorUserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotAMember
	}

	likerCount, err := s.oracle.MemberCount(ctx, likerGroupID)
	if err != nil {
		return nil, err
	}
	likeeCount, err := s.oracle.MemberCount(ctx, likeeGroupID)
	if err != nil {
		return nil, err
	}

	like := &models.Like{
		LikerGroupID:    likerGroupID,
		LikeeGroupID:    likeeGroupID,
		InitiatorUserID: &initiatorUserID,
	}
	if err := initializeLedger(like, likerCount, likeeCount); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("liker_group_id = ? AND likee_group_id = ?", likerGroupID, likeeGroupID).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.Status != models.LikeStatusRejected {
				return ErrDuplicateLike
			}
			// A rejected like on the same ordered pair is revived in
			// place: the unique (liker, likee) constraint keeps one row
			// per pair, so re-liking resets that row with fresh counts.
			if err := tx.Where("like_id = ?", existing.ID).Delete(&models.LikeApproval{}).Error; err != nil {
				return err
			}
			res := tx.Model(&models.Like{}).
				Where("id = ? AND version = ?", existing.ID, existing.Version).
				Updates(map[string]interface{}{
					"initiator_user_id":     initiatorUserID,
					"likee_approvals_count": 0,
					"likee_required_count":  like.LikeeRequiredCount,
					"liker_approvals_count": 0,
					"liker_required_count":  like.LikerRequiredCount,
					"status":                models.LikeStatusPendingLikee,
					"matched_at":            nil,
					"version":               existing.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConcurrencyConflict
			}
			like.ID = existing.ID
			like.Version = existing.Version + 1
			like.CreatedAt = existing.CreatedAt
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(like).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateLike
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"like_id":        like.ID,
		"liker_group_id": likerGroupID,
		"likee_group_id": likeeGroupID,
		"liker_required": like.LikerRequiredCount,
		"likee_required": like.LikeeRequiredCount,
	}).Info("Like created")

	return like, nil
}

// Approve records one member's approval on a like. It resolves which side
// the user is on, increments that side's counter exactly once, and advances
// the phase when a side completes. When the final approval lands, the like
// is marked matched and the Match row is created in the same transaction.
//
// A repeated approval by the same user returns the current like together
// with ErrAlreadyApproved and changes nothing.
func (s *Service) Approve(ctx context.Context, likeID, userID uint) (*models.Like, *models.Match, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 && s.retryDelay > 0 {
			time.Sleep(s.retryDelay)
		}
		like, match, err := s.approveOnce(ctx, likeID, userID)
		if errors.Is(err, ErrConcurrencyConflict) {
			lastErr = err
			s.log.WithFields(logrus.Fields{"like_id": likeID, "user_id": userID, "attempt": attempt + 1}).
				Warn("Approval hit a concurrent update, retrying")
			continue
		}
		return like, match, err
	}
	return nil, nil, lastErr
}

func (s *Service) approveOnce(ctx context.Context, likeID, userID uint) (*models.Like, *models.Match, error) {
	// Load and side resolution happen outside the transaction; staleness
	// is caught by the version check below, which is the point of the
	// optimistic discipline.
	var like models.Like
	if err := s.db.WithContext(ctx).First(&like, likeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLikeNotFound
		}
		return nil, nil, err
	}
	if isTerminal(like.Status) {
		return nil, nil, ErrAlreadyTerminal
	}

	side, err := s.resolveSide(ctx, &like, userID)
	if err != nil {
		return nil, nil, err
	}

	var match *models.Match
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotence check and marking share the transaction with the
		// counter update; the unique (like_id, user_id) index backs the
		// check if two requests for the same user race.
		var existing models.LikeApproval
		if err := tx.Where("like_id = ? AND user_id = ?", like.ID, userID).First(&existing).Error; err == nil {
			return ErrAlreadyApproved
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		originalVersion := like.Version
		res, err := applyApproval(&like, side, now)
		if err != nil {
			return err
		}

		approval := models.LikeApproval{LikeID: like.ID, UserID: userID, Side: side.String()}
		if err := tx.Create(&approval).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyApproved
			}
			return err
		}

		updated := tx.Model(&models.Like{}).
			Where("id = ? AND version = ?", like.ID, originalVersion).
			Updates(map[string]interface{}{
				"likee_approvals_count": like.LikeeApprovalsCount,
				"liker_approvals_count": like.LikerApprovalsCount,
				"status":                like.Status,
				"matched_at":            like.MatchedAt,
				"version":               originalVersion + 1,
			})
		if updated.Error != nil {
			return updated.Error
		}
		if updated.RowsAffected == 0 {
			return ErrConcurrencyConflict
		}
		like.Version = originalVersion + 1

		s.log.WithFields(logrus.Fields{
			"like_id":   like.ID,
			"user_id":   userID,
			"side":      side.String(),
			"approvals": res.ApprovalsCount,
			"required":  res.RequiredCount,
			"status":    like.Status,
		}).Info("Approval recorded")

		if res.Matched {
			created, err := s.createMatch(tx, &like, now)
			if err != nil {
				return err
			}
			match = created
			s.log.WithFields(logrus.Fields{
				"like_id":   like.ID,
				"match_id":  match.ID,
				"group1_id": match.Group1ID,
				"group2_id": match.Group2ID,
			}).Info("Match created")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyApproved) {
			return &like, nil, err
		}
		return nil, nil, err
	}
	return &like, match, nil
}

// resolveSide determines which half of the like the user belongs to. The
// likee group is checked first, mirroring the phase order.
func (s *Service) resolveSide(ctx context.Context, like *models.Like, userID uint) (Side, error) {
	isLikee, err := s.oracle.IsActiveMember(ctx, like.LikeeGroupID, userID)
	if err != nil {
		return 0, err
	}
	if isLikee {
		return SideLikee, nil
	}
	isLiker, err := s.oracle.IsActiveMember(ctx, like.LikerGroupID, userID)
	if err != nil {
		return 0, err
	}
	if isLiker {
		return SideLiker, nil
	}
	return 0, ErrNotAMember
}

// createMatch inserts the Match row for a like that just reached matched,
// with the group pair in canonical order. If the two groups already matched
// through an earlier like and later unmatched, the existing row is revived
// instead, keeping the unique (group1, group2) pair intact.
func (s *Service) createMatch(tx *gorm.DB, like *models.Like, now time.Time) (*models.Match, error) {
	group1, group2 := like.LikerGroupID, like.LikeeGroupID
	if group2 < group1 {
		group1, group2 = group2, group1
	}

	match := &models.Match{
		Group1ID:  group1,
		Group2ID:  group2,
		MatchedAt: now,
		IsActive:  true,
	}
	err := tx.Create(match).Error
	if err == nil {
		return match, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	var existing models.Match
	if err := tx.Where("group1_id = ? AND group2_id = ?", group1, group2).First(&existing).Error; err != nil {
		return nil, err
	}
	existing.MatchedAt = now
	existing.IsActive = true
	if err := tx.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Reject moves a like into its terminal rejected state. Any active member of
// either group may reject. Rejecting an already terminal like returns
// ErrAlreadyTerminal and changes nothing.
func (s *Service) Reject(ctx context.Context, likeID, userID uint) (*models.Like, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 && s.retryDelay > 0 {
			time.Sleep(s.retryDelay)
		}
		like, err := s.rejectOnce(ctx, likeID, userID)
		if errors.Is(err, ErrConcurrencyConflict) {
			lastErr = err
			continue
		}
		return like, err
	}
	return nil, lastErr
}

func (s *Service) rejectOnce(ctx context.Context, likeID, userID uint) (*models.Like, error) {
	var like models.Like
	if err := s.db.WithContext(ctx).First(&like, likeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLikeNotFound
		}
		return nil, err
	}
	if _, err := s.resolveSide(ctx, &like, userID); err != nil {
		return nil, err
	}

	originalVersion := like.Version
	if err := rejectLike(&like); err != nil {
		return nil, err
	}

	updated := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("id = ? AND version = ?", like.ID, originalVersion).
		Updates(map[string]interface{}{
			"status":  like.Status,
			"version": originalVersion + 1,
		})
	if updated.Error != nil {
		return nil, updated.Error
	}
	if updated.RowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}
	like.Version = originalVersion + 1

	s.log.WithFields(logrus.Fields{"like_id": like.ID, "user_id": userID}).Info("Like rejected")
	return &like, nil
}

// Unmatch soft-deletes a match: the row stays for audit but drops out of
// default listings. The originating like is left untouched.
func (s *Service) Unmatch(ctx context.Context, matchID, userID uint) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", matchID, true).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	} else if err != nil {
		return nil, err
	}

	isMember1, err := s.oracle.IsActiveMember(ctx, match.Group1ID, userID)
	if err != nil {
		return nil, err
	}
	isMember2, err := s.oracle.IsActiveMember(ctx, match.Group2ID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember1 && !isMember2 {
		return nil, ErrNotAMember
	}

	match.IsActive = false
	if err := s.db.WithContext(ctx).Save(&match).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"match_id": match.ID, "user_id": userID}).Info("Match deactivated")
	return &match, nil
}
