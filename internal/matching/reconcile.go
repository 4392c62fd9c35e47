package matching

import (
	"context"
	"time"

	"group-dating-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReconcileMatches repairs likes that were marked matched without their
// Match row landing, which can happen if the process dies between the two
// writes of an earlier, non-transactional deployment or after a partial
// restore. Each missing Match is inserted with the like's own matched_at.
// Returns the number of matches repaired.
func (s *Service) ReconcileMatches(ctx context.Context) (int, error) {
	var orphans []models.Like
	err := s.db.WithContext(ctx).
		Where("status = ?", models.LikeStatusMatched).
		Where(`NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE m.group1_id = CASE WHEN likes.liker_group_id < likes.likee_group_id THEN likes.liker_group_id ELSE likes.likee_group_id END
			  AND m.group2_id = CASE WHEN likes.liker_group_id < likes.likee_group_id THEN likes.likee_group_id ELSE likes.liker_group_id END
			  AND m.deleted_at IS NULL
		)`).
		Find(&orphans).Error
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range orphans {
		like := &orphans[i]
		matchedAt := time.Now().UTC()
		if like.MatchedAt != nil {
			matchedAt = *like.MatchedAt
		}

		_, err := s.createMatchStandalone(ctx, like, matchedAt)
		if err != nil {
			s.log.WithFields(logrus.Fields{"like_id": like.ID}).
				WithError(err).Error("Failed to repair missing match")
			return repaired, err
		}
		repaired++
		s.log.WithFields(logrus.Fields{
			"like_id":        like.ID,
			"liker_group_id": like.LikerGroupID,
			"likee_group_id": like.LikeeGroupID,
		}).Warn("Repaired matched like with missing match row")
	}
	return repaired, nil
}

func (s *Service) createMatchStandalone(ctx context.Context, like *models.Like, matchedAt time.Time) (*models.Match, error) {
	var match *models.Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.createMatch(tx, like, matchedAt)
		if err != nil {
			return err
		}
		match = created
		return nil
	})
	return match, err
}
