package matching

import (
	"context"
	"testing"
	"time"

	"group-dating-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingLikesByRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	groupA := seedGroup(t, svc.db, 1)
	groupB := seedGroup(t, svc.db, 2)
	groupC := seedGroup(t, svc.db, 3)

	outgoing, err := svc.CreateLike(ctx, groupA, groupB, 1)
	require.NoError(t, err)
	incoming, err := svc.CreateLike(ctx, groupC, groupA, 3)
	require.NoError(t, err)

	likes, err := svc.PendingLikes(ctx, groupA, PendingLikeFilter{})
	require.NoError(t, err)
	assert.Len(t, likes, 2)

	likes, err = svc.PendingLikes(ctx, groupA, PendingLikeFilter{Role: RoleLiker})
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, outgoing.ID, likes[0].ID)

	likes, err = svc.PendingLikes(ctx, groupA, PendingLikeFilter{Role: RoleLikee})
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, incoming.ID, likes[0].ID)
}

func TestPendingLikesExcludesTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	groupA := seedGroup(t, svc.db, 1)
	groupB := seedGroup(t, svc.db, 2)
	groupC := seedGroup(t, svc.db, 3)

	rejected, err := svc.CreateLike(ctx, groupA, groupB, 1)
	require.NoError(t, err)
	_, err = svc.Reject(ctx, rejected.ID, 2)
	require.NoError(t, err)

	matched, err := svc.CreateLike(ctx, groupA, groupC, 1)
	require.NoError(t, err)
	_, _, err = svc.Approve(ctx, matched.ID, 3)
	require.NoError(t, err)
	_, match, err := svc.Approve(ctx, matched.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, match)

	likes, err := svc.PendingLikes(ctx, groupA, PendingLikeFilter{})
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestPendingLikesStatusFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	groupA := seedGroup(t, svc.db, 1)
	groupB := seedGroup(t, svc.db, 2)
	groupC := seedGroup(t, svc.db, 3)

	early, err := svc.CreateLike(ctx, groupA, groupB, 1)
	require.NoError(t, err)

	advanced, err := svc.CreateLike(ctx, groupA, groupC, 1)
	require.NoError(t, err)
	_, _, err = svc.Approve(ctx, advanced.ID, 3)
	require.NoError(t, err)

	likes, err := svc.PendingLikes(ctx, groupA, PendingLikeFilter{Status: models.LikeStatusPendingLiker})
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, advanced.ID, likes[0].ID)

	likes, err = svc.PendingLikes(ctx, groupA, PendingLikeFilter{Status: models.LikeStatusPendingLikee})
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, early.ID, likes[0].ID)
}

func TestMatchesOrderingAndActiveFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	groupA := seedGroup(t, svc.db, 1)
	groupB := seedGroup(t, svc.db, 2)
	groupC := seedGroup(t, svc.db, 3)
	groupD := seedGroup(t, svc.db, 4)

	older := models.Match{Group1ID: groupA, Group2ID: groupB, MatchedAt: time.Now().Add(-time.Hour), IsActive: true}
	newer := models.Match{Group1ID: groupA, Group2ID: groupC, MatchedAt: time.Now(), IsActive: true}
	inactive := models.Match{Group1ID: groupA, Group2ID: groupD, MatchedAt: time.Now(), IsActive: false}
	require.NoError(t, svc.db.Create(&older).Error)
	require.NoError(t, svc.db.Create(&newer).Error)
	require.NoError(t, svc.db.Create(&inactive).Error)

	matches, err := svc.Matches(ctx, groupA)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, newer.ID, matches[0].ID)
	assert.Equal(t, older.ID, matches[1].ID)

	// The other side of the pair sees the same match.
	matches, err = svc.Matches(ctx, groupB)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, older.ID, matches[0].ID)
}

func TestIsFullyApproved(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	groupA := seedGroup(t, svc.db, 1)
	groupB := seedGroup(t, svc.db, 2)

	created, err := svc.CreateLike(ctx, groupA, groupB, 1)
	require.NoError(t, err)

	done, err := svc.IsFullyApproved(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, done)

	_, _, err = svc.Approve(ctx, created.ID, 2)
	require.NoError(t, err)
	done, err = svc.IsFullyApproved(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, done)

	_, _, err = svc.Approve(ctx, created.ID, 1)
	require.NoError(t, err)
	done, err = svc.IsFullyApproved(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, done)

	_, err = svc.IsFullyApproved(ctx, 9999)
	assert.ErrorIs(t, err, ErrLikeNotFound)
}

func TestReconcileMatchesRepairsOrphans(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	groupB := seedGroup(t, svc.db, 2)
	groupA := seedGroup(t, svc.db, 1)

	// A like stamped matched whose match row never landed.
	matchedAt := time.Now().UTC().Truncate(time.Second)
	initiator := uint(1)
	orphan := models.Like{
		LikerGroupID:        groupA,
		LikeeGroupID:        groupB,
		InitiatorUserID:     &initiator,
		LikeeApprovalsCount: 1,
		LikeeRequiredCount:  1,
		LikerApprovalsCount: 1,
		LikerRequiredCount:  1,
		Status:              models.LikeStatusMatched,
		MatchedAt:           &matchedAt,
		Version:             3,
	}
	require.NoError(t, svc.db.Create(&orphan).Error)

	repaired, err := svc.ReconcileMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	var match models.Match
	require.NoError(t, svc.db.Where("group1_id = ? AND group2_id = ?", groupB, groupA).First(&match).Error)
	assert.True(t, match.IsActive)
	assert.Equal(t, matchedAt.Unix(), match.MatchedAt.Unix())

	// A second pass finds nothing to do.
	repaired, err = svc.ReconcileMatches(ctx)
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
