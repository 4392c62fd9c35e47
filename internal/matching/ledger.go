package matching

import (
	"time"

	"group-dating-app/internal/models"
)

// The ledger is the pure half of the state machine: transition functions
// over a like's denormalized counters and status. It never touches storage;
// the service applies its results inside a transaction.

// ApprovalResult describes what a single recorded approval did to the like.
type ApprovalResult struct {
	Side           Side
	ApprovalsCount int
	RequiredCount  int
	SideCompleted  bool
	Matched        bool
}

// initializeLedger sets up a fresh like's counters from the required counts
// snapshotted at creation. Both sides must have at least one active member.
func initializeLedger(like *models.Like, likerRequired, likeeRequired int) error {
	if likerRequired < 1 || likeeRequired < 1 {
		return ErrInvalidGroupSize
	}
	like.LikerRequiredCount = likerRequired
	like.LikeeRequiredCount = likeeRequired
	like.LikerApprovalsCount = 0
	like.LikeeApprovalsCount = 0
	like.Status = models.LikeStatusPendingLikee
	return nil
}

// applyApproval increments the given side's counter by one and evaluates the
// phase transition. Counters saturate at the required count: an increment on
// an already-complete side is reported as ErrAlreadyApproved instead of
// overflowing.
//
// The phase advances likee-first: completing the likee side moves the like
// from pending_likee to pending_liker, and completing the liker side while
// the like is pending_liker produces a match. A liker-side approval recorded
// while the likee side is still pending counts toward the total but leaves
// the status untouched.
func applyApproval(like *models.Like, side Side, now time.Time) (*ApprovalResult, error) {
	if isTerminal(like.Status) {
		return nil, ErrAlreadyTerminal
	}

	res := &ApprovalResult{Side: side}

	switch side {
	case SideLikee:
		if like.LikeeApprovalsCount >= like.LikeeRequiredCount {
			return nil, ErrAlreadyApproved
		}
		like.LikeeApprovalsCount++
		res.ApprovalsCount = like.LikeeApprovalsCount
		res.RequiredCount = like.LikeeRequiredCount
		res.SideCompleted = like.LikeeApprovalsCount == like.LikeeRequiredCount

		if res.SideCompleted && like.Status == models.LikeStatusPendingLikee {
			like.Status = models.LikeStatusPendingLiker
			// The liker side may already be saturated from approvals
			// recorded out of order; finish the match now.
			if like.LikerApprovalsCount >= like.LikerRequiredCount {
				markMatched(like, now)
				res.Matched = true
			}
		}

	case SideLiker:
		if like.LikerApprovalsCount >= like.LikerRequiredCount {
			return nil, ErrAlreadyApproved
		}
		like.LikerApprovalsCount++
		res.ApprovalsCount = like.LikerApprovalsCount
		res.RequiredCount = like.LikerRequiredCount
		res.SideCompleted = like.LikerApprovalsCount == like.LikerRequiredCount

		// Liker completion only matters once the likee side has signed
		// off; while pending_likee the counter moves but the phase stays.
		if res.SideCompleted && like.Status == models.LikeStatusPendingLiker {
			markMatched(like, now)
			res.Matched = true
		}
	}

	return res, nil
}

// rejectLike moves the like into its terminal rejected state from either
// pending phase.
func rejectLike(like *models.Like) error {
	if isTerminal(like.Status) {
		return ErrAlreadyTerminal
	}
	like.Status = models.LikeStatusRejected
	return nil
}

func markMatched(like *models.Like, now time.Time) {
	like.Status = models.LikeStatusMatched
	like.MatchedAt = &now
}

func isTerminal(status string) bool {
	return status == models.LikeStatusMatched || status == models.LikeStatusRejected
}

// fullyApproved reports whether both sides have met their required counts,
// purely from the stored counters.
func fullyApproved(like *models.Like) bool {
	return like.LikeeApprovalsCount >= like.LikeeRequiredCount &&
		like.LikerApprovalsCount >= like.LikerRequiredCount
}
