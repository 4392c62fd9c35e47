package matching

import "errors"

// Domain outcomes surfaced to callers. Handlers map these to HTTP statuses;
// anything else coming out of this package is a storage failure and is
// propagated as-is.
var (
	// ErrNotAMember means the acting user is not an active member of the
	// group relevant to the operation.
	ErrNotAMember = errors.New("user is not an active member of the group")

	// ErrSelfLike means a group tried to like itself.
	ErrSelfLike = errors.New("a group cannot like itself")

	// ErrDuplicateLike means a non-rejected like already exists for the
	// ordered (liker, likee) pair.
	ErrDuplicateLike = errors.New("like already exists for this group pair")

	// ErrInvalidGroupSize means a group had no active members at like
	// creation time.
	ErrInvalidGroupSize = errors.New("group must have at least one active member")

	// ErrAlreadyApproved is an idempotent no-op signal: the user already
	// approved this like, or their side is already complete. Callers
	// should treat it as success with no state change.
	ErrAlreadyApproved = errors.New("user has already approved this like")

	// ErrAlreadyTerminal means the like is already matched or rejected.
	ErrAlreadyTerminal = errors.New("like is already matched or rejected")

	// ErrConcurrencyConflict means the optimistic version check lost to a
	// concurrent writer and internal retries were exhausted. Transient;
	// the caller may retry the whole operation.
	ErrConcurrencyConflict = errors.New("like was modified concurrently")

	ErrLikeNotFound  = errors.New("like not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrMatchNotFound = errors.New("match not found")
)
