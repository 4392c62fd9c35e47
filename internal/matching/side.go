package matching

import "group-dating-app/internal/models"

// Side identifies which half of a like a member belongs to. It is resolved
// once at the start of an approval and carried through the ledger; nothing
// downstream re-derives it.
type Side int

const (
	SideLiker Side = iota
	SideLikee
)

func (s Side) String() string {
	if s == SideLiker {
		return models.ApprovalSideLiker
	}
	return models.ApprovalSideLikee
}
