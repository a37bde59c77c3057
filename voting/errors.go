package voting

import "errors"

// All ballot operations validate before they mutate and return the first
// failure found. Controllers map these onto HTTP statuses.
var (
	ErrVoteNotFound   = errors.New("vote not found")
	ErrOptionNotFound = errors.New("vote option not found")

	// ErrMethodMismatch is returned when an operation is invoked against a
	// vote configured for the other voting method.
	ErrMethodMismatch = errors.New("vote does not use the requested voting method")

	ErrOptionNotInVote      = errors.New("option does not belong to the vote")
	ErrIncompleteBallot     = errors.New("ballot does not cover every option of the vote")
	ErrDuplicateBallotEntry = errors.New("ballot contains the same option more than once")
	ErrTooManyApprovals     = errors.New("selection exceeds the per-vote option limit")
)
