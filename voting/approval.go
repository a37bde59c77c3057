package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/storage"
)

// ApprovalEngine maintains running per-option approval counters through
// incremental diffing; it never recomputes an option counter from scratch.
type ApprovalEngine struct {
	votes      storage.VoteStorage
	options    storage.VoteOptionStorage
	approvals  storage.ApprovalStorage
	locks      *VoteLocks
	maxOptions int
}

func NewApprovalEngine(votes storage.VoteStorage, options storage.VoteOptionStorage, approvals storage.ApprovalStorage, locks *VoteLocks, maxOptions int) *ApprovalEngine {
	return &ApprovalEngine{
		votes:      votes,
		options:    options,
		approvals:  approvals,
		locks:      locks,
		maxOptions: maxOptions,
	}
}

// Approve records the voter's approval of one option. Approving an already
// approved option is a no-op.
func (e *ApprovalEngine) Approve(ctx context.Context, voteID, optionID, voter string) error {
	unlock := e.locks.Lock(voteID)
	defer unlock()

	if err := e.requireApprovalVote(ctx, voteID); err != nil {
		return err
	}
	return e.approve(ctx, voteID, optionID, voter)
}

// Unapprove removes the voter's approval of one option if present. The
// counter saturates at zero.
func (e *ApprovalEngine) Unapprove(ctx context.Context, voteID, optionID, voter string) error {
	unlock := e.locks.Lock(voteID)
	defer unlock()

	if err := e.requireApprovalVote(ctx, voteID); err != nil {
		return err
	}
	return e.unapprove(ctx, voteID, optionID, voter)
}

// SetBallot replaces the voter's full approval set for a vote. All
// validation happens before the first mutation; the diff against the current
// set is then applied as removals followed by additions, each adjusting its
// option counter individually.
func (e *ApprovalEngine) SetBallot(ctx context.Context, voteID string, optionIDs []string, voter string) error {
	unlock := e.locks.Lock(voteID)
	defer unlock()

	if err := e.requireApprovalVote(ctx, voteID); err != nil {
		return err
	}

	desired := make(map[string]struct{}, len(optionIDs))
	for _, optionID := range optionIDs {
		if _, err := e.resolveOption(ctx, voteID, optionID); err != nil {
			return err
		}
		desired[optionID] = struct{}{}
	}
	if len(desired) > e.maxOptions {
		return fmt.Errorf("%w: %d > %d", ErrTooManyApprovals, len(desired), e.maxOptions)
	}

	existing, err := e.approvals.GetByVoteAndVoter(ctx, voteID, voter)
	if err != nil {
		return err
	}
	current := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		current[a.OptionID] = struct{}{}
	}

	toAdd, toRemove := diffApprovals(current, desired)
	logging.Log.Infof("APPROVAL: ballot for vote %s: %d additions, %d removals", voteID, len(toAdd), len(toRemove))

	for _, optionID := range toRemove {
		if err := e.unapprove(ctx, voteID, optionID, voter); err != nil {
			return err
		}
	}
	for _, optionID := range toAdd {
		if err := e.approve(ctx, voteID, optionID, voter); err != nil {
			return err
		}
	}
	return nil
}

// Approvals returns the option ids the voter currently approves of in a vote.
func (e *ApprovalEngine) Approvals(ctx context.Context, voteID, voter string) ([]string, error) {
	rows, err := e.approvals.GetByVoteAndVoter(ctx, voteID, voter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.OptionID)
	}
	return ids, nil
}

func (e *ApprovalEngine) approve(ctx context.Context, voteID, optionID, voter string) error {
	opt, err := e.resolveOption(ctx, voteID, optionID)
	if err != nil {
		return err
	}

	if _, err := e.approvals.Get(ctx, voteID, voter, optionID); err == nil {
		return nil // already approved
	} else if !errors.Is(err, storage.ErrItemNotFound) {
		return err
	}

	if err := e.approvals.Create(ctx, &storage.Approval{
		VoteID:   voteID,
		OptionID: optionID,
		Voter:    voter,
	}); err != nil {
		return err
	}
	return e.options.SetApprovalsCount(ctx, optionID, satAdd(opt.ApprovalsCount, 1))
}

func (e *ApprovalEngine) unapprove(ctx context.Context, voteID, optionID, voter string) error {
	opt, err := e.resolveOption(ctx, voteID, optionID)
	if err != nil {
		return err
	}

	if _, err := e.approvals.Get(ctx, voteID, voter, optionID); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil // nothing to withdraw
		}
		return err
	}

	if err := e.approvals.Delete(ctx, voteID, voter, optionID); err != nil {
		return err
	}

	count := opt.ApprovalsCount - 1
	if count < 0 {
		count = 0
	}
	return e.options.SetApprovalsCount(ctx, optionID, count)
}

func (e *ApprovalEngine) resolveOption(ctx context.Context, voteID, optionID string) (*storage.VoteOption, error) {
	opt, err := e.options.Get(ctx, optionID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}
	if opt.VoteID != voteID {
		return nil, fmt.Errorf("%w: option %s, vote %s", ErrOptionNotInVote, optionID, voteID)
	}
	return opt, nil
}

func (e *ApprovalEngine) requireApprovalVote(ctx context.Context, voteID string) error {
	vote, err := e.votes.Get(ctx, voteID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return ErrVoteNotFound
		}
		return err
	}
	if vote.VotingSystem != storage.SystemApproval {
		return ErrMethodMismatch
	}
	return nil
}

// diffApprovals computes the additions and removals that transform current
// into desired. Plain set difference; no ordering requirement.
func diffApprovals(current, desired map[string]struct{}) (toAdd, toRemove []string) {
	for optionID := range desired {
		if _, ok := current[optionID]; !ok {
			toAdd = append(toAdd, optionID)
		}
	}
	for optionID := range current {
		if _, ok := desired[optionID]; !ok {
			toRemove = append(toRemove, optionID)
		}
	}
	return toAdd, toRemove
}
