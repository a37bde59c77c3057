package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/storage"
)

// BallotEntry pairs one option with the grade assigned to it.
type BallotEntry struct {
	OptionID string
	Grade    Grade
}

// JudgmentEngine manages majority judgment ballots. Every mutation ends with
// a summary recomputation for the whole vote so rankings never go stale.
type JudgmentEngine struct {
	votes      storage.VoteStorage
	options    storage.VoteOptionStorage
	judgments  storage.JudgmentStorage
	aggregator *MajorityAggregator
	locks      *VoteLocks
}

func NewJudgmentEngine(votes storage.VoteStorage, options storage.VoteOptionStorage, judgments storage.JudgmentStorage, aggregator *MajorityAggregator, locks *VoteLocks) *JudgmentEngine {
	return &JudgmentEngine{
		votes:      votes,
		options:    options,
		judgments:  judgments,
		aggregator: aggregator,
		locks:      locks,
	}
}

// CastJudgment records a single grade for one option. A voter's first grade
// in a vote seeds every option of the vote at the worst grade first, so that
// each participating voter always grades the complete option set.
func (e *JudgmentEngine) CastJudgment(ctx context.Context, optionID string, grade Grade, voter string) error {
	if !grade.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownGrade, int(grade))
	}

	opt, err := e.options.Get(ctx, optionID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return ErrOptionNotFound
		}
		return err
	}
	voteID := opt.VoteID

	unlock := e.locks.Lock(voteID)
	defer unlock()

	if err := e.requireJudgmentVote(ctx, voteID); err != nil {
		return err
	}

	seeded, err := e.seedBallotIfNeeded(ctx, voteID, voter)
	if err != nil {
		return err
	}
	if seeded {
		logging.Log.Infof("MJ: seeded ballot for voter in vote %s", voteID)
		if err := e.aggregator.RecomputeForVote(ctx, voteID); err != nil {
			return err
		}
	}

	existing, err := e.judgments.GetByOptionAndVoter(ctx, optionID, voter)
	if err != nil && !errors.Is(err, storage.ErrItemNotFound) {
		return err
	}
	if err == nil && Grade(existing.Grade) == grade {
		return nil
	}

	if err := e.judgments.Put(ctx, &storage.Judgment{
		OptionID: optionID,
		VoteID:   voteID,
		Voter:    voter,
		Grade:    int(grade),
	}); err != nil {
		return err
	}
	return e.aggregator.RecomputeForVote(ctx, voteID)
}

// WithdrawJudgments removes all of a voter's grades from a vote, followed by
// a single recomputation.
func (e *JudgmentEngine) WithdrawJudgments(ctx context.Context, voteID, voter string) error {
	unlock := e.locks.Lock(voteID)
	defer unlock()

	if err := e.requireJudgmentVote(ctx, voteID); err != nil {
		return err
	}

	opts, err := e.options.GetByVote(ctx, voteID)
	if err != nil {
		return err
	}
	removed := 0
	for _, opt := range opts {
		if _, err := e.judgments.GetByOptionAndVoter(ctx, opt.ID, voter); err != nil {
			if errors.Is(err, storage.ErrItemNotFound) {
				continue
			}
			return err
		}
		if err := e.judgments.Delete(ctx, opt.ID, voter); err != nil {
			return err
		}
		removed++
	}
	if removed == 0 {
		return nil
	}
	logging.Log.Infof("MJ: withdrew %d grades from vote %s", removed, voteID)
	return e.aggregator.RecomputeForVote(ctx, voteID)
}

// SubmitCompleteBallot replaces the voter's entire ballot with one grade per
// option. The ballot is rejected whole when any entry is invalid; nothing is
// applied partially.
func (e *JudgmentEngine) SubmitCompleteBallot(ctx context.Context, voteID string, entries []BallotEntry, voter string) error {
	unlock := e.locks.Lock(voteID)
	defer unlock()

	if err := e.requireJudgmentVote(ctx, voteID); err != nil {
		return err
	}

	opts, err := e.options.GetByVote(ctx, voteID)
	if err != nil {
		return err
	}
	if len(entries) != len(opts) {
		return fmt.Errorf("%w: got %d entries, vote has %d options", ErrIncompleteBallot, len(entries), len(opts))
	}

	belongs := make(map[string]struct{}, len(opts))
	for _, opt := range opts {
		belongs[opt.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.Grade.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownGrade, int(entry.Grade))
		}
		if _, ok := belongs[entry.OptionID]; !ok {
			return fmt.Errorf("%w: option %s, vote %s", ErrOptionNotInVote, entry.OptionID, voteID)
		}
		if _, dup := seen[entry.OptionID]; dup {
			return fmt.Errorf("%w: option %s", ErrDuplicateBallotEntry, entry.OptionID)
		}
		seen[entry.OptionID] = struct{}{}
	}

	for _, opt := range opts {
		if _, err := e.judgments.GetByOptionAndVoter(ctx, opt.ID, voter); err != nil {
			if errors.Is(err, storage.ErrItemNotFound) {
				continue
			}
			return err
		}
		if err := e.judgments.Delete(ctx, opt.ID, voter); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := e.judgments.Put(ctx, &storage.Judgment{
			OptionID: entry.OptionID,
			VoteID:   voteID,
			Voter:    voter,
			Grade:    int(entry.Grade),
		}); err != nil {
			return err
		}
	}
	return e.aggregator.RecomputeForVote(ctx, voteID)
}

// Ballot returns the voter's current grades in a vote keyed by option id.
func (e *JudgmentEngine) Ballot(ctx context.Context, voteID, voter string) (map[string]Grade, error) {
	opts, err := e.options.GetByVote(ctx, voteID)
	if err != nil {
		return nil, err
	}
	ballot := make(map[string]Grade, len(opts))
	for _, opt := range opts {
		j, err := e.judgments.GetByOptionAndVoter(ctx, opt.ID, voter)
		if err != nil {
			if errors.Is(err, storage.ErrItemNotFound) {
				continue
			}
			return nil, err
		}
		ballot[opt.ID] = Grade(j.Grade)
	}
	return ballot, nil
}

// seedBallotIfNeeded writes a worst-grade row for every option of the vote
// when the voter has no rows in it yet. Reports whether seeding happened.
func (e *JudgmentEngine) seedBallotIfNeeded(ctx context.Context, voteID, voter string) (bool, error) {
	opts, err := e.options.GetByVote(ctx, voteID)
	if err != nil {
		return false, err
	}
	for _, opt := range opts {
		if _, err := e.judgments.GetByOptionAndVoter(ctx, opt.ID, voter); err == nil {
			return false, nil
		} else if !errors.Is(err, storage.ErrItemNotFound) {
			return false, err
		}
	}
	for _, opt := range opts {
		if err := e.judgments.Put(ctx, &storage.Judgment{
			OptionID: opt.ID,
			VoteID:   voteID,
			Voter:    voter,
			Grade:    int(WorstGrade),
		}); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (e *JudgmentEngine) requireJudgmentVote(ctx context.Context, voteID string) error {
	vote, err := e.votes.Get(ctx, voteID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return ErrVoteNotFound
		}
		return err
	}
	if vote.VotingSystem != storage.SystemMajorityJudgment {
		return ErrMethodMismatch
	}
	return nil
}
