package voting

import (
	"context"

	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/storage"
)

// MajorityAggregator recomputes the per-option majority judgment summaries
// of a vote from the full ballot set. It is the single canonical place where
// median and tie-break results are computed, so every reader observes the
// same outcome.
type MajorityAggregator struct {
	options   storage.VoteOptionStorage
	judgments storage.JudgmentStorage
	summaries storage.SummaryStorage
}

func NewMajorityAggregator(options storage.VoteOptionStorage, judgments storage.JudgmentStorage, summaries storage.SummaryStorage) *MajorityAggregator {
	return &MajorityAggregator{
		options:   options,
		judgments: judgments,
		summaries: summaries,
	}
}

type optionTally struct {
	option   *storage.VoteOption
	counts   [GradeCount]int
	total    int
	majority Grade
}

// RecomputeForVote rebuilds every option summary of the vote and upserts
// them keyed by option id.
func (a *MajorityAggregator) RecomputeForVote(ctx context.Context, voteID string) error {
	options, err := a.options.GetByVote(ctx, voteID)
	if err != nil {
		return err
	}

	tallies := make([]optionTally, 0, len(options))
	for _, opt := range options {
		ballots, err := a.judgments.GetByOption(ctx, opt.ID)
		if err != nil {
			return err
		}

		tally := optionTally{option: opt}
		for _, ballot := range ballots {
			grade := Grade(ballot.Grade)
			if !grade.Valid() {
				logging.Log.Warnf("MJ: skipping ballot with invalid grade %d on option %s", ballot.Grade, opt.ID)
				continue
			}
			tally.counts[grade] = satAdd(tally.counts[grade], 1)
			tally.total = satAdd(tally.total, 1)
		}
		tally.majority = majorityFromCounts(tally.counts, tally.total)
		tallies = append(tallies, tally)
	}

	// Runner-up grades only exist for options tied for the vote-wide best
	// majority grade.
	best := WorstGrade
	tiedForBest := 0
	for _, tally := range tallies {
		if tally.majority > best {
			best = tally.majority
			tiedForBest = 1
		} else if tally.majority == best {
			tiedForBest++
		}
	}

	for _, tally := range tallies {
		// The counts array must be copied out of the loop variable or every
		// summary ends up sharing one backing array.
		summary := &storage.MjSummary{
			OptionID: tally.option.ID,
			VoteID:   voteID,
			Total:    tally.total,
			Counts:   append([]int(nil), tally.counts[:]...),
			Majority: int(tally.majority),
		}
		if tiedForBest >= 2 && tally.majority == best {
			if runnerUp, ok := runnerUpFromCounts(tally.counts, tally.total, tally.majority); ok {
				value := int(runnerUp)
				summary.RunnerUp = &value
			}
		}
		if err := a.summaries.Put(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

// majorityFromCounts finds the lower median of a worst-first grade
// distribution: the smallest grade whose cumulative count reaches position
// (total+1)/2. An empty distribution defaults to the worst grade.
func majorityFromCounts(counts [GradeCount]int, total int) Grade {
	if total == 0 {
		return WorstGrade
	}

	target := (total + 1) / 2
	cum := 0
	for g := GradeBad; g <= GradeExcellent; g++ {
		cum = satAdd(cum, counts[g])
		if cum >= target {
			return g
		}
	}
	// Unreachable while counts sum to total.
	return GradeExcellent
}

// runnerUpFromCounts removes one ballot from the majority bucket and
// recomputes the median over the reduced distribution. The second result is
// false when no runner-up is defined (total <= 1 or empty bucket).
func runnerUpFromCounts(counts [GradeCount]int, total int, majority Grade) (Grade, bool) {
	if total <= 1 || counts[majority] == 0 {
		return WorstGrade, false
	}
	reduced := counts
	reduced[majority]--
	return majorityFromCounts(reduced, total-1), true
}
