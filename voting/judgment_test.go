package voting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanbottein/zvote/storage"
)

func newJudgmentEngine(f *fixture) *JudgmentEngine {
	return NewJudgmentEngine(f.votes, f.options, f.judgments, f.aggregator, f.locks)
}

func TestCastJudgment(t *testing.T) {
	t.Run("Happy path - first grade seeds every option at the worst grade", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "j1", storage.SystemMajorityJudgment, "a", "b", "c")

		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))

		ballot, err := e.Ballot(context.Background(), "j1", "voter1")
		require.NoError(t, err)
		assert.Equal(t, GradeGood, ballot[ids[0]])
		assert.Equal(t, WorstGrade, ballot[ids[1]])
		assert.Equal(t, WorstGrade, ballot[ids[2]])

		// All three options carry one ballot in their summaries.
		for _, id := range ids {
			assert.Equal(t, 1, f.summary(t, id).Total)
		}
	})

	t.Run("Happy path - later grades update in place without reseeding", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "j2", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))
		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeExcellent, "voter1"))

		ballot, err := e.Ballot(context.Background(), "j2", "voter1")
		require.NoError(t, err)
		assert.Equal(t, GradeExcellent, ballot[ids[0]])
		assert.Equal(t, 1, f.summary(t, ids[0]).Total)
	})

	t.Run("Happy path - recasting the same grade changes nothing", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "j3", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))
		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))
		assert.Equal(t, int(GradeGood), f.summary(t, ids[0]).Majority)
	})

	t.Run("Unhappy path - invalid grade", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "j4", storage.SystemMajorityJudgment, "a", "b")

		err := e.CastJudgment(context.Background(), ids[0], Grade(42), "voter1")
		assert.ErrorIs(t, err, ErrUnknownGrade)
	})

	t.Run("Unhappy path - unknown option", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		f.createVote(t, "j5", storage.SystemMajorityJudgment, "a", "b")

		err := e.CastJudgment(context.Background(), "missing", GradeGood, "voter1")
		assert.ErrorIs(t, err, ErrOptionNotFound)
	})

	t.Run("Unhappy path - approval vote rejects grades", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "j6", storage.SystemApproval, "a", "b")

		err := e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1")
		assert.ErrorIs(t, err, ErrMethodMismatch)
	})
}

func TestWithdrawJudgments(t *testing.T) {
	t.Run("Happy path - all grades removed and summaries recomputed", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "w1", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))
		require.NoError(t, e.WithdrawJudgments(context.Background(), "w1", "voter1"))

		ballot, err := e.Ballot(context.Background(), "w1", "voter1")
		require.NoError(t, err)
		assert.Empty(t, ballot)
		assert.Equal(t, 0, f.summary(t, ids[0]).Total)
	})

	t.Run("Happy path - casting after withdrawal reseeds the ballot", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "w2", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))
		require.NoError(t, e.WithdrawJudgments(context.Background(), "w2", "voter1"))
		require.NoError(t, e.CastJudgment(context.Background(), ids[1], GradeFair, "voter1"))

		ballot, err := e.Ballot(context.Background(), "w2", "voter1")
		require.NoError(t, err)
		assert.Equal(t, WorstGrade, ballot[ids[0]])
		assert.Equal(t, GradeFair, ballot[ids[1]])
	})

	t.Run("Happy path - withdrawing an empty ballot is a no-op", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		f.createVote(t, "w3", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.WithdrawJudgments(context.Background(), "w3", "voter1"))
	})

	t.Run("Happy path - other voters keep their grades", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "w4", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeGood, "voter1"))
		require.NoError(t, e.CastJudgment(context.Background(), ids[0], GradeFair, "voter2"))
		require.NoError(t, e.WithdrawJudgments(context.Background(), "w4", "voter1"))

		assert.Equal(t, 1, f.summary(t, ids[0]).Total)
		assert.Equal(t, int(GradeFair), f.summary(t, ids[0]).Majority)
	})
}

func TestSubmitCompleteBallot(t *testing.T) {
	t.Run("Happy path - one grade per option", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "b1", storage.SystemMajorityJudgment, "a", "b")

		err := e.SubmitCompleteBallot(context.Background(), "b1", []BallotEntry{
			{OptionID: ids[0], Grade: GradeExcellent},
			{OptionID: ids[1], Grade: GradeBad},
		}, "voter1")
		require.NoError(t, err)

		ballot, err := e.Ballot(context.Background(), "b1", "voter1")
		require.NoError(t, err)
		assert.Equal(t, GradeExcellent, ballot[ids[0]])
		assert.Equal(t, GradeBad, ballot[ids[1]])
	})

	t.Run("Happy path - resubmission replaces the previous ballot", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "b2", storage.SystemMajorityJudgment, "a", "b")

		require.NoError(t, e.SubmitCompleteBallot(context.Background(), "b2", []BallotEntry{
			{OptionID: ids[0], Grade: GradeGood},
			{OptionID: ids[1], Grade: GradeGood},
		}, "voter1"))
		require.NoError(t, e.SubmitCompleteBallot(context.Background(), "b2", []BallotEntry{
			{OptionID: ids[0], Grade: GradeBad},
			{OptionID: ids[1], Grade: GradeExcellent},
		}, "voter1"))

		assert.Equal(t, int(GradeBad), f.summary(t, ids[0]).Majority)
		assert.Equal(t, int(GradeExcellent), f.summary(t, ids[1]).Majority)
		assert.Equal(t, 1, f.summary(t, ids[0]).Total)
	})

	t.Run("Unhappy path - partial ballot rejected without side effects", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "b3", storage.SystemMajorityJudgment, "a", "b")

		err := e.SubmitCompleteBallot(context.Background(), "b3", []BallotEntry{
			{OptionID: ids[0], Grade: GradeGood},
		}, "voter1")
		require.ErrorIs(t, err, ErrIncompleteBallot)

		ballot, err := e.Ballot(context.Background(), "b3", "voter1")
		require.NoError(t, err)
		assert.Empty(t, ballot)
	})

	t.Run("Unhappy path - duplicate option rejected", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "b4", storage.SystemMajorityJudgment, "a", "b")

		err := e.SubmitCompleteBallot(context.Background(), "b4", []BallotEntry{
			{OptionID: ids[0], Grade: GradeGood},
			{OptionID: ids[0], Grade: GradeBad},
		}, "voter1")
		assert.ErrorIs(t, err, ErrDuplicateBallotEntry)
	})

	t.Run("Unhappy path - foreign option rejected before any mutation", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)
		ids := f.createVote(t, "b5", storage.SystemMajorityJudgment, "a", "b")
		otherIDs := f.createVote(t, "b6", storage.SystemMajorityJudgment, "a", "b")

		err := e.SubmitCompleteBallot(context.Background(), "b5", []BallotEntry{
			{OptionID: ids[0], Grade: GradeGood},
			{OptionID: otherIDs[0], Grade: GradeBad},
		}, "voter1")
		require.ErrorIs(t, err, ErrOptionNotInVote)

		ballot, err := e.Ballot(context.Background(), "b5", "voter1")
		require.NoError(t, err)
		assert.Empty(t, ballot)
	})

	t.Run("Unhappy path - unknown vote", func(t *testing.T) {
		f := newFixture(t)
		e := newJudgmentEngine(f)

		err := e.SubmitCompleteBallot(context.Background(), "missing", nil, "voter1")
		assert.ErrorIs(t, err, ErrVoteNotFound)
	})
}
