package voting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanbottein/zvote/storage"
)

func newApprovalEngine(f *fixture) *ApprovalEngine {
	return NewApprovalEngine(f.votes, f.options, f.approvals, f.locks, 20)
}

func (f *fixture) approvalsCount(t *testing.T, optionID string) int {
	t.Helper()
	opt, err := f.options.Get(context.Background(), optionID)
	require.NoError(t, err)
	return opt.ApprovalsCount
}

func TestApprove(t *testing.T) {
	t.Run("Happy path - approval increments the counter", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "a1", storage.SystemApproval, "x", "y")

		require.NoError(t, e.Approve(context.Background(), "a1", ids[0], "voter1"))
		assert.Equal(t, 1, f.approvalsCount(t, ids[0]))
		assert.Equal(t, 0, f.approvalsCount(t, ids[1]))
	})

	t.Run("Happy path - approving twice is a no-op", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "a2", storage.SystemApproval, "x", "y")

		require.NoError(t, e.Approve(context.Background(), "a2", ids[0], "voter1"))
		require.NoError(t, e.Approve(context.Background(), "a2", ids[0], "voter1"))
		assert.Equal(t, 1, f.approvalsCount(t, ids[0]))
	})

	t.Run("Unhappy path - unknown option", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		f.createVote(t, "a3", storage.SystemApproval, "x", "y")

		err := e.Approve(context.Background(), "a3", "missing", "voter1")
		assert.ErrorIs(t, err, ErrOptionNotFound)
	})

	t.Run("Unhappy path - option of a different vote", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		f.createVote(t, "a4", storage.SystemApproval, "x", "y")
		otherIDs := f.createVote(t, "a5", storage.SystemApproval, "x", "y")

		err := e.Approve(context.Background(), "a4", otherIDs[0], "voter1")
		assert.ErrorIs(t, err, ErrOptionNotInVote)
	})

	t.Run("Unhappy path - majority judgment vote rejects approvals", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "a6", storage.SystemMajorityJudgment, "x", "y")

		err := e.Approve(context.Background(), "a6", ids[0], "voter1")
		assert.ErrorIs(t, err, ErrMethodMismatch)
		assert.Equal(t, 0, f.approvalsCount(t, ids[0]))
	})
}

func TestUnapprove(t *testing.T) {
	t.Run("Happy path - withdrawal decrements the counter", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "u1", storage.SystemApproval, "x", "y")

		require.NoError(t, e.Approve(context.Background(), "u1", ids[0], "voter1"))
		require.NoError(t, e.Unapprove(context.Background(), "u1", ids[0], "voter1"))
		assert.Equal(t, 0, f.approvalsCount(t, ids[0]))
	})

	t.Run("Happy path - withdrawing a missing approval leaves zero alone", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "u2", storage.SystemApproval, "x", "y")

		require.NoError(t, e.Unapprove(context.Background(), "u2", ids[0], "voter1"))
		assert.Equal(t, 0, f.approvalsCount(t, ids[0]))
	})
}

func TestSetBallot(t *testing.T) {
	t.Run("Happy path - diff applies removals and additions", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "s1", storage.SystemApproval, "a", "b", "c")

		require.NoError(t, e.SetBallot(context.Background(), "s1", []string{ids[0], ids[1]}, "voter1"))
		require.NoError(t, e.SetBallot(context.Background(), "s1", []string{ids[1], ids[2]}, "voter1"))

		assert.Equal(t, 0, f.approvalsCount(t, ids[0]))
		assert.Equal(t, 1, f.approvalsCount(t, ids[1]))
		assert.Equal(t, 1, f.approvalsCount(t, ids[2]))

		current, err := e.Approvals(context.Background(), "s1", "voter1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{ids[1], ids[2]}, current)
	})

	t.Run("Happy path - empty ballot clears everything", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "s2", storage.SystemApproval, "a", "b")

		require.NoError(t, e.SetBallot(context.Background(), "s2", ids, "voter1"))
		require.NoError(t, e.SetBallot(context.Background(), "s2", nil, "voter1"))

		assert.Equal(t, 0, f.approvalsCount(t, ids[0]))
		assert.Equal(t, 0, f.approvalsCount(t, ids[1]))
	})

	t.Run("Happy path - unchanged entries are untouched by other voters", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "s3", storage.SystemApproval, "a", "b")

		require.NoError(t, e.Approve(context.Background(), "s3", ids[0], "other"))
		require.NoError(t, e.SetBallot(context.Background(), "s3", []string{ids[0]}, "voter1"))
		assert.Equal(t, 2, f.approvalsCount(t, ids[0]))
	})

	t.Run("Unhappy path - foreign option rejects the whole ballot", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)
		ids := f.createVote(t, "s4", storage.SystemApproval, "a", "b")
		otherIDs := f.createVote(t, "s5", storage.SystemApproval, "a", "b")

		err := e.SetBallot(context.Background(), "s4", []string{ids[0], otherIDs[0]}, "voter1")
		require.ErrorIs(t, err, ErrOptionNotInVote)

		// Nothing was applied.
		assert.Equal(t, 0, f.approvalsCount(t, ids[0]))
	})

	t.Run("Unhappy path - ballot above the option ceiling", func(t *testing.T) {
		f := newFixture(t)
		ids := f.createVote(t, "s6", storage.SystemApproval, "a", "b", "c")
		e := NewApprovalEngine(f.votes, f.options, f.approvals, f.locks, 2)

		err := e.SetBallot(context.Background(), "s6", ids, "voter1")
		assert.ErrorIs(t, err, ErrTooManyApprovals)
	})

	t.Run("Unhappy path - unknown vote", func(t *testing.T) {
		f := newFixture(t)
		e := newApprovalEngine(f)

		err := e.SetBallot(context.Background(), "missing", nil, "voter1")
		assert.ErrorIs(t, err, ErrVoteNotFound)
	})
}

func TestDiffApprovals(t *testing.T) {
	current := map[string]struct{}{"1": {}, "2": {}}
	desired := map[string]struct{}{"2": {}, "3": {}}

	toAdd, toRemove := diffApprovals(current, desired)
	assert.ElementsMatch(t, []string{"3"}, toAdd)
	assert.ElementsMatch(t, []string{"1"}, toRemove)
}
