package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/jeanbottein/zvote/api/controllers/testing"
	"github.com/jeanbottein/zvote/api/models"
	"github.com/jeanbottein/zvote/storage"
)

func TestApprovalEndpoints(t *testing.T) {
	t.Run("Happy path - approve then withdraw", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemApproval, "a", "b")
		optionID := vote.Options[0].ID

		res := testutils.PerformRequest(r, http.MethodPost, "/api/votes/"+vote.ID+"/approvals/"+optionID, nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		res = testutils.PerformRequest(r, http.MethodGet, "/api/votes/"+vote.ID, nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)
		var got models.VoteResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
		require.NotNil(t, got.Options[0].ApprovalsCount)
		assert.Equal(t, 1, *got.Options[0].ApprovalsCount)

		res = testutils.PerformRequest(r, http.MethodDelete, "/api/votes/"+vote.ID+"/approvals/"+optionID, nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(r, http.MethodGet, "/api/votes/"+vote.ID, nil, voterHeaders("voter1"))
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
		assert.Equal(t, 0, *got.Options[0].ApprovalsCount)
	})

	t.Run("Happy path - ballot replacement reports the new set", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemApproval, "a", "b", "c")

		res := testutils.PerformRequest(r, http.MethodPut, "/api/votes/"+vote.ID+"/approvals", models.ApprovalBallotRequest{
			OptionIDs: []string{vote.Options[0].ID, vote.Options[1].ID},
		}, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		res = testutils.PerformRequest(r, http.MethodPut, "/api/votes/"+vote.ID+"/approvals", models.ApprovalBallotRequest{
			OptionIDs: []string{vote.Options[2].ID},
		}, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)

		var ballot models.ApprovalBallotResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &ballot))
		assert.ElementsMatch(t, []string{vote.Options[2].ID}, ballot.OptionIDs)
	})

	t.Run("Unhappy path - approving on a majority judgment vote conflicts", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemMajorityJudgment, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPost, "/api/votes/"+vote.ID+"/approvals/"+vote.Options[0].ID, nil, voterHeaders("voter1"))
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("Unhappy path - unknown option", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemApproval, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPost, "/api/votes/"+vote.ID+"/approvals/missing", nil, voterHeaders("voter1"))
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestJudgmentEndpoints(t *testing.T) {
	t.Run("Happy path - single cast seeds the full ballot", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemMajorityJudgment, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPost, "/api/judgments", models.JudgmentCastRequest{
			OptionID: vote.Options[0].ID,
			Grade:    "very_good",
		}, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		res = testutils.PerformRequest(r, http.MethodGet, "/api/votes/"+vote.ID+"/judgments", nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)
		var ballot models.JudgmentBallotResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &ballot))
		require.Len(t, ballot.Entries, 2)

		grades := map[string]string{}
		for _, e := range ballot.Entries {
			grades[e.OptionID] = e.Grade
		}
		assert.Equal(t, "very_good", grades[vote.Options[0].ID])
		assert.Equal(t, "bad", grades[vote.Options[1].ID])
	})

	t.Run("Happy path - vote results carry majority summaries", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemMajorityJudgment, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPut, "/api/votes/"+vote.ID+"/judgments", models.JudgmentBallotRequest{
			Entries: []models.JudgmentBallotEntry{
				{OptionID: vote.Options[0].ID, Grade: "excellent"},
				{OptionID: vote.Options[1].ID, Grade: "fair"},
			},
		}, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		res = testutils.PerformRequest(r, http.MethodGet, "/api/votes/"+vote.ID, nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)
		var got models.VoteResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))

		require.NotNil(t, got.Options[0].Summary)
		assert.Equal(t, "excellent", got.Options[0].Summary.Majority)
		assert.Equal(t, 1, got.Options[0].Summary.Total)
		require.Len(t, got.Options[0].Summary.Counts, 7)
		assert.Equal(t, "bad", got.Options[0].Summary.Counts[0].Grade)
	})

	t.Run("Happy path - withdraw clears the ballot", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemMajorityJudgment, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPost, "/api/judgments", models.JudgmentCastRequest{
			OptionID: vote.Options[0].ID,
			Grade:    "good",
		}, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(r, http.MethodDelete, "/api/votes/"+vote.ID+"/judgments", nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(r, http.MethodGet, "/api/votes/"+vote.ID+"/judgments", nil, voterHeaders("voter1"))
		require.Equal(t, http.StatusOK, res.Code)
		var ballot models.JudgmentBallotResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &ballot))
		assert.Empty(t, ballot.Entries)
	})

	t.Run("Unhappy path - unknown grade name", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemMajorityJudgment, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPost, "/api/judgments", models.JudgmentCastRequest{
			OptionID: vote.Options[0].ID,
			Grade:    "amazing",
		}, voterHeaders("voter1"))
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - incomplete envelope ballot", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemMajorityJudgment, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPut, "/api/votes/"+vote.ID+"/judgments", models.JudgmentBallotRequest{
			Entries: []models.JudgmentBallotEntry{
				{OptionID: vote.Options[0].ID, Grade: "good"},
			},
		}, voterHeaders("voter1"))
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - grading an approval vote conflicts", func(t *testing.T) {
		r := setupTestRouter(t, testFeatures())
		vote := createTestVote(t, r, "creator", storage.SystemApproval, "a", "b")

		res := testutils.PerformRequest(r, http.MethodPost, "/api/judgments", models.JudgmentCastRequest{
			OptionID: vote.Options[0].ID,
			Grade:    "good",
		}, voterHeaders("voter1"))
		assert.Equal(t, http.StatusConflict, res.Code)
	})
}
