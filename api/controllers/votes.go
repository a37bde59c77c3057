package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jeanbottein/zvote/api/models"
	"github.com/jeanbottein/zvote/api/transport"
	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/storage"
)

// tokenAlphabet excludes ambiguous characters so share links survive being
// read out loud.
const (
	tokenAlphabet = "23456789abcdefghijkmnpqrstuvwxyz"
	tokenLength   = 12
)

type Features struct {
	MaxOptions       int
	PublicVotes      bool
	UnlistedVotes    bool
	PrivateVotes     bool
	ApprovalVoting   bool
	MajorityJudgment bool
	LiveBallot       bool
	EnvelopeBallot   bool
}

type VotesController struct {
	votes      storage.VoteStorage
	options    storage.VoteOptionStorage
	judgments  storage.JudgmentStorage
	approvals  storage.ApprovalStorage
	summaries  storage.SummaryStorage
	features   Features
}

func NewVotesController(votes storage.VoteStorage, options storage.VoteOptionStorage, judgments storage.JudgmentStorage, approvals storage.ApprovalStorage, summaries storage.SummaryStorage, features Features) *VotesController {
	return &VotesController{
		votes:     votes,
		options:   options,
		judgments: judgments,
		approvals: approvals,
		summaries: summaries,
		features:  features,
	}
}

func (c *VotesController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/votes")
	group.Use(transport.VoterAuthMiddleware())

	group.POST("", c.createVote)
	group.GET("", c.listMyVotes)
	group.GET("/:id", c.getVote)
	group.DELETE("/:id", c.deleteVote)

	// Share token lookups live outside the votes group so the static
	// segment does not clash with the :id wildcard.
	shared := engine.Group("/api/shared")
	shared.Use(transport.VoterAuthMiddleware())
	shared.GET("/:token", c.getVoteByToken)
}

// createVote godoc
// @Summary Create a vote
// @Description Creates a vote with its options and returns it with a share token
// @Tags votes
// @Accept json
// @Produce json
// @Param vote body models.CreateVoteRequest true "Vote definition"
// @Param x-voter-token header string true "Voter token"
// @Success 201 {object} models.VoteResponse
// @Failure 400 {object} models.ErrorResponse "Invalid vote definition"
// @Failure 403 {object} models.ErrorResponse "Feature disabled on this server"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes [post]
func (c *VotesController) createVote(g *gin.Context) {
	var req models.CreateVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.Title == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "title is required"})
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = storage.VisibilityPublic
	}
	if !c.visibilityAllowed(visibility) {
		g.JSON(http.StatusForbidden, &models.ErrorResponse{Error: "visibility not available: " + visibility})
		return
	}

	system := req.VotingSystem
	if system == "" {
		system = storage.SystemMajorityJudgment
	}
	if !c.systemAllowed(system) {
		g.JSON(http.StatusForbidden, &models.ErrorResponse{Error: "voting system not available: " + system})
		return
	}

	labels, err := models.NormalizeOptionLabels(req.Options, c.features.MaxOptions)
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
		return
	}

	token, err := gonanoid.Generate(tokenAlphabet, tokenLength)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to generate share token: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create vote"})
		return
	}

	vote := &storage.Vote{
		ID:           uuid.NewString(),
		Creator:      transport.VoterID(g),
		Title:        req.Title,
		Visibility:   visibility,
		VotingSystem: system,
		CreatedAt:    time.Now().UTC(),
		Token:        token,
	}
	if err := c.votes.Create(g.Request.Context(), vote); err != nil {
		logging.Log.Errorf("VOTE: failed to create vote: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create vote"})
		return
	}

	opts := make([]*storage.VoteOption, 0, len(labels))
	for i, label := range labels {
		opt := &storage.VoteOption{
			ID:         uuid.NewString(),
			VoteID:     vote.ID,
			Label:      label,
			OrderIndex: i,
		}
		if err := c.options.Create(g.Request.Context(), opt); err != nil {
			logging.Log.Errorf("VOTE: failed to create option for vote %s: %v", vote.ID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create vote options"})
			return
		}
		opts = append(opts, opt)
	}

	logging.Log.Infof("VOTE: created %s vote %s with %d options", system, vote.ID, len(opts))
	g.JSON(http.StatusCreated, models.TransformVoteToResponse(vote, opts, nil, true))
}

// getVote godoc
// @Summary Get a vote
// @Description Returns a vote with its options and current results
// @Tags votes
// @Produce json
// @Param id path string true "Vote ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.VoteResponse
// @Failure 404 {object} models.ErrorResponse "Vote not found"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id} [get]
func (c *VotesController) getVote(g *gin.Context) {
	vote, err := c.votes.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "vote not found"})
			return
		}
		logging.Log.Errorf("VOTE: failed to get vote: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read vote"})
		return
	}

	// Private votes are only reachable by their creator or via share token.
	if vote.Visibility == storage.VisibilityPrivate && vote.Creator != transport.VoterID(g) {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "vote not found"})
		return
	}

	c.renderVote(g, vote, vote.Creator == transport.VoterID(g))
}

// getVoteByToken godoc
// @Summary Get a vote by share token
// @Description Resolves a share token to its vote regardless of visibility
// @Tags votes
// @Produce json
// @Param token path string true "Share token"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.VoteResponse
// @Failure 404 {object} models.ErrorResponse "Token not found"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/shared/{token} [get]
func (c *VotesController) getVoteByToken(g *gin.Context) {
	vote, err := c.votes.GetByToken(g.Request.Context(), g.Param("token"))
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "vote not found"})
			return
		}
		logging.Log.Errorf("VOTE: failed to resolve token: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read vote"})
		return
	}

	c.renderVote(g, vote, vote.Creator == transport.VoterID(g))
}

// listMyVotes godoc
// @Summary List my votes
// @Description Returns all votes created by the calling voter
// @Tags votes
// @Produce json
// @Param x-voter-token header string true "Voter token"
// @Success 200 {array} models.VoteResponse
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes [get]
func (c *VotesController) listMyVotes(g *gin.Context) {
	votes, err := c.votes.GetByCreator(g.Request.Context(), transport.VoterID(g))
	if err != nil {
		logging.Log.Errorf("VOTE: failed to list votes: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list votes"})
		return
	}

	out := make([]models.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		opts, err := c.options.GetByVote(g.Request.Context(), vote.ID)
		if err != nil {
			logging.Log.Errorf("VOTE: failed to read options for vote %s: %v", vote.ID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list votes"})
			return
		}
		summaries, err := c.summariesByOption(g, vote)
		if err != nil {
			return
		}
		out = append(out, models.TransformVoteToResponse(vote, opts, summaries, true))
	}
	g.JSON(http.StatusOK, out)
}

// deleteVote godoc
// @Summary Delete a vote
// @Description Deletes a vote with all its options, ballots and summaries
// @Tags votes
// @Produce json
// @Param id path string true "Vote ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse "Not the vote creator"
// @Failure 404 {object} models.ErrorResponse "Vote not found"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id} [delete]
func (c *VotesController) deleteVote(g *gin.Context) {
	vote, err := c.votes.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "vote not found"})
			return
		}
		logging.Log.Errorf("VOTE: failed to get vote: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
		return
	}
	if vote.Creator != transport.VoterID(g) {
		g.JSON(http.StatusForbidden, &models.ErrorResponse{Error: "only the creator can delete a vote"})
		return
	}

	ctx := g.Request.Context()
	if err := c.summaries.DeleteByVote(ctx, vote.ID); err != nil {
		logging.Log.Errorf("VOTE: failed to delete summaries for vote %s: %v", vote.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
		return
	}
	if err := c.approvals.DeleteByVote(ctx, vote.ID); err != nil {
		logging.Log.Errorf("VOTE: failed to delete approvals for vote %s: %v", vote.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
		return
	}
	opts, err := c.options.GetByVote(ctx, vote.ID)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to read options for vote %s: %v", vote.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
		return
	}
	for _, opt := range opts {
		if err := c.judgments.DeleteByOption(ctx, opt.ID); err != nil {
			logging.Log.Errorf("VOTE: failed to delete judgments for option %s: %v", opt.ID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
			return
		}
		if err := c.options.Delete(ctx, opt.ID); err != nil {
			logging.Log.Errorf("VOTE: failed to delete option %s: %v", opt.ID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
			return
		}
	}
	if err := c.votes.Delete(ctx, vote.ID); err != nil {
		logging.Log.Errorf("VOTE: failed to delete vote %s: %v", vote.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete vote"})
		return
	}

	logging.Log.Infof("VOTE: deleted vote %s", vote.ID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "vote deleted"})
}

func (c *VotesController) renderVote(g *gin.Context, vote *storage.Vote, includeToken bool) {
	opts, err := c.options.GetByVote(g.Request.Context(), vote.ID)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to read options for vote %s: %v", vote.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read vote"})
		return
	}
	summaries, err := c.summariesByOption(g, vote)
	if err != nil {
		return
	}
	g.JSON(http.StatusOK, models.TransformVoteToResponse(vote, opts, summaries, includeToken))
}

// summariesByOption writes the error response itself; callers just stop on
// a non-nil error.
func (c *VotesController) summariesByOption(g *gin.Context, vote *storage.Vote) (map[string]*storage.MjSummary, error) {
	if vote.VotingSystem != storage.SystemMajorityJudgment {
		return nil, nil
	}
	rows, err := c.summaries.GetByVote(g.Request.Context(), vote.ID)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to read summaries for vote %s: %v", vote.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read vote results"})
		return nil, err
	}
	byOption := make(map[string]*storage.MjSummary, len(rows))
	for _, s := range rows {
		byOption[s.OptionID] = s
	}
	return byOption, nil
}

func (c *VotesController) visibilityAllowed(visibility string) bool {
	switch visibility {
	case storage.VisibilityPublic:
		return c.features.PublicVotes
	case storage.VisibilityUnlisted:
		return c.features.UnlistedVotes
	case storage.VisibilityPrivate:
		return c.features.PrivateVotes
	default:
		return false
	}
}

func (c *VotesController) systemAllowed(system string) bool {
	switch system {
	case storage.SystemApproval:
		return c.features.ApprovalVoting
	case storage.SystemMajorityJudgment:
		return c.features.MajorityJudgment
	default:
		return false
	}
}
