package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeanbottein/zvote/api/models"
	"github.com/jeanbottein/zvote/api/transport"
	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/voting"
)

type JudgmentController struct {
	engine *voting.JudgmentEngine
}

func NewJudgmentController(engine *voting.JudgmentEngine) *JudgmentController {
	return &JudgmentController{engine: engine}
}

func (c *JudgmentController) RegisterRoutes(engine *gin.Engine) {
	cast := engine.Group("/api/judgments")
	cast.Use(transport.VoterAuthMiddleware())
	cast.POST("", c.castJudgment)

	ballot := engine.Group("/api/votes/:id/judgments")
	ballot.Use(transport.VoterAuthMiddleware())
	ballot.GET("", c.getBallot)
	ballot.PUT("", c.submitBallot)
	ballot.DELETE("", c.withdraw)
}

// castJudgment godoc
// @Summary Cast a single grade
// @Description Grades one option; a voter's first grade in a vote seeds all other options at the worst grade
// @Tags judgments
// @Accept json
// @Produce json
// @Param judgment body models.JudgmentCastRequest true "Option and grade"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Unknown grade"
// @Failure 404 {object} models.ErrorResponse "Option not found"
// @Failure 409 {object} models.ErrorResponse "Vote does not use majority judgment"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/judgments [post]
func (c *JudgmentController) castJudgment(g *gin.Context) {
	var req models.JudgmentCastRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	grade, err := voting.ParseGrade(req.Grade)
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := c.engine.CastJudgment(g.Request.Context(), req.OptionID, grade, transport.VoterID(g)); err != nil {
		respondVotingError(g, err)
		return
	}
	logging.Log.Infof("MJ: graded option %s as %s", req.OptionID, grade)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "judgment recorded"})
}

// submitBallot godoc
// @Summary Submit a complete ballot
// @Description Replaces the calling voter's ballot with one grade per option; partial ballots are rejected whole
// @Tags judgments
// @Accept json
// @Produce json
// @Param id path string true "Vote ID"
// @Param ballot body models.JudgmentBallotRequest true "One grade per option"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Incomplete or invalid ballot"
// @Failure 404 {object} models.ErrorResponse "Vote not found"
// @Failure 409 {object} models.ErrorResponse "Vote does not use majority judgment"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/judgments [put]
func (c *JudgmentController) submitBallot(g *gin.Context) {
	var req models.JudgmentBallotRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	entries := make([]voting.BallotEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		grade, err := voting.ParseGrade(e.Grade)
		if err != nil {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
			return
		}
		entries = append(entries, voting.BallotEntry{OptionID: e.OptionID, Grade: grade})
	}

	voteID := g.Param("id")
	if err := c.engine.SubmitCompleteBallot(g.Request.Context(), voteID, entries, transport.VoterID(g)); err != nil {
		respondVotingError(g, err)
		return
	}
	logging.Log.Infof("MJ: ballot submitted for vote %s", voteID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "ballot recorded"})
}

// withdraw godoc
// @Summary Withdraw my ballot
// @Description Removes all of the calling voter's grades from a vote
// @Tags judgments
// @Produce json
// @Param id path string true "Vote ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse "Vote not found"
// @Failure 409 {object} models.ErrorResponse "Vote does not use majority judgment"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/judgments [delete]
func (c *JudgmentController) withdraw(g *gin.Context) {
	voteID := g.Param("id")
	if err := c.engine.WithdrawJudgments(g.Request.Context(), voteID, transport.VoterID(g)); err != nil {
		respondVotingError(g, err)
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "ballot withdrawn"})
}

// getBallot godoc
// @Summary Get my ballot
// @Description Returns the calling voter's current grades in a vote
// @Tags judgments
// @Produce json
// @Param id path string true "Vote ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.JudgmentBallotResponse
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/judgments [get]
func (c *JudgmentController) getBallot(g *gin.Context) {
	ballot, err := c.engine.Ballot(g.Request.Context(), g.Param("id"), transport.VoterID(g))
	if err != nil {
		respondVotingError(g, err)
		return
	}

	resp := models.JudgmentBallotResponse{Entries: make([]models.JudgmentBallotEntry, 0, len(ballot))}
	for optionID, grade := range ballot {
		resp.Entries = append(resp.Entries, models.JudgmentBallotEntry{OptionID: optionID, Grade: grade.String()})
	}
	g.JSON(http.StatusOK, resp)
}
