package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeanbottein/zvote/api/models"
	"github.com/jeanbottein/zvote/api/transport"
	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/voting"
)

type ApprovalController struct {
	engine *voting.ApprovalEngine
}

func NewApprovalController(engine *voting.ApprovalEngine) *ApprovalController {
	return &ApprovalController{engine: engine}
}

func (c *ApprovalController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/votes/:id/approvals")
	group.Use(transport.VoterAuthMiddleware())

	group.GET("", c.getBallot)
	group.PUT("", c.setBallot)
	group.POST("/:optionId", c.approve)
	group.DELETE("/:optionId", c.unapprove)
}

// approve godoc
// @Summary Approve an option
// @Description Adds the calling voter's approval of one option
// @Tags approvals
// @Produce json
// @Param id path string true "Vote ID"
// @Param optionId path string true "Option ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Option does not belong to the vote"
// @Failure 404 {object} models.ErrorResponse "Vote or option not found"
// @Failure 409 {object} models.ErrorResponse "Vote does not use approval voting"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/approvals/{optionId} [post]
func (c *ApprovalController) approve(g *gin.Context) {
	voteID, optionID := g.Param("id"), g.Param("optionId")
	if err := c.engine.Approve(g.Request.Context(), voteID, optionID, transport.VoterID(g)); err != nil {
		respondVotingError(g, err)
		return
	}
	logging.Log.Infof("APPROVAL: approved option %s in vote %s", optionID, voteID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "approval recorded"})
}

// unapprove godoc
// @Summary Withdraw an approval
// @Description Removes the calling voter's approval of one option
// @Tags approvals
// @Produce json
// @Param id path string true "Vote ID"
// @Param optionId path string true "Option ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Option does not belong to the vote"
// @Failure 404 {object} models.ErrorResponse "Vote or option not found"
// @Failure 409 {object} models.ErrorResponse "Vote does not use approval voting"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/approvals/{optionId} [delete]
func (c *ApprovalController) unapprove(g *gin.Context) {
	voteID, optionID := g.Param("id"), g.Param("optionId")
	if err := c.engine.Unapprove(g.Request.Context(), voteID, optionID, transport.VoterID(g)); err != nil {
		respondVotingError(g, err)
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "approval withdrawn"})
}

// setBallot godoc
// @Summary Replace the approval ballot
// @Description Replaces the calling voter's full approval set for a vote
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Vote ID"
// @Param ballot body models.ApprovalBallotRequest true "Approved option IDs"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.ApprovalBallotResponse
// @Failure 400 {object} models.ErrorResponse "Invalid ballot"
// @Failure 404 {object} models.ErrorResponse "Vote or option not found"
// @Failure 409 {object} models.ErrorResponse "Vote does not use approval voting"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/approvals [put]
func (c *ApprovalController) setBallot(g *gin.Context) {
	var req models.ApprovalBallotRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	voteID := g.Param("id")
	voter := transport.VoterID(g)
	if err := c.engine.SetBallot(g.Request.Context(), voteID, req.OptionIDs, voter); err != nil {
		respondVotingError(g, err)
		return
	}

	ids, err := c.engine.Approvals(g.Request.Context(), voteID, voter)
	if err != nil {
		respondVotingError(g, err)
		return
	}
	g.JSON(http.StatusOK, &models.ApprovalBallotResponse{OptionIDs: ids})
}

// getBallot godoc
// @Summary Get my approval ballot
// @Description Returns the option IDs the calling voter currently approves of
// @Tags approvals
// @Produce json
// @Param id path string true "Vote ID"
// @Param x-voter-token header string true "Voter token"
// @Success 200 {object} models.ApprovalBallotResponse
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/votes/{id}/approvals [get]
func (c *ApprovalController) getBallot(g *gin.Context) {
	ids, err := c.engine.Approvals(g.Request.Context(), g.Param("id"), transport.VoterID(g))
	if err != nil {
		respondVotingError(g, err)
		return
	}
	g.JSON(http.StatusOK, &models.ApprovalBallotResponse{OptionIDs: ids})
}
