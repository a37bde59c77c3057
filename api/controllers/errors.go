package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeanbottein/zvote/api/models"
	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/voting"
)

// respondVotingError maps engine errors onto HTTP statuses. Anything not
// recognized is a storage or infrastructure failure and becomes a 500.
func respondVotingError(g *gin.Context, err error) {
	switch {
	case errors.Is(err, voting.ErrVoteNotFound), errors.Is(err, voting.ErrOptionNotFound):
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, voting.ErrMethodMismatch):
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, voting.ErrOptionNotInVote),
		errors.Is(err, voting.ErrIncompleteBallot),
		errors.Is(err, voting.ErrDuplicateBallotEntry),
		errors.Is(err, voting.ErrTooManyApprovals),
		errors.Is(err, voting.ErrUnknownGrade):
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
	default:
		logging.Log.Errorf("BALLOT: unexpected error: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "unexpected internal error"})
	}
}
