package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeanbottein/zvote/voting"
)

// MetaController exposes what this deployment supports so clients can adapt
// their UI instead of hardcoding capabilities.
type MetaController struct {
	features Features
}

func NewMetaController(features Features) *MetaController {
	return &MetaController{features: features}
}

func (c *MetaController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/meta")

	group.GET("/info", c.getInfo)
}

type serverInfo struct {
	MaxOptions    int      `json:"maxOptions"`
	Grades        []string `json:"grades"`
	Visibilities  []string `json:"visibilities"`
	VotingSystems []string `json:"votingSystems"`
	BallotModes   []string `json:"ballotModes"`
}

// getInfo godoc
// @Summary Server capabilities
// @Description Returns the feature set of this deployment, including the grade scale ordered worst first
// @Tags meta
// @Produce json
// @Success 200 {object} controllers.serverInfo
// @Router /api/meta/info [get]
func (c *MetaController) getInfo(g *gin.Context) {
	info := serverInfo{
		MaxOptions: c.features.MaxOptions,
		Grades:     voting.GradeNames(),
	}
	if c.features.PublicVotes {
		info.Visibilities = append(info.Visibilities, "public")
	}
	if c.features.UnlistedVotes {
		info.Visibilities = append(info.Visibilities, "unlisted")
	}
	if c.features.PrivateVotes {
		info.Visibilities = append(info.Visibilities, "private")
	}
	if c.features.ApprovalVoting {
		info.VotingSystems = append(info.VotingSystems, "approval")
	}
	if c.features.MajorityJudgment {
		info.VotingSystems = append(info.VotingSystems, "majority_judgment")
	}
	if c.features.LiveBallot {
		info.BallotModes = append(info.BallotModes, "live")
	}
	if c.features.EnvelopeBallot {
		info.BallotModes = append(info.BallotModes, "envelope")
	}
	g.JSON(http.StatusOK, info)
}
