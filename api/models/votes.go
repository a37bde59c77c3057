package models

import (
	"time"

	"github.com/jeanbottein/zvote/storage"
	"github.com/jeanbottein/zvote/voting"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateVoteRequest struct {
	Title        string   `json:"title"`
	Options      []string `json:"options"`
	Visibility   string   `json:"visibility,omitempty"`
	VotingSystem string   `json:"votingSystem,omitempty"`
}

type VoteResponse struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Visibility   string           `json:"visibility"`
	VotingSystem string           `json:"votingSystem"`
	Token        string           `json:"token,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Options      []OptionResponse `json:"options"`
}

type OptionResponse struct {
	ID             string           `json:"id"`
	Label          string           `json:"label"`
	OrderIndex     int              `json:"orderIndex"`
	ApprovalsCount *int             `json:"approvalsCount,omitempty"`
	Summary        *SummaryResponse `json:"summary,omitempty"`
}

// SummaryResponse carries the majority judgment tally of one option. Counts
// are ordered worst grade first.
type SummaryResponse struct {
	Total    int          `json:"total"`
	Counts   []GradeCount `json:"counts"`
	Majority string       `json:"majority"`
	RunnerUp string       `json:"runnerUp,omitempty"`
}

type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

func TransformVoteToResponse(vote *storage.Vote, options []*storage.VoteOption, summaries map[string]*storage.MjSummary, includeToken bool) VoteResponse {
	r := VoteResponse{
		ID:           vote.ID,
		Title:        vote.Title,
		Visibility:   vote.Visibility,
		VotingSystem: vote.VotingSystem,
		CreatedAt:    vote.CreatedAt,
		Options:      make([]OptionResponse, 0, len(options)),
	}
	if includeToken {
		r.Token = vote.Token
	}
	for _, opt := range options {
		o := OptionResponse{
			ID:         opt.ID,
			Label:      opt.Label,
			OrderIndex: opt.OrderIndex,
		}
		switch vote.VotingSystem {
		case storage.SystemApproval:
			count := opt.ApprovalsCount
			o.ApprovalsCount = &count
		case storage.SystemMajorityJudgment:
			if s, ok := summaries[opt.ID]; ok {
				o.Summary = TransformSummaryToResponse(s)
			}
		}
		r.Options = append(r.Options, o)
	}
	return r
}

func TransformSummaryToResponse(s *storage.MjSummary) *SummaryResponse {
	r := &SummaryResponse{
		Total:    s.Total,
		Counts:   make([]GradeCount, 0, len(s.Counts)),
		Majority: voting.Grade(s.Majority).String(),
	}
	for g, count := range s.Counts {
		r.Counts = append(r.Counts, GradeCount{
			Grade: voting.Grade(g).String(),
			Count: count,
		})
	}
	if s.RunnerUp != nil {
		r.RunnerUp = voting.Grade(*s.RunnerUp).String()
	}
	return r
}
