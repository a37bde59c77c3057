package storage

import "time"

// Voting systems a vote can be configured with.
const (
	SystemApproval         = "approval"
	SystemMajorityJudgment = "majority_judgment"
)

// Visibility levels for votes.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
)

type Vote struct {
	ID           string    `dynamodbav:"PK" json:"id"`
	Creator      string    `dynamodbav:"Creator" json:"creator"`
	Title        string    `dynamodbav:"Title" json:"title"`
	Visibility   string    `dynamodbav:"Visibility" json:"visibility"`
	VotingSystem string    `dynamodbav:"VotingSystem" json:"votingSystem"`
	CreatedAt    time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
	Token        string    `dynamodbav:"Token" json:"token"`
}

// VoteOption carries ApprovalsCount as a derived, incrementally-maintained
// cache; the approval rows are the source of truth.
type VoteOption struct {
	ID             string `dynamodbav:"PK" json:"id"`
	VoteID         string `dynamodbav:"VoteID" json:"voteId"`
	Label          string `dynamodbav:"Label" json:"label"`
	OrderIndex     int    `dynamodbav:"OrderIndex" json:"orderIndex"`
	ApprovalsCount int    `dynamodbav:"ApprovalsCount" json:"approvalsCount"`
}

// Judgment is one voter's graded ballot row for one option. At most one row
// exists per (voter, option) pair.
type Judgment struct {
	OptionID string `dynamodbav:"PK"`
	Voter    string `dynamodbav:"SK"`
	VoteID   string `dynamodbav:"VoteID"`
	Grade    int    `dynamodbav:"Grade"`
}

// Approval is one voter's approval ballot row for one option. SortKey is the
// composite voter#option range key.
type Approval struct {
	VoteID    string    `dynamodbav:"PK"`
	SortKey   string    `dynamodbav:"SK"`
	OptionID  string    `dynamodbav:"OptionID"`
	Voter     string    `dynamodbav:"Voter"`
	Timestamp time.Time `dynamodbav:"Timestamp"`
}

// MjSummary is the per-option majority judgment summary, fully owned by the
// aggregating engine and overwritten on every recompute. Counts is ordered
// worst grade first and always sums to Total.
type MjSummary struct {
	OptionID string `dynamodbav:"PK" json:"optionId"`
	VoteID   string `dynamodbav:"VoteID" json:"voteId"`
	Total    int    `dynamodbav:"Total" json:"total"`
	Counts   []int  `dynamodbav:"Counts" json:"counts"`
	Majority int    `dynamodbav:"Majority" json:"majority"`
	RunnerUp *int   `dynamodbav:"RunnerUp" json:"runnerUp,omitempty"`
}

// ApprovalSortKey builds the range key for an approval row.
func ApprovalSortKey(voter, optionID string) string {
	return voter + "#" + optionID
}
