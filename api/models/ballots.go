package models

type ApprovalBallotRequest struct {
	OptionIDs []string `json:"optionIds"`
}

type ApprovalBallotResponse struct {
	OptionIDs []string `json:"optionIds"`
}

type JudgmentCastRequest struct {
	OptionID string `json:"optionId"`
	Grade    string `json:"grade"`
}

type JudgmentBallotEntry struct {
	OptionID string `json:"optionId"`
	Grade    string `json:"grade"`
}

type JudgmentBallotRequest struct {
	Entries []JudgmentBallotEntry `json:"entries"`
}

type JudgmentBallotResponse struct {
	Entries []JudgmentBallotEntry `json:"entries"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
