package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryDB holds every relation behind one mutex. It backs local development
// and tests; the map keys mirror the DynamoDB table keys so both
// implementations index the relations the same way.
type MemoryDB struct {
	mu sync.RWMutex

	votes     map[string]*Vote
	options   map[string]*VoteOption
	judgments map[string]*Judgment // optionID#voter
	approvals map[string]*Approval // voteID#voter#optionID
	summaries map[string]*MjSummary
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		votes:     make(map[string]*Vote),
		options:   make(map[string]*VoteOption),
		judgments: make(map[string]*Judgment),
		approvals: make(map[string]*Approval),
		summaries: make(map[string]*MjSummary),
	}
}

func judgmentKey(optionID, voter string) string {
	return optionID + "#" + voter
}

func approvalKey(voteID, voter, optionID string) string {
	return voteID + "#" + ApprovalSortKey(voter, optionID)
}

type MemoryVoteStorage struct {
	DB *MemoryDB
}

func (s *MemoryVoteStorage) Get(_ context.Context, id string) (*Vote, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	vote, ok := s.DB.votes[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *vote
	return &copied, nil
}

func (s *MemoryVoteStorage) GetByToken(_ context.Context, token string) (*Vote, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	for _, vote := range s.DB.votes {
		if vote.Token == token {
			copied := *vote
			return &copied, nil
		}
	}
	return nil, ErrItemNotFound
}

func (s *MemoryVoteStorage) GetByCreator(_ context.Context, creator string) ([]*Vote, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	votes := make([]*Vote, 0)
	for _, vote := range s.DB.votes {
		if vote.Creator == creator {
			copied := *vote
			votes = append(votes, &copied)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].CreatedAt.Before(votes[j].CreatedAt)
	})
	return votes, nil
}

func (s *MemoryVoteStorage) Create(_ context.Context, vote *Vote) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	if _, exists := s.DB.votes[vote.ID]; exists {
		return ErrItemAlreadyExists
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now().UTC()
	}
	copied := *vote
	s.DB.votes[vote.ID] = &copied
	return nil
}

func (s *MemoryVoteStorage) Delete(_ context.Context, id string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	delete(s.DB.votes, id)
	return nil
}

type MemoryVoteOptionStorage struct {
	DB *MemoryDB
}

func (s *MemoryVoteOptionStorage) Get(_ context.Context, id string) (*VoteOption, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	opt, ok := s.DB.options[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *opt
	return &copied, nil
}

func (s *MemoryVoteOptionStorage) GetByVote(_ context.Context, voteID string) ([]*VoteOption, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	options := make([]*VoteOption, 0)
	for _, opt := range s.DB.options {
		if opt.VoteID == voteID {
			copied := *opt
			options = append(options, &copied)
		}
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].OrderIndex < options[j].OrderIndex
	})
	return options, nil
}

func (s *MemoryVoteOptionStorage) Create(_ context.Context, option *VoteOption) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	if _, exists := s.DB.options[option.ID]; exists {
		return ErrItemAlreadyExists
	}
	copied := *option
	s.DB.options[option.ID] = &copied
	return nil
}

func (s *MemoryVoteOptionStorage) SetApprovalsCount(_ context.Context, id string, count int) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	opt, ok := s.DB.options[id]
	if !ok {
		return ErrItemNotFound
	}
	opt.ApprovalsCount = count
	return nil
}

func (s *MemoryVoteOptionStorage) Delete(_ context.Context, id string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	delete(s.DB.options, id)
	return nil
}

type MemoryJudgmentStorage struct {
	DB *MemoryDB
}

func (s *MemoryJudgmentStorage) GetByOption(_ context.Context, optionID string) ([]*Judgment, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	judgments := make([]*Judgment, 0)
	for _, j := range s.DB.judgments {
		if j.OptionID == optionID {
			copied := *j
			judgments = append(judgments, &copied)
		}
	}
	return judgments, nil
}

func (s *MemoryJudgmentStorage) GetByOptionAndVoter(_ context.Context, optionID, voter string) (*Judgment, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	j, ok := s.DB.judgments[judgmentKey(optionID, voter)]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *j
	return &copied, nil
}

func (s *MemoryJudgmentStorage) Put(_ context.Context, judgment *Judgment) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	copied := *judgment
	s.DB.judgments[judgmentKey(judgment.OptionID, judgment.Voter)] = &copied
	return nil
}

func (s *MemoryJudgmentStorage) Delete(_ context.Context, optionID, voter string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	delete(s.DB.judgments, judgmentKey(optionID, voter))
	return nil
}

func (s *MemoryJudgmentStorage) DeleteByOption(_ context.Context, optionID string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for key, j := range s.DB.judgments {
		if j.OptionID == optionID {
			delete(s.DB.judgments, key)
		}
	}
	return nil
}

type MemoryApprovalStorage struct {
	DB *MemoryDB
}

func (s *MemoryApprovalStorage) Get(_ context.Context, voteID, voter, optionID string) (*Approval, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	a, ok := s.DB.approvals[approvalKey(voteID, voter, optionID)]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *MemoryApprovalStorage) GetByVoteAndVoter(_ context.Context, voteID, voter string) ([]*Approval, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	approvals := make([]*Approval, 0)
	for _, a := range s.DB.approvals {
		if a.VoteID == voteID && a.Voter == voter {
			copied := *a
			approvals = append(approvals, &copied)
		}
	}
	return approvals, nil
}

func (s *MemoryApprovalStorage) Create(_ context.Context, approval *Approval) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	if approval.SortKey == "" {
		approval.SortKey = ApprovalSortKey(approval.Voter, approval.OptionID)
	}
	if approval.Timestamp.IsZero() {
		approval.Timestamp = time.Now().UTC()
	}
	copied := *approval
	s.DB.approvals[approvalKey(approval.VoteID, approval.Voter, approval.OptionID)] = &copied
	return nil
}

func (s *MemoryApprovalStorage) Delete(_ context.Context, voteID, voter, optionID string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	delete(s.DB.approvals, approvalKey(voteID, voter, optionID))
	return nil
}

func (s *MemoryApprovalStorage) DeleteByVote(_ context.Context, voteID string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for key, a := range s.DB.approvals {
		if a.VoteID == voteID {
			delete(s.DB.approvals, key)
		}
	}
	return nil
}

type MemorySummaryStorage struct {
	DB *MemoryDB
}

func (s *MemorySummaryStorage) Get(_ context.Context, optionID string) (*MjSummary, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	summary, ok := s.DB.summaries[optionID]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *summary
	return &copied, nil
}

func (s *MemorySummaryStorage) GetByVote(_ context.Context, voteID string) ([]*MjSummary, error) {
	s.DB.mu.RLock()
	defer s.DB.mu.RUnlock()
	summaries := make([]*MjSummary, 0)
	for _, summary := range s.DB.summaries {
		if summary.VoteID == voteID {
			copied := *summary
			summaries = append(summaries, &copied)
		}
	}
	return summaries, nil
}

func (s *MemorySummaryStorage) Put(_ context.Context, summary *MjSummary) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	copied := *summary
	s.DB.summaries[summary.OptionID] = &copied
	return nil
}

func (s *MemorySummaryStorage) DeleteByVote(_ context.Context, voteID string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for key, summary := range s.DB.summaries {
		if summary.VoteID == voteID {
			delete(s.DB.summaries, key)
		}
	}
	return nil
}
