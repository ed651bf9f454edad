package services

import (
	"context"

	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"
)

// ResultsService aggregates the vote ledger into per-position rankings for
// the admin surface. Candidates are ranked by vote count; within the
// vacancy-count slots the tie-break is the earlier last-vote timestamp
// (first to reach the count), then the lower candidate ID. A tie that
// crosses the vacancy boundary is flagged so operators can see the policy
// kicked in rather than having it resolved silently.
type ResultsService struct {
	voteRepo     repositories.VoteRepository
	positionRepo repositories.PositionRepository
}

// NewResultsService creates a new results service
func NewResultsService(voteRepo repositories.VoteRepository, positionRepo repositories.PositionRepository) *ResultsService {
	return &ResultsService{
		voteRepo:     voteRepo,
		positionRepo: positionRepo,
	}
}

// TallyPosition ranks one position's candidates.
func (s *ResultsService) TallyPosition(ctx context.Context, positionID uint) (*domain.PositionResult, error) {
	position, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.voteRepo.TallyPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}

	result := &domain.PositionResult{
		PositionID:  position.ID,
		Title:       position.Title,
		VacantCount: position.VacantCount,
		Candidates:  make([]domain.CandidateResult, 0, len(rows)),
	}

	for i, row := range rows {
		candidate, err := s.positionRepo.GetCandidateByID(ctx, row.CandidateID)
		if err != nil {
			return nil, err
		}

		elected := i < position.VacantCount

		// Flag ties that straddle the vacancy boundary: the last elected
		// candidate and the first runner-up holding the same count.
		tie := false
		if elected && i == position.VacantCount-1 && i+1 < len(rows) && rows[i+1].VoteCount == row.VoteCount {
			tie = true
		}
		if !elected && i == position.VacantCount && i-1 >= 0 && rows[i-1].VoteCount == row.VoteCount {
			tie = true
		}

		lastVote := row.LastVoteAt
		result.Candidates = append(result.Candidates, domain.CandidateResult{
			CandidateID: candidate.ID,
			FullName:    candidate.FullName(),
			VoteCount:   row.VoteCount,
			LastVoteAt:  &lastVote,
			Elected:     elected,
			Tie:         tie,
		})
	}

	return result, nil
}

// TallyAll ranks every active position.
func (s *ResultsService) TallyAll(ctx context.Context) ([]domain.PositionResult, error) {
	positions, err := s.positionRepo.ListActiveWithCandidates(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PositionResult, 0, len(positions))
	for _, position := range positions {
		result, err := s.TallyPosition(ctx, position.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// Turnout summarizes participation for the admin dashboard.
type Turnout struct {
	TotalVotes   int64 `json:"total_votes"`
	TotalBallots int64 `json:"total_ballots"`
}

// GetTurnout returns overall participation counts.
func (s *ResultsService) GetTurnout(ctx context.Context) (*Turnout, error) {
	votes, err := s.voteRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	ballots, err := s.voteRepo.CountBallots(ctx)
	if err != nil {
		return nil, err
	}
	return &Turnout{TotalVotes: votes, TotalBallots: ballots}, nil
}
