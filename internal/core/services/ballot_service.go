package services

import (
	"context"

	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"
)

// BallotService assembles the ballot a verified member sees: open positions
// in display order, each annotated with its vacancy count and active
// candidates. Pure read, no caching: the ballot reflects administrative
// state at call time.
type BallotService struct {
	positionRepo repositories.PositionRepository
}

// NewBallotService creates a new ballot service
func NewBallotService(positionRepo repositories.PositionRepository) *BallotService {
	return &BallotService{positionRepo: positionRepo}
}

// Assemble returns the ordered contests for the ballot.
func (s *BallotService) Assemble(ctx context.Context) ([]domain.BallotPosition, error) {
	positions, err := s.positionRepo.ListActiveWithCandidates(ctx)
	if err != nil {
		return nil, err
	}

	ballot := make([]domain.BallotPosition, 0, len(positions))
	for _, p := range positions {
		bp := domain.BallotPosition{
			ID:          p.ID,
			Title:       p.Title,
			VacantCount: p.VacantCount,
			Priority:    p.Priority,
			Candidates:  make([]domain.BallotCandidate, 0, len(p.Candidates)),
		}
		for i := range p.Candidates {
			c := &p.Candidates[i]
			bp.Candidates = append(bp.Candidates, domain.BallotCandidate{
				ID:       c.ID,
				FullName: c.FullName(),
				Bio:      c.Bio,
				ImageURL: c.ImageURL,
			})
		}
		ballot = append(ballot, bp)
	}
	return ballot, nil
}
