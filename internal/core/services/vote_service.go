package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sort"
	"strings"
	"sync"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"

	"gorm.io/gorm"
)

const controlNumberDigits = 10

// VoteService is the vote ledger: the single source of truth for vote
// legality, used by the voter-facing ballot flow and by administrative
// correction tools alike. Submissions are validated by an ordered fail-fast
// rule pipeline and committed atomically; a per-(branch, member) lock plus
// the ledger's unique index make sure two racing submissions for the same
// member can never both succeed.
type VoteService struct {
	voteRepo     repositories.VoteRepository
	positionRepo repositories.PositionRepository

	// Serialization scoped to the (branch, member) key (double-click /
	// two-tab hazard). Unrelated members never contend.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewVoteService creates a new vote service
func NewVoteService(voteRepo repositories.VoteRepository, positionRepo repositories.PositionRepository) *VoteService {
	return &VoteService{
		voteRepo:     voteRepo,
		positionRepo: positionRepo,
		locks:        make(map[string]*sync.Mutex),
	}
}

// SubmitResult reports a committed ballot.
type SubmitResult struct {
	ControlNumber string `json:"control_number"`
	VoteCount     int    `json:"vote_count"`
}

// Submit validates and commits one member's full ballot as an atomic unit.
// selections maps position ID to the chosen candidate IDs. Either every
// selection commits or none do. Validation order, first violation wins:
// already-voted, over-vote-limit, duplicate-candidate, position-mismatch.
func (s *VoteService) Submit(ctx context.Context, branchNumber, memberCode string, selections map[uint][]uint) (*SubmitResult, error) {
	if branchNumber == "" || memberCode == "" {
		return nil, domain.ErrInvalidInput
	}
	total := 0
	for _, candidateIDs := range selections {
		total += len(candidateIDs)
	}
	if total == 0 {
		return nil, domain.ErrEmptyBallot
	}

	unlock := s.lockMember(branchNumber, memberCode)
	defer unlock()

	var result *SubmitResult
	err := s.voteRepo.WithTx(ctx, func(tx repositories.VoteRepository) error {
		var err error
		result, err = s.submitLocked(ctx, tx, branchNumber, memberCode, selections)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Ballot committed: member %s, branch %s, %d vote(s), control %s",
		memberCode, branchNumber, result.VoteCount, result.ControlNumber)
	return result, nil
}

// submitLocked runs the rule pipeline and the inserts inside one transaction.
func (s *VoteService) submitLocked(ctx context.Context, tx repositories.VoteRepository, branchNumber, memberCode string, selections map[uint][]uint) (*SubmitResult, error) {
	// Rule 1: a member completes a full submission exactly once.
	existing, err := tx.GetByMember(ctx, branchNumber, memberCode)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrAlreadyVoted
	}

	// Deterministic rule evaluation order across positions.
	positionIDs := make([]uint, 0, len(selections))
	for positionID := range selections {
		positionIDs = append(positionIDs, positionID)
	}
	sort.Slice(positionIDs, func(i, j int) bool { return positionIDs[i] < positionIDs[j] })

	var candidateIDs []uint
	for _, positionID := range positionIDs {
		position, err := s.positionRepo.GetByID(ctx, positionID)
		if err != nil {
			return nil, err
		}
		if !position.IsActive {
			return nil, domain.ErrPositionNotFound
		}

		picks := selections[positionID]

		// Rule 2: at most VacantCount selections per position.
		if len(picks) > position.VacantCount {
			return nil, fmt.Errorf("%w: %s allows %d selection(s)", domain.ErrOverVoteLimit, position.Title, position.VacantCount)
		}

		// Rule 3: the same candidate may appear only once in a batch.
		seen := make(map[uint]bool, len(picks))
		for _, candidateID := range picks {
			if seen[candidateID] {
				return nil, domain.ErrDuplicateCandidateVote
			}
			seen[candidateID] = true
			candidateIDs = append(candidateIDs, candidateID)
		}
	}

	// Rule 4: every candidate must run under the position it was submitted
	// for, and must be active.
	candidates, err := s.positionRepo.GetCandidatesByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Candidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
	}
	for _, positionID := range positionIDs {
		for _, candidateID := range selections[positionID] {
			candidate, ok := byID[candidateID]
			if !ok {
				return nil, domain.ErrCandidateNotFound
			}
			if candidate.PositionID != positionID || !candidate.IsActive {
				return nil, domain.ErrCandidatePositionMismatch
			}
		}
	}

	controlNumber, err := s.getOrCreateControlNumber(ctx, tx, branchNumber, memberCode)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, positionID := range positionIDs {
		for _, candidateID := range selections[positionID] {
			vote := &models.Vote{
				BranchNumber:  branchNumber,
				MemberCode:    memberCode,
				CandidateID:   candidateID,
				ControlNumber: controlNumber,
			}
			if err := tx.CreateVote(ctx, vote); err != nil {
				// A uniqueness violation at commit time means a concurrent
				// submission won the race; surface the same error the
				// up-front check would have produced.
				if isDuplicateKey(err) {
					return nil, domain.ErrDuplicateCandidateVote
				}
				return nil, err
			}
			count++
		}
	}

	return &SubmitResult{ControlNumber: controlNumber, VoteCount: count}, nil
}

// getOrCreateControlNumber reuses the control number from any existing vote
// for (branch, member), or mints a fresh one. Runs inside the submit
// transaction so the lookup and the inserts share one atomic scope.
func (s *VoteService) getOrCreateControlNumber(ctx context.Context, tx repositories.VoteRepository, branchNumber, memberCode string) (string, error) {
	existing, err := tx.GetByMember(ctx, branchNumber, memberCode)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return existing[0].ControlNumber, nil
	}

	// Random numeric code, re-rolled on the unlikely collision.
	for i := 0; i < 5; i++ {
		controlNumber, err := generateControlNumber(controlNumberDigits)
		if err != nil {
			return "", err
		}
		taken, err := tx.ControlNumberExists(ctx, controlNumber)
		if err != nil {
			return "", err
		}
		if !taken {
			return controlNumber, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique control number")
}

// lockMember returns an unlock func for the (branch, member) serialization key.
func (s *VoteService) lockMember(branchNumber, memberCode string) func() {
	key := branchNumber + "|" + memberCode

	s.locksMu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// generateControlNumber builds a cryptographically random digit string.
func generateControlNumber(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String(), nil
}

// isDuplicateKey detects a unique-index violation surfacing at commit time.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
