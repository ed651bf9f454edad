package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"coopvote/internal/core/domain"
)

var controlNumberShape = regexp.MustCompile(`^\d{10}$`)

func TestSubmitCommitsFullBallot(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)
	ctx := context.Background()

	result, err := svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.board.ID: {f.boardCands[0].ID, f.boardCands[1].ID},
		f.audit.ID: {f.auditCands[0].ID},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.VoteCount != 3 {
		t.Errorf("Expected 3 votes, got %d", result.VoteCount)
	}
	if !controlNumberShape.MatchString(result.ControlNumber) {
		t.Errorf("Expected a 10-digit control number, got %q", result.ControlNumber)
	}

	votes, err := f.votes.GetByMember(ctx, f.branch.BranchNumber, f.member.MemberCode)
	if err != nil {
		t.Fatalf("GetByMember failed: %v", err)
	}
	if len(votes) != 3 {
		t.Fatalf("Expected 3 ledger rows, got %d", len(votes))
	}
	for _, vote := range votes {
		if vote.ControlNumber != result.ControlNumber {
			t.Errorf("Vote %d carries control %q, expected %q", vote.ID, vote.ControlNumber, result.ControlNumber)
		}
	}
}

func TestSubmitRejectsEmptyBallot(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)

	_, err := svc.Submit(context.Background(), f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{})
	if !errors.Is(err, domain.ErrEmptyBallot) {
		t.Errorf("Expected ErrEmptyBallot, got %v", err)
	}

	_, err = svc.Submit(context.Background(), f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{f.board.ID: {}})
	if !errors.Is(err, domain.ErrEmptyBallot) {
		t.Errorf("Expected ErrEmptyBallot for empty selections, got %v", err)
	}
}

func TestSubmitRejectsOverVoteLimit(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)
	ctx := context.Background()

	// Board allows 2 picks, submit 3
	_, err := svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.board.ID: {f.boardCands[0].ID, f.boardCands[1].ID, f.boardCands[2].ID},
	})
	if !errors.Is(err, domain.ErrOverVoteLimit) {
		t.Fatalf("Expected ErrOverVoteLimit, got %v", err)
	}

	// Nothing may have been committed
	count, err := f.votes.CountByMember(ctx, f.branch.BranchNumber, f.member.MemberCode)
	if err != nil {
		t.Fatalf("CountByMember failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected an empty ledger after rejection, found %d rows", count)
	}
}

func TestSubmitRejectsDuplicateCandidate(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)

	_, err := svc.Submit(context.Background(), f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.board.ID: {f.boardCands[0].ID, f.boardCands[0].ID},
	})
	if !errors.Is(err, domain.ErrDuplicateCandidateVote) {
		t.Errorf("Expected ErrDuplicateCandidateVote, got %v", err)
	}
}

func TestSubmitRejectsPositionMismatch(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)

	// An audit candidate submitted under the board contest
	_, err := svc.Submit(context.Background(), f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.board.ID: {f.auditCands[0].ID},
	})
	if !errors.Is(err, domain.ErrCandidatePositionMismatch) {
		t.Errorf("Expected ErrCandidatePositionMismatch, got %v", err)
	}
}

func TestSubmitRejectsInactiveCandidate(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)
	ctx := context.Background()

	withdrawn := f.boardCands[2]
	withdrawn.IsActive = false
	if err := f.db.Save(&withdrawn).Error; err != nil {
		t.Fatalf("Failed to deactivate candidate: %v", err)
	}

	_, err := svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.board.ID: {withdrawn.ID},
	})
	if !errors.Is(err, domain.ErrCandidatePositionMismatch) {
		t.Errorf("Expected ErrCandidatePositionMismatch for withdrawn candidate, got %v", err)
	}
}

func TestSubmitRejectsSecondBallot(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)
	ctx := context.Background()

	first, err := svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.audit.ID: {f.auditCands[0].ID},
	})
	if err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	_, err = svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.audit.ID: {f.auditCands[1].ID},
	})
	if !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("Expected ErrAlreadyVoted, got %v", err)
	}

	// The ledger still holds only the first ballot
	votes, err := f.votes.GetByMember(ctx, f.branch.BranchNumber, f.member.MemberCode)
	if err != nil {
		t.Fatalf("GetByMember failed: %v", err)
	}
	if len(votes) != 1 || votes[0].ControlNumber != first.ControlNumber {
		t.Errorf("Ledger changed after rejected resubmission: %+v", votes)
	}
}

func TestSubmitValidationOrder(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)
	ctx := context.Background()

	// A ballot that violates both the over-vote limit (audit allows 1) and
	// duplicate-candidate rules must surface the over-vote limit first.
	_, err := svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
		f.audit.ID: {f.auditCands[0].ID, f.auditCands[0].ID},
	})
	if !errors.Is(err, domain.ErrOverVoteLimit) {
		t.Errorf("Expected ErrOverVoteLimit to win, got %v", err)
	}
}

// TestConcurrentSubmitsSameMember verifies that two racing submissions for
// the same member can never both land on the ledger.
func TestConcurrentSubmitsSameMember(t *testing.T) {
	f := newFixture(t)
	svc := NewVoteService(f.votes, f.positions)
	ctx := context.Background()

	var successes, alreadyVoted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, f.branch.BranchNumber, f.member.MemberCode, map[uint][]uint{
				f.board.ID: {f.boardCands[0].ID, f.boardCands[1].ID},
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrAlreadyVoted):
				alreadyVoted.Add(1)
			default:
				t.Errorf("Unexpected submit error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || alreadyVoted.Load() != 1 {
		t.Errorf("Expected exactly one winner, got %d successes and %d already-voted",
			successes.Load(), alreadyVoted.Load())
	}

	count, err := f.votes.CountByMember(ctx, f.branch.BranchNumber, f.member.MemberCode)
	if err != nil {
		t.Fatalf("CountByMember failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 ledger rows from the single winning ballot, got %d", count)
	}
}
