package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"coopvote/internal/core/domain"
)

func newSessionService(f *fixture) *SessionService {
	return NewSessionService(f.branches, f.members, f.votes)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)
	ctx := context.Background()

	sess := svc.Start()
	if sess.State != domain.StateStart {
		t.Fatalf("Expected START, got %s", sess.State)
	}

	sess, err := svc.SelectBranch(ctx, sess.ID, f.branch.ID)
	if err != nil {
		t.Fatalf("SelectBranch failed: %v", err)
	}
	if sess.State != domain.StateBranchSelected || sess.BranchNumber != f.branch.BranchNumber {
		t.Errorf("Unexpected session after branch selection: %+v", sess)
	}

	sess, err = svc.SelectMember(ctx, sess.ID, f.member.ID)
	if err != nil {
		t.Fatalf("SelectMember failed: %v", err)
	}
	if sess.State != domain.StateMemberSelected || sess.MemberCode != f.member.MemberCode {
		t.Errorf("Unexpected session after member selection: %+v", sess)
	}

	sess, err = svc.MarkVerified(sess.ID)
	if err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}
	if sess.State != domain.StateVerified || !sess.Verified {
		t.Errorf("Unexpected session after verification: %+v", sess)
	}

	if _, err := svc.Advance(sess.ID, domain.StateBallotShown); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	sess, err = svc.CompleteSubmission(sess.ID, "1234567890", "token-1")
	if err != nil {
		t.Fatalf("CompleteSubmission failed: %v", err)
	}
	if sess.State != domain.StateConfirmed || sess.ControlNumber != "1234567890" {
		t.Errorf("Unexpected session after confirmation: %+v", sess)
	}

	// Confirmed is terminal
	if _, err := svc.SelectBranch(ctx, sess.ID, f.branch.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on a confirmed session, got %v", err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	if _, err := svc.Get("no-such-session"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSelectBranchRequiresActiveBranch(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)
	ctx := context.Background()

	f.branch.IsActive = false
	if err := f.db.Save(f.branch).Error; err != nil {
		t.Fatalf("Failed to deactivate branch: %v", err)
	}

	sess := svc.Start()
	if _, err := svc.SelectBranch(ctx, sess.ID, f.branch.ID); !errors.Is(err, domain.ErrBranchInactive) {
		t.Errorf("Expected ErrBranchInactive, got %v", err)
	}
}

func TestReselectingBranchClearsVerification(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)
	ctx := context.Background()

	id := f.startSelectedSession(t, svc)
	if _, err := svc.MarkVerified(id); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}

	sess, err := svc.SelectBranch(ctx, id, f.branch.ID)
	if err != nil {
		t.Fatalf("SelectBranch failed: %v", err)
	}
	if sess.Verified || sess.MemberCode != "" {
		t.Errorf("Expected identity cleared after branch reselection: %+v", sess)
	}
	if sess.State != domain.StateBranchSelected {
		t.Errorf("Expected BRANCH_SELECTED, got %s", sess.State)
	}
}

func TestSelectMemberRejectsWrongBranch(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)
	ctx := context.Background()

	other := f.seedMember(t, "M-2001", "Jose", "", "Lim", "SA-20250099", 5000, true)
	other.BranchNumber = "BR-999"
	if err := f.db.Save(other).Error; err != nil {
		t.Fatalf("Failed to move member: %v", err)
	}

	sess := svc.Start()
	if _, err := svc.SelectBranch(ctx, sess.ID, f.branch.ID); err != nil {
		t.Fatalf("SelectBranch failed: %v", err)
	}
	if _, err := svc.SelectMember(ctx, sess.ID, other.ID); !errors.Is(err, domain.ErrMemberNotFound) {
		t.Errorf("Expected ErrMemberNotFound for an out-of-branch member, got %v", err)
	}
}

func TestSelectMemberWhoAlreadyVoted(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)
	ctx := context.Background()

	f.seedVote(t, f.member.MemberCode, f.boardCands[0].ID, "9999999999", time.Now())

	sess := svc.Start()
	if _, err := svc.SelectBranch(ctx, sess.ID, f.branch.ID); err != nil {
		t.Fatalf("SelectBranch failed: %v", err)
	}

	got, err := svc.SelectMember(ctx, sess.ID, f.member.ID)
	if !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("Expected ErrAlreadyVoted, got %v", err)
	}
	if got.State != domain.StateAlreadyVoted {
		t.Errorf("Expected ALREADY_VOTED terminal, got %s", got.State)
	}
}

func TestSearchMembersRequiresBranch(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	sess := svc.Start()
	if _, err := svc.SearchMembers(context.Background(), sess.ID, "Maria"); !errors.Is(err, domain.ErrNoBranchSelected) {
		t.Errorf("Expected ErrNoBranchSelected, got %v", err)
	}
}

func TestSearchMembersScopedToBranch(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)
	ctx := context.Background()

	sess := svc.Start()
	if _, err := svc.SelectBranch(ctx, sess.ID, f.branch.ID); err != nil {
		t.Fatalf("SelectBranch failed: %v", err)
	}

	summaries, err := svc.SearchMembers(ctx, sess.ID, "Maria")
	if err != nil {
		t.Fatalf("SearchMembers failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].MemberCode != f.member.MemberCode {
		t.Fatalf("Unexpected search result: %+v", summaries)
	}
	if summaries[0].FullName != "Maria Santos Reyes" {
		t.Errorf("Unexpected full name: %q", summaries[0].FullName)
	}
}

func TestRequireVerifiedGuards(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	// No member selected yet
	sess := svc.Start()
	if _, err := svc.RequireVerified(sess.ID); !errors.Is(err, domain.ErrNoMemberSelected) {
		t.Errorf("Expected ErrNoMemberSelected, got %v", err)
	}

	// Member selected but challenge never passed
	id := f.startSelectedSession(t, svc)
	if _, err := svc.RequireVerified(id); !errors.Is(err, domain.ErrNotVerified) {
		t.Errorf("Expected ErrNotVerified, got %v", err)
	}
}

func TestStaleVerificationExpiresSession(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	id := f.startSelectedSession(t, svc)
	if _, err := svc.MarkVerified(id); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}

	// Age the verification past its TTL
	sess, err := svc.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	sess.VerifiedAt = time.Now().Add(-domain.VerifiedTTL - time.Minute)

	if _, err := svc.RequireVerified(id); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}

	sess, err = svc.Get(id)
	if err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if sess.State != domain.StateExpired || sess.MemberCode != "" {
		t.Errorf("Expected an expired session with cleared identity: %+v", sess)
	}
}

func TestVerifyAttemptLimit(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	id := f.startSelectedSession(t, svc)
	for i := 0; i < maxVerifyAttempts; i++ {
		if err := svc.AllowVerifyAttempt(id); err != nil {
			t.Fatalf("Attempt %d unexpectedly blocked: %v", i+1, err)
		}
	}
	if err := svc.AllowVerifyAttempt(id); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Errorf("Expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAbortDestroysSession(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	sess := svc.Start()
	svc.Abort(sess.ID)
	if _, err := svc.Get(sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after abort, got %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	f := newFixture(t)
	svc := newSessionService(f)

	live := svc.Start()
	idle := svc.Start()

	sess, err := svc.Get(idle.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	sess.UpdatedAt = time.Now().Add(-SessionIdleTTL - time.Minute)

	if purged := svc.PurgeExpired(); purged != 1 {
		t.Errorf("Expected 1 purged session, got %d", purged)
	}
	if _, err := svc.Get(live.ID); err != nil {
		t.Errorf("Live session disappeared: %v", err)
	}
	if svc.ActiveCount() != 1 {
		t.Errorf("Expected 1 active session, got %d", svc.ActiveCount())
	}
}
