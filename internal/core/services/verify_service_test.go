package services

import (
	"context"
	"errors"
	"testing"

	"coopvote/internal/core/domain"
)

const testMinShare = 1000

func newVerifyFixture(t *testing.T) (*fixture, *SessionService, *VerifyService, string) {
	t.Helper()
	f := newFixture(t)
	sessions := newSessionService(f)
	verify := NewVerifyService(sessions, f.members, testMinShare)
	id := f.startSelectedSession(t, sessions)
	return f, sessions, verify, id
}

func TestVerifyWithMiddleName(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)

	sess, err := verify.Verify(context.Background(), id, VerifyInput{
		Last4:      "0041",
		MiddleName: "Santos",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if sess.State != domain.StateVerified || !sess.Verified {
		t.Errorf("Expected a verified session, got %+v", sess)
	}
}

func TestVerifyMiddleNameIsCaseInsensitive(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)

	if _, err := verify.Verify(context.Background(), id, VerifyInput{
		Last4:      "0041",
		MiddleName: "  sAnToS ",
	}); err != nil {
		t.Errorf("Expected case-insensitive middle name match, got %v", err)
	}
}

func TestVerifyWithBirthDate(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)

	if _, err := verify.Verify(context.Background(), id, VerifyInput{
		Last4:     "0041",
		BirthDate: "1985-03-14",
	}); err != nil {
		t.Errorf("Verify by birth date failed: %v", err)
	}
}

func TestVerifyRequiresSecurityAnswer(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)

	_, err := verify.Verify(context.Background(), id, VerifyInput{Last4: "0041"})
	if !errors.Is(err, domain.ErrMissingSecurityAnswer) {
		t.Errorf("Expected ErrMissingSecurityAnswer, got %v", err)
	}
}

func TestVerifyRejectsMalformedLast4(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)

	for _, last4 := range []string{"", "41", "00411", "ab12"} {
		_, err := verify.Verify(context.Background(), id, VerifyInput{
			Last4:      last4,
			MiddleName: "Santos",
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("last4=%q: expected ErrInvalidInput, got %v", last4, err)
		}
	}
}

func TestVerifyRejectsWrongAccount(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)

	_, err := verify.Verify(context.Background(), id, VerifyInput{
		Last4:      "9999",
		MiddleName: "Santos",
	})
	if !errors.Is(err, domain.ErrAccountMismatch) {
		t.Errorf("Expected ErrAccountMismatch, got %v", err)
	}
}

func TestVerifyRejectsWrongAnswers(t *testing.T) {
	_, sessions, verify, id := newVerifyFixture(t)

	_, err := verify.Verify(context.Background(), id, VerifyInput{
		Last4:      "0041",
		MiddleName: "Gonzales",
		BirthDate:  "1990-01-01",
	})
	if !errors.Is(err, domain.ErrSecurityAnswerMismatch) {
		t.Fatalf("Expected ErrSecurityAnswerMismatch, got %v", err)
	}

	// A failed challenge never marks the session verified
	sess, err := sessions.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess.Verified {
		t.Error("Session became verified after a failed challenge")
	}
}

func TestVerifyEligibilityGate(t *testing.T) {
	cases := []struct {
		name        string
		shareAmount float64
		migs        bool
	}{
		{"below minimum share", testMinShare - 1, true},
		{"not MIGS", 5000, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			sessions := newSessionService(f)
			verify := NewVerifyService(sessions, f.members, testMinShare)

			f.member.ShareAmount = tc.shareAmount
			f.member.IsMIGS = tc.migs
			if err := f.db.Save(f.member).Error; err != nil {
				t.Fatalf("Failed to update member: %v", err)
			}

			id := f.startSelectedSession(t, sessions)
			_, err := verify.Verify(context.Background(), id, VerifyInput{
				Last4:      "0041",
				MiddleName: "Santos",
			})
			if !errors.Is(err, domain.ErrNotEligible) {
				t.Errorf("Expected ErrNotEligible, got %v", err)
			}
		})
	}
}

func TestVerifyAttemptLimitEnforced(t *testing.T) {
	_, _, verify, id := newVerifyFixture(t)
	ctx := context.Background()

	bad := VerifyInput{Last4: "0041", MiddleName: "Gonzales"}
	for i := 0; i < maxVerifyAttempts; i++ {
		if _, err := verify.Verify(ctx, id, bad); !errors.Is(err, domain.ErrSecurityAnswerMismatch) {
			t.Fatalf("Attempt %d: expected ErrSecurityAnswerMismatch, got %v", i+1, err)
		}
	}

	// The limit blocks even a correct answer within the window
	_, err := verify.Verify(ctx, id, VerifyInput{Last4: "0041", MiddleName: "Santos"})
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Errorf("Expected ErrTooManyAttempts, got %v", err)
	}
}
