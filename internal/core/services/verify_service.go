package services

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"
)

var last4Pattern = regexp.MustCompile(`^\d{4}$`)

// VerifyInput carries the voter's identity challenge answers. MiddleName and
// BirthDate are the optional secret-knowledge answers; at least one must be
// supplied.
type VerifyInput struct {
	Last4      string
	MiddleName string
	BirthDate  string // YYYY-MM-DD
}

// VerifyService validates a claimed member identity against secret-knowledge
// challenges and gates on membership eligibility before a session may
// proceed to the ballot.
type VerifyService struct {
	sessions   *SessionService
	memberRepo repositories.MemberRepository

	// MinShareAmount is the minimum share balance an eligible voter must hold.
	MinShareAmount float64
}

// NewVerifyService creates a new verify service
func NewVerifyService(sessions *SessionService, memberRepo repositories.MemberRepository, minShareAmount float64) *VerifyService {
	return &VerifyService{
		sessions:       sessions,
		memberRepo:     memberRepo,
		MinShareAmount: minShareAmount,
	}
}

// Verify runs the identity challenge for the session's selected member:
// the trailing 4 digits of the share account must match, and at least one of
// the supplied secret answers (middle name, birth date) must match. Failures
// never mutate the session's verified state; attempt limiting is enforced
// before any account data is touched.
func (s *VerifyService) Verify(ctx context.Context, sessionID string, input VerifyInput) (*domain.VotingSession, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State == domain.StateExpired {
		return nil, domain.ErrSessionExpired
	}
	if sess.MemberCode == "" {
		return nil, domain.ErrNoMemberSelected
	}

	middleName := strings.TrimSpace(input.MiddleName)
	birthDate := strings.TrimSpace(input.BirthDate)

	// Fail before touching account data when no security answer was given.
	if middleName == "" && birthDate == "" {
		return nil, domain.ErrMissingSecurityAnswer
	}
	if !last4Pattern.MatchString(input.Last4) {
		return nil, domain.ErrInvalidInput
	}

	if err := s.sessions.AllowVerifyAttempt(sessionID); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByCode(ctx, sess.MemberCode)
	if err != nil {
		return nil, err
	}

	// Exact match on the trailing 4 characters of the share account number.
	account := member.ShareAccountNo
	if len(account) < 4 || account[len(account)-4:] != input.Last4 {
		return nil, domain.ErrAccountMismatch
	}

	// At least one evaluated secret-knowledge check must succeed.
	matched := false
	if middleName != "" && strings.EqualFold(middleName, strings.TrimSpace(member.MiddleName)) {
		matched = true
	}
	if !matched && birthDate != "" {
		claimed, err := time.Parse("2006-01-02", birthDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		y1, m1, d1 := claimed.Date()
		y2, m2, d2 := member.BirthDate.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			matched = true
		}
	}
	if !matched {
		return nil, domain.ErrSecurityAnswerMismatch
	}

	if err := s.checkEligibility(member.IsActive, member.IsMIGS, member.ShareAmount); err != nil {
		return nil, err
	}

	verified, err := s.sessions.MarkVerified(sessionID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Member %s verified (branch %s)", member.MemberCode, member.BranchNumber)
	return verified, nil
}

// checkEligibility gates on the membership eligibility rules: active status,
// MIGS classification and minimum share amount.
func (s *VerifyService) checkEligibility(isActive, isMIGS bool, shareAmount float64) error {
	if !isActive || !isMIGS || shareAmount < s.MinShareAmount {
		return domain.ErrNotEligible
	}
	return nil
}
