package services

import (
	"context"
	"log"
	"sync"
	"time"

	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"

	"github.com/google/uuid"
)

const (
	// SessionIdleTTL is how long an untouched session survives at all.
	SessionIdleTTL = 2 * time.Hour

	// Verification attempt window (brute-force guard)
	maxVerifyAttempts   = 3
	verifyAttemptWindow = time.Minute
)

// SessionService owns the in-memory voting session store and the state
// machine that walks a voter from branch selection to confirmation. All
// durable state lives in the vote ledger; sessions themselves are transient.
type SessionService struct {
	branchRepo repositories.BranchRepository
	memberRepo repositories.MemberRepository
	voteRepo   repositories.VoteRepository

	store map[string]*domain.VotingSession
	mu    sync.RWMutex
}

// NewSessionService creates a new session service
func NewSessionService(
	branchRepo repositories.BranchRepository,
	memberRepo repositories.MemberRepository,
	voteRepo repositories.VoteRepository,
) *SessionService {
	svc := &SessionService{
		branchRepo: branchRepo,
		memberRepo: memberRepo,
		voteRepo:   voteRepo,
		store:      make(map[string]*domain.VotingSession),
	}
	go svc.cleanupLoop()
	return svc
}

// Start creates a fresh session at the beginning of the flow.
func (s *SessionService) Start() *domain.VotingSession {
	now := time.Now()
	sess := &domain.VotingSession{
		ID:        uuid.NewString(),
		State:     domain.StateStart,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.store[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session for an ID, applying lazy expiry: a session whose
// verification has gone stale is force-transitioned to EXPIRED and its
// identity fields cleared before it is returned.
func (s *SessionService) Get(id string) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *SessionService) getLocked(id string) (*domain.VotingSession, error) {
	sess, ok := s.store[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	now := time.Now()
	if now.Sub(sess.UpdatedAt) > SessionIdleTTL {
		delete(s.store, id)
		return nil, domain.ErrSessionNotFound
	}

	// Stale verification forces the voter back to the start.
	if sess.Verified && !sess.VerificationValid(now) && !sess.State.IsTerminal() {
		sess.State = domain.StateExpired
		sess.ClearIdentity()
	}

	return sess, nil
}

// SelectBranch moves Start → BranchSelected. Requires an active branch.
// Re-selecting a branch always clears any prior member and verification.
func (s *SessionService) SelectBranch(ctx context.Context, id string, branchID uint) (*domain.VotingSession, error) {
	branch, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, domain.ErrBranchInactive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if sess.State.IsTerminal() && sess.State != domain.StateExpired {
		return nil, domain.ErrInvalidTransition
	}

	sess.ClearIdentity()
	sess.BranchID = branch.ID
	sess.BranchNumber = branch.BranchNumber
	sess.State = domain.StateBranchSelected
	sess.UpdatedAt = time.Now()

	return sess, nil
}

// SearchMembers looks up members by name within the session's selected
// branch. Requires BranchSelected or later.
func (s *SessionService) SearchMembers(ctx context.Context, id, term string) ([]domain.MemberSummary, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.BranchNumber == "" {
		return nil, domain.ErrNoBranchSelected
	}

	members, err := s.memberRepo.SearchInBranch(ctx, sess.BranchNumber, term, 20)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.MemberSummary, len(members))
	for i, m := range members {
		summaries[i] = domain.MemberSummary{
			ID:           m.ID,
			MemberCode:   m.MemberCode,
			FullName:     m.FullName(),
			BranchNumber: m.BranchNumber,
		}
	}
	return summaries, nil
}

// SelectMember moves BranchSelected → MemberSelected. The member must belong
// to the selected branch. Changing member always invalidates any prior
// verification, and a member who already has votes on the ledger is routed
// straight to the ALREADY_VOTED terminal.
func (s *SessionService) SelectMember(ctx context.Context, id string, memberID uint) (*domain.VotingSession, error) {
	s.mu.Lock()
	sess, err := s.getLocked(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.BranchNumber == "" {
		s.mu.Unlock()
		return nil, domain.ErrNoBranchSelected
	}
	branchNumber := sess.BranchNumber
	s.mu.Unlock()

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.BranchNumber != branchNumber || !member.IsActive {
		return nil, domain.ErrMemberNotFound
	}

	voteCount, err := s.voteRepo.CountByMember(ctx, branchNumber, member.MemberCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err = s.getLocked(id)
	if err != nil {
		return nil, err
	}

	sess.ClearIdentity()
	sess.MemberID = member.ID
	sess.MemberCode = member.MemberCode
	sess.MemberName = member.FullName()
	sess.UpdatedAt = time.Now()

	if voteCount > 0 {
		sess.State = domain.StateAlreadyVoted
		return sess, domain.ErrAlreadyVoted
	}

	sess.State = domain.StateMemberSelected
	return sess, nil
}

// AllowVerifyAttempt enforces the bounded verification-attempt rate
// (3 per minute per session). It must be called before each challenge check.
func (s *SessionService) AllowVerifyAttempt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return err
	}

	now := time.Now()
	if now.Sub(sess.AttemptWindow) > verifyAttemptWindow {
		sess.AttemptWindow = now
		sess.AttemptCount = 0
	}
	if sess.AttemptCount >= maxVerifyAttempts {
		return domain.ErrTooManyAttempts
	}
	sess.AttemptCount++
	return nil
}

// MarkVerified moves MemberSelected → Verified with a fresh timestamp.
func (s *SessionService) MarkVerified(id string) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if sess.MemberCode == "" {
		return nil, domain.ErrNoMemberSelected
	}
	if sess.State.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now()
	sess.Verified = true
	sess.VerifiedAt = now
	sess.State = domain.StateVerified
	sess.UpdatedAt = now
	return sess, nil
}

// RequireVerified guards every protected transition beyond MemberSelected:
// the session must carry a member and a verification no older than 30
// minutes. A stale verification expires the session.
func (s *SessionService) RequireVerified(id string) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if sess.State == domain.StateExpired {
		return nil, domain.ErrSessionExpired
	}
	if sess.State.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}
	if sess.MemberCode == "" {
		return nil, domain.ErrNoMemberSelected
	}
	if !sess.Verified {
		return nil, domain.ErrNotVerified
	}
	if !sess.VerificationValid(time.Now()) {
		sess.State = domain.StateExpired
		sess.ClearIdentity()
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

// Advance moves a verified session to the given non-terminal step
// (INFO_UPDATED, BALLOT_SHOWN, SUBMITTED).
func (s *SessionService) Advance(id string, state domain.SessionState) (*domain.VotingSession, error) {
	sess, err := s.RequireVerified(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.State = state
	sess.UpdatedAt = time.Now()
	return sess, nil
}

// CompleteSubmission moves Submitted → Confirmed once the ledger write is
// durable, recording the control number and receipt token on the session.
func (s *SessionService) CompleteSubmission(id, controlNumber, receiptToken string) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}

	sess.ControlNumber = controlNumber
	sess.ReceiptToken = receiptToken
	sess.State = domain.StateConfirmed
	sess.UpdatedAt = time.Now()
	return sess, nil
}

// Abort destroys a session (logout / navigate away). Leaves no durable side
// effect unless votes were already committed.
func (s *SessionService) Abort(id string) {
	s.mu.Lock()
	delete(s.store, id)
	s.mu.Unlock()
}

// ActiveCount returns the number of live sessions (admin dashboard).
func (s *SessionService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// PurgeExpired drops idle and terminal-expired sessions. Called by the cron
// service and the cleanup loop.
func (s *SessionService) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	purged := 0
	for id, sess := range s.store {
		if now.Sub(sess.UpdatedAt) > SessionIdleTTL || sess.State == domain.StateExpired {
			delete(s.store, id)
			purged++
		}
	}
	return purged
}

// cleanupLoop periodically removes dead sessions
func (s *SessionService) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		if n := s.PurgeExpired(); n > 0 {
			log.Printf("🧹 Purged %d expired voting sessions", n)
		}
	}
}
