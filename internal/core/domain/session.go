package domain

import "time"

// SessionState represents a voter's progress through the election flow.
type SessionState string

const (
	StateStart          SessionState = "START"
	StateBranchSelected SessionState = "BRANCH_SELECTED"
	StateMemberSelected SessionState = "MEMBER_SELECTED"
	StateVerified       SessionState = "VERIFIED"
	StateInfoUpdated    SessionState = "INFO_UPDATED"
	StateBallotShown    SessionState = "BALLOT_SHOWN"
	StateSubmitted      SessionState = "SUBMITTED"
	StateConfirmed      SessionState = "CONFIRMED"
	StateAlreadyVoted   SessionState = "ALREADY_VOTED"
	StateExpired        SessionState = "EXPIRED"
	StateAborted        SessionState = "ABORTED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s SessionState) IsTerminal() bool {
	switch s {
	case StateConfirmed, StateAlreadyVoted, StateExpired, StateAborted:
		return true
	}
	return false
}

// VerifiedTTL is how long an identity verification stays valid.
const VerifiedTTL = 30 * time.Minute

// VotingSession tracks one voter's walk through the election flow.
// Sessions are transient: they live in memory only and are destroyed on
// logout, expiry or terminal submission.
type VotingSession struct {
	ID           string
	State        SessionState
	BranchID     uint
	BranchNumber string
	MemberID     uint
	MemberCode   string
	MemberName   string
	Verified     bool
	VerifiedAt   time.Time

	// Verification attempt window (brute-force guard on the identity challenge)
	AttemptCount   int
	AttemptWindow  time.Time
	ControlNumber  string
	ReceiptToken   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VerificationValid reports whether the session carries a fresh verification.
// Staleness is evaluated lazily on each protected request.
func (s *VotingSession) VerificationValid(now time.Time) bool {
	return s.Verified && now.Sub(s.VerifiedAt) <= VerifiedTTL
}

// ClearIdentity wipes all member-bound fields. Called whenever the voter
// changes branch or member so stale verification can never carry over.
func (s *VotingSession) ClearIdentity() {
	s.MemberID = 0
	s.MemberCode = ""
	s.MemberName = ""
	s.Verified = false
	s.VerifiedAt = time.Time{}
	s.AttemptCount = 0
	s.AttemptWindow = time.Time{}
	s.ControlNumber = ""
	s.ReceiptToken = ""
}
