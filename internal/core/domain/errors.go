package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Session errors are always recoverable by sending the voter back to an
// earlier step, never fatal.
var (
	ErrSessionNotFound   = errors.New("voting session not found")
	ErrSessionExpired    = errors.New("voting session expired, please start over")
	ErrNoBranchSelected  = errors.New("no branch selected")
	ErrNoMemberSelected  = errors.New("no member selected")
	ErrNotVerified       = errors.New("identity not verified")
	ErrInvalidTransition = errors.New("action not allowed in current step")
)

// Identity verification errors
var (
	ErrMissingSecurityAnswer  = errors.New("must answer at least one security question")
	ErrAccountMismatch        = errors.New("account number does not match our records")
	ErrSecurityAnswerMismatch = errors.New("security answer does not match our records")
	ErrTooManyAttempts        = errors.New("too many verification attempts, please wait a minute")
	ErrNotEligible            = errors.New("member is not eligible to vote in this election")
)

// Vote ledger errors. The attempted mutation is fully rolled back whenever
// one of these is returned.
var (
	ErrAlreadyVoted              = errors.New("member has already voted in this election")
	ErrOverVoteLimit             = errors.New("selections exceed the number of vacant slots for a position")
	ErrDuplicateCandidateVote    = errors.New("duplicate vote for the same candidate")
	ErrCandidatePositionMismatch = errors.New("candidate does not belong to the submitted position")
	ErrEmptyBallot               = errors.New("ballot contains no selections")
)

// Admin errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrBranchInactive     = errors.New("branch is not active")
	ErrMemberNotFound     = errors.New("member not found")
	ErrPositionNotFound   = errors.New("position not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrReceiptNotFound    = errors.New("receipt not found")
)
