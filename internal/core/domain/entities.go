package domain

import "time"

// MemberSummary is the search result shown during member selection.
// It deliberately exposes no secret-knowledge fields.
type MemberSummary struct {
	ID           uint   `json:"id"`
	MemberCode   string `json:"member_code"`
	FullName     string `json:"full_name"`
	BranchNumber string `json:"branch_number"`
}

// BallotCandidate is one selectable candidate on the ballot.
type BallotCandidate struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// BallotPosition is one contest on the ballot: a position, how many
// candidates the voter may pick, and who is running.
type BallotPosition struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	VacantCount int               `json:"vacant_count"`
	Priority    int               `json:"priority"`
	Candidates  []BallotCandidate `json:"candidates"`
}

// CandidateResult is one ranked row in a position tally.
type CandidateResult struct {
	CandidateID uint       `json:"candidate_id"`
	FullName    string     `json:"full_name"`
	VoteCount   int64      `json:"vote_count"`
	LastVoteAt  *time.Time `json:"last_vote_at,omitempty"`
	Elected     bool       `json:"elected"`
	Tie         bool       `json:"tie"`
}

// PositionResult is the ranked tally for one position.
type PositionResult struct {
	PositionID  uint              `json:"position_id"`
	Title       string            `json:"title"`
	VacantCount int               `json:"vacant_count"`
	Candidates  []CandidateResult `json:"candidates"`
}

// ReceiptView is what a voter gets back when presenting a receipt token.
// It proves participation without revealing vote content.
type ReceiptView struct {
	ControlNumber string    `json:"control_number"`
	BranchNumber  string    `json:"branch_number"`
	IssuedAt      time.Time `json:"issued_at"`
	Message       string    `json:"message"`
}
