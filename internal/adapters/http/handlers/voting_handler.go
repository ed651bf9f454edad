package handlers

import (
	"errors"

	"coopvote/internal/adapters/http/middleware"
	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"
	"coopvote/internal/core/services"
	"coopvote/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VotingHandler drives the voter-facing election flow: branch selection,
// member search, identity verification, ballot and submission.
type VotingHandler struct {
	sessionService *services.SessionService
	verifyService  *services.VerifyService
	ballotService  *services.BallotService
	voteService    *services.VoteService
	receiptService *services.ReceiptService
	branchRepo     repositories.BranchRepository
	memberRepo     repositories.MemberRepository
}

// NewVotingHandler creates a new voting handler
func NewVotingHandler(
	sessionService *services.SessionService,
	verifyService *services.VerifyService,
	ballotService *services.BallotService,
	voteService *services.VoteService,
	receiptService *services.ReceiptService,
	branchRepo repositories.BranchRepository,
	memberRepo repositories.MemberRepository,
) *VotingHandler {
	return &VotingHandler{
		sessionService: sessionService,
		verifyService:  verifyService,
		ballotService:  ballotService,
		voteService:    voteService,
		receiptService: receiptService,
		branchRepo:     branchRepo,
		memberRepo:     memberRepo,
	}
}

// sessionView is the state snapshot returned after each step.
type sessionView struct {
	State         domain.SessionState `json:"state"`
	BranchNumber  string              `json:"branch_number,omitempty"`
	MemberName    string              `json:"member_name,omitempty"`
	ControlNumber string              `json:"control_number,omitempty"`
	ReceiptToken  string              `json:"receipt_token,omitempty"`
}

func toSessionView(sess *domain.VotingSession) sessionView {
	return sessionView{
		State:         sess.State,
		BranchNumber:  sess.BranchNumber,
		MemberName:    sess.MemberName,
		ControlNumber: sess.ControlNumber,
		ReceiptToken:  sess.ReceiptToken,
	}
}

// ListBranches handles the public branch list
// @Summary List active branches
// @Description Get all branches open for voting
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Response
// @Router /vote/branches [get]
func (h *VotingHandler) ListBranches(c *fiber.Ctx) error {
	branches, err := h.branchRepo.ListActive(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list branches")
	}
	return response.Success(c, "Branches retrieved successfully", branches)
}

// StartSession handles session creation
// @Summary Start a voting session
// @Description Create a fresh voting session and set the session cookie
// @Tags Voting
// @Produce json
// @Success 201 {object} response.Response
// @Router /vote/session [post]
func (h *VotingHandler) StartSession(c *fiber.Ctx) error {
	sess := h.sessionService.Start()

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return response.Created(c, "Voting session started", fiber.Map{
		"session_id": sess.ID,
		"session":    toSessionView(sess),
	})
}

// GetSession handles session state lookup
// @Summary Get the current session
// @Description Snapshot the session's state so the UI can resume mid-flow
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Response
// @Router /vote/session [get]
func (h *VotingHandler) GetSession(c *fiber.Ctx) error {
	sess, err := h.sessionService.Get(middleware.SessionID(c))
	if err != nil {
		return h.mapFlowError(c, err)
	}
	return response.Success(c, "Session retrieved successfully", toSessionView(sess))
}

// SelectBranchRequest represents branch selection body
type SelectBranchRequest struct {
	BranchID uint `json:"branch_id"`
}

// SelectBranch handles branch selection
// @Summary Select a branch
// @Description Bind the session to an active branch
// @Tags Voting
// @Accept json
// @Produce json
// @Param body body SelectBranchRequest true "Branch selection"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /vote/session/branch [post]
func (h *VotingHandler) SelectBranch(c *fiber.Ctx) error {
	var req SelectBranchRequest
	if err := c.BodyParser(&req); err != nil || req.BranchID == 0 {
		return response.BadRequest(c, "Invalid branch selection")
	}

	sess, err := h.sessionService.SelectBranch(c.Context(), middleware.SessionID(c), req.BranchID)
	if err != nil {
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Branch selected", toSessionView(sess))
}

// SearchMembers handles member search within the selected branch
// @Summary Search members
// @Description Find members of the selected branch by name or member code
// @Tags Voting
// @Produce json
// @Param term query string true "Search term"
// @Success 200 {object} response.Response
// @Router /vote/members/search [get]
func (h *VotingHandler) SearchMembers(c *fiber.Ctx) error {
	term := c.Query("term")
	if len(term) < 2 {
		return response.BadRequest(c, "Search term must be at least 2 characters")
	}

	summaries, err := h.sessionService.SearchMembers(c.Context(), middleware.SessionID(c), term)
	if err != nil {
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Members retrieved successfully", summaries)
}

// SelectMemberRequest represents member selection body
type SelectMemberRequest struct {
	MemberID uint `json:"member_id"`
}

// SelectMember handles member selection
// @Summary Select a member
// @Description Bind the session to a member of the selected branch. A member
// @Description who already voted is routed to the already-voted terminal.
// @Tags Voting
// @Accept json
// @Produce json
// @Param body body SelectMemberRequest true "Member selection"
// @Success 200 {object} response.Response
// @Router /vote/session/member [post]
func (h *VotingHandler) SelectMember(c *fiber.Ctx) error {
	var req SelectMemberRequest
	if err := c.BodyParser(&req); err != nil || req.MemberID == 0 {
		return response.BadRequest(c, "Invalid member selection")
	}

	sess, err := h.sessionService.SelectMember(c.Context(), middleware.SessionID(c), req.MemberID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			return response.UnprocessableEntity(c, domain.ErrAlreadyVoted.Error())
		}
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Member selected", toSessionView(sess))
}

// VerifyRequest represents the identity challenge body
type VerifyRequest struct {
	Last4      string `json:"last4"`
	MiddleName string `json:"middle_name"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
}

// VerifyIdentity handles the identity challenge
// @Summary Verify identity
// @Description Check the last 4 digits of the share account plus at least one
// @Description security answer (middle name or birth date)
// @Tags Voting
// @Accept json
// @Produce json
// @Param body body VerifyRequest true "Challenge answers"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /vote/session/verify [post]
func (h *VotingHandler) VerifyIdentity(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sess, err := h.verifyService.Verify(c.Context(), middleware.SessionID(c), services.VerifyInput{
		Last4:      req.Last4,
		MiddleName: req.MiddleName,
		BirthDate:  req.BirthDate,
	})
	if err != nil {
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Identity verified", toSessionView(sess))
}

// UpdateInfoRequest represents the member contact update body
type UpdateInfoRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// UpdateMemberInfo handles the post-verification contact update step
// @Summary Update member contact info
// @Description Record the verified member's current phone and email
// @Tags Voting
// @Accept json
// @Produce json
// @Param body body UpdateInfoRequest true "Contact info"
// @Success 200 {object} response.Response
// @Router /vote/session/member-info [put]
func (h *VotingHandler) UpdateMemberInfo(c *fiber.Ctx) error {
	var req UpdateInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sess, err := h.sessionService.RequireVerified(middleware.SessionID(c))
	if err != nil {
		return h.mapFlowError(c, err)
	}

	if err := h.memberRepo.UpdateContact(c.Context(), sess.MemberCode, req.Phone, req.Email); err != nil {
		return response.InternalServerError(c, "Failed to update member info")
	}
	// Walking up to vote onsite registers the member as an onsite channel user
	if err := h.memberRepo.SetRegChannel(c.Context(), sess.MemberCode, models.RegChannelOnsite); err != nil {
		return response.InternalServerError(c, "Failed to update member info")
	}

	sess, err = h.sessionService.Advance(middleware.SessionID(c), domain.StateInfoUpdated)
	if err != nil {
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Member info updated", toSessionView(sess))
}

// GetBallot handles ballot assembly
// @Summary Get the ballot
// @Description List open positions with vacancy counts and active candidates
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Response
// @Router /vote/ballot [get]
func (h *VotingHandler) GetBallot(c *fiber.Ctx) error {
	if _, err := h.sessionService.RequireVerified(middleware.SessionID(c)); err != nil {
		return h.mapFlowError(c, err)
	}

	ballot, err := h.ballotService.Assemble(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to assemble ballot")
	}

	sess, err := h.sessionService.Advance(middleware.SessionID(c), domain.StateBallotShown)
	if err != nil {
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Ballot retrieved successfully", fiber.Map{
		"session": toSessionView(sess),
		"ballot":  ballot,
	})
}

// SubmitBallotRequest maps position IDs to selected candidate IDs
type SubmitBallotRequest struct {
	Selections map[uint][]uint `json:"selections"`
}

// SubmitBallot handles ballot submission
// @Summary Submit votes
// @Description Commit the member's full ballot atomically and issue a receipt
// @Tags Voting
// @Accept json
// @Produce json
// @Param body body SubmitBallotRequest true "Selections"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /vote/ballot [post]
func (h *VotingHandler) SubmitBallot(c *fiber.Ctx) error {
	var req SubmitBallotRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sess, err := h.sessionService.RequireVerified(middleware.SessionID(c))
	if err != nil {
		return h.mapFlowError(c, err)
	}

	result, err := h.voteService.Submit(c.Context(), sess.BranchNumber, sess.MemberCode, req.Selections)
	if err != nil {
		// Ledger rejection: the session stays on the ballot step and the
		// specific reason is surfaced.
		return h.mapFlowError(c, err)
	}

	if _, err := h.sessionService.Advance(middleware.SessionID(c), domain.StateSubmitted); err != nil {
		return h.mapFlowError(c, err)
	}

	receipt, err := h.receiptService.Issue(c.Context(), result.ControlNumber, sess.BranchNumber, sess.MemberCode)
	if err != nil {
		return response.InternalServerError(c, "Vote recorded but receipt issuance failed")
	}

	sess, err = h.sessionService.CompleteSubmission(middleware.SessionID(c), result.ControlNumber, receipt.Token)
	if err != nil {
		return h.mapFlowError(c, err)
	}

	return response.Success(c, "Votes recorded successfully", fiber.Map{
		"session":        toSessionView(sess),
		"control_number": result.ControlNumber,
		"vote_count":     result.VoteCount,
		"receipt_token":  receipt.Token,
	})
}

// GetReceipt handles receipt retrieval by token
// @Summary Get a participation receipt
// @Description Resolve a receipt token into a confirmation view; never
// @Description reveals vote content
// @Tags Voting
// @Produce json
// @Param token path string true "Receipt token"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /vote/receipt/{token} [get]
func (h *VotingHandler) GetReceipt(c *fiber.Ctx) error {
	view, err := h.receiptService.Get(c.Context(), c.Params("token"))
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return response.NotFound(c, "Receipt not found")
		}
		return response.InternalServerError(c, "Failed to retrieve receipt")
	}
	return response.Success(c, "Receipt retrieved successfully", view)
}

// Logout handles session abandonment
// @Summary Abandon the voting session
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Response
// @Router /vote/session [delete]
func (h *VotingHandler) Logout(c *fiber.Ctx) error {
	h.sessionService.Abort(middleware.SessionID(c))
	c.ClearCookie(middleware.SessionCookie)
	return response.Success(c, "Session ended", nil)
}

// mapFlowError translates domain errors into HTTP response classes:
// session errors redirect to an earlier step, validation errors are 400s,
// business-rule rejections are 422s with the specific reason.
func (h *VotingHandler) mapFlowError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return response.SessionError(c, err.Error(), "branch-selection")
	case errors.Is(err, domain.ErrSessionExpired):
		return response.SessionError(c, err.Error(), "branch-selection")
	case errors.Is(err, domain.ErrNoBranchSelected):
		return response.SessionError(c, err.Error(), "branch-selection")
	case errors.Is(err, domain.ErrNoMemberSelected):
		return response.SessionError(c, err.Error(), "member-selection")
	case errors.Is(err, domain.ErrNotVerified):
		return response.SessionError(c, err.Error(), "verification")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingSecurityAnswer),
		errors.Is(err, domain.ErrEmptyBallot):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrTooManyAttempts):
		return response.TooManyRequests(c, err.Error())
	case errors.Is(err, domain.ErrAccountMismatch),
		errors.Is(err, domain.ErrSecurityAnswerMismatch),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrOverVoteLimit),
		errors.Is(err, domain.ErrDuplicateCandidateVote),
		errors.Is(err, domain.ErrCandidatePositionMismatch):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrBranchNotFound),
		errors.Is(err, domain.ErrBranchInactive),
		errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrCandidateNotFound):
		return response.NotFound(c, err.Error())
	}
	return response.InternalServerError(c, "Something went wrong")
}
