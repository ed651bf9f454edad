package handlers

import (
	"errors"
	"strconv"
	"time"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"
	"coopvote/internal/pkg/pagination"
	"coopvote/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles CRUD for election reference data: branches, members,
// positions and candidates. The UI that renders these is out of scope; this
// is the JSON surface the admin panel talks to.
type AdminHandler struct {
	branchRepo   repositories.BranchRepository
	memberRepo   repositories.MemberRepository
	positionRepo repositories.PositionRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	branchRepo repositories.BranchRepository,
	memberRepo repositories.MemberRepository,
	positionRepo repositories.PositionRepository,
) *AdminHandler {
	return &AdminHandler{
		branchRepo:   branchRepo,
		memberRepo:   memberRepo,
		positionRepo: positionRepo,
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}

// ============================================================
// Branches
// ============================================================

// BranchRequest represents branch create/update body
type BranchRequest struct {
	BranchNumber string `json:"branch_number"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	IsActive     *bool  `json:"is_active"`
}

// ListBranches handles listing branches with pagination
// @Summary List branches
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/branches [get]
func (h *AdminHandler) ListBranches(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	branches, total, err := h.branchRepo.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list branches")
	}
	return response.Success(c, "Branches retrieved successfully", pagination.NewResponse(branches, params, total))
}

// CreateBranch handles branch creation
// @Summary Create branch
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body BranchRequest true "Branch"
// @Success 201 {object} response.Response
// @Router /admin/branches [post]
func (h *AdminHandler) CreateBranch(c *fiber.Ctx) error {
	var req BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BranchNumber == "" || req.Name == "" {
		return response.BadRequest(c, "branch_number and name are required")
	}

	branch := &models.Branch{
		BranchNumber: req.BranchNumber,
		Name:         req.Name,
		Address:      req.Address,
		IsActive:     true,
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := h.branchRepo.Create(c.Context(), branch); err != nil {
		return response.Conflict(c, "Branch number already exists")
	}
	return response.Created(c, "Branch created successfully", branch)
}

// UpdateBranch handles branch update
// @Summary Update branch
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Branch ID"
// @Param body body BranchRequest true "Branch"
// @Success 200 {object} response.Response
// @Router /admin/branches/{id} [put]
func (h *AdminHandler) UpdateBranch(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	branch, err := h.branchRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Branch not found")
	}

	var req BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name != "" {
		branch.Name = req.Name
	}
	if req.Address != "" {
		branch.Address = req.Address
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := h.branchRepo.Update(c.Context(), branch); err != nil {
		return response.InternalServerError(c, "Failed to update branch")
	}
	return response.Success(c, "Branch updated successfully", branch)
}

// DeleteBranch handles branch deletion
// @Summary Delete branch
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Router /admin/branches/{id} [delete]
func (h *AdminHandler) DeleteBranch(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}
	if err := h.branchRepo.Delete(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete branch")
	}
	return response.Success(c, "Branch deleted successfully", nil)
}

// ============================================================
// Members
// ============================================================

// MemberRequest represents member create/update body
type MemberRequest struct {
	MemberCode     string   `json:"member_code"`
	BranchNumber   string   `json:"branch_number"`
	FirstName      string   `json:"first_name"`
	MiddleName     string   `json:"middle_name"`
	LastName       string   `json:"last_name"`
	BirthDate      string   `json:"birth_date"` // YYYY-MM-DD
	ShareAccountNo string   `json:"share_account_no"`
	ShareAmount    *float64 `json:"share_amount"`
	IsMIGS         *bool    `json:"is_migs"`
	RegChannel     string   `json:"reg_channel"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	IsActive       *bool    `json:"is_active"`
}

// ListMembers handles listing members with pagination
// @Summary List members
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/members [get]
func (h *AdminHandler) ListMembers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	members, total, err := h.memberRepo.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}
	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(members, params, total))
}

// CreateMember handles member creation
// @Summary Create member
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body MemberRequest true "Member"
// @Success 201 {object} response.Response
// @Router /admin/members [post]
func (h *AdminHandler) CreateMember(c *fiber.Ctx) error {
	var req MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.MemberCode == "" || req.BranchNumber == "" || req.FirstName == "" || req.LastName == "" {
		return response.BadRequest(c, "member_code, branch_number, first_name and last_name are required")
	}

	if _, err := h.branchRepo.GetByNumber(c.Context(), req.BranchNumber); err != nil {
		return response.NotFound(c, "Branch not found")
	}

	member := &models.Member{
		MemberCode:     req.MemberCode,
		BranchNumber:   req.BranchNumber,
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		LastName:       req.LastName,
		ShareAccountNo: req.ShareAccountNo,
		RegChannel:     models.RegChannelNotRegistered,
		Phone:          req.Phone,
		Email:          req.Email,
		IsActive:       true,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return response.BadRequest(c, "birth_date must be YYYY-MM-DD")
		}
		member.BirthDate = birthDate
	}
	if req.ShareAmount != nil {
		member.ShareAmount = *req.ShareAmount
	}
	if req.IsMIGS != nil {
		member.IsMIGS = *req.IsMIGS
	}
	if req.RegChannel != "" {
		member.RegChannel = req.RegChannel
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := h.memberRepo.Create(c.Context(), member); err != nil {
		return response.Conflict(c, "Member code already exists")
	}
	return response.Created(c, "Member created successfully", member)
}

// UpdateMember handles member update
// @Summary Update member
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body MemberRequest true "Member"
// @Success 200 {object} response.Response
// @Router /admin/members/{id} [put]
func (h *AdminHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Member not found")
	}

	var req MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.FirstName != "" {
		member.FirstName = req.FirstName
	}
	if req.MiddleName != "" {
		member.MiddleName = req.MiddleName
	}
	if req.LastName != "" {
		member.LastName = req.LastName
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return response.BadRequest(c, "birth_date must be YYYY-MM-DD")
		}
		member.BirthDate = birthDate
	}
	if req.ShareAccountNo != "" {
		member.ShareAccountNo = req.ShareAccountNo
	}
	if req.ShareAmount != nil {
		member.ShareAmount = *req.ShareAmount
	}
	if req.IsMIGS != nil {
		member.IsMIGS = *req.IsMIGS
	}
	if req.RegChannel != "" {
		member.RegChannel = req.RegChannel
	}
	if req.Phone != "" {
		member.Phone = req.Phone
	}
	if req.Email != "" {
		member.Email = req.Email
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := h.memberRepo.Update(c.Context(), member); err != nil {
		return response.InternalServerError(c, "Failed to update member")
	}
	return response.Success(c, "Member updated successfully", member)
}

// DeleteMember handles member deletion
// @Summary Delete member
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Router /admin/members/{id} [delete]
func (h *AdminHandler) DeleteMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}
	if err := h.memberRepo.Delete(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete member")
	}
	return response.Success(c, "Member deleted successfully", nil)
}

// ============================================================
// Positions
// ============================================================

// PositionRequest represents position create/update body
type PositionRequest struct {
	Title       string `json:"title"`
	VacantCount *int   `json:"vacant_count"`
	Priority    *int   `json:"priority"`
	IsActive    *bool  `json:"is_active"`
}

// ListPositions handles listing positions with pagination
// @Summary List positions
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/positions [get]
func (h *AdminHandler) ListPositions(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	positions, total, err := h.positionRepo.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list positions")
	}
	return response.Success(c, "Positions retrieved successfully", pagination.NewResponse(positions, params, total))
}

// CreatePosition handles position creation
// @Summary Create position
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body PositionRequest true "Position"
// @Success 201 {object} response.Response
// @Router /admin/positions [post]
func (h *AdminHandler) CreatePosition(c *fiber.Ctx) error {
	var req PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return response.BadRequest(c, "title is required")
	}

	position := &models.Position{
		Title:       req.Title,
		VacantCount: 1,
		IsActive:    true,
	}
	if req.VacantCount != nil {
		if *req.VacantCount < 0 {
			return response.BadRequest(c, "vacant_count must be >= 0")
		}
		position.VacantCount = *req.VacantCount
	}
	if req.Priority != nil {
		position.Priority = *req.Priority
	}
	if req.IsActive != nil {
		position.IsActive = *req.IsActive
	}

	if err := h.positionRepo.Create(c.Context(), position); err != nil {
		return response.InternalServerError(c, "Failed to create position")
	}
	return response.Created(c, "Position created successfully", position)
}

// UpdatePosition handles position update
// @Summary Update position
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Position ID"
// @Param body body PositionRequest true "Position"
// @Success 200 {object} response.Response
// @Router /admin/positions/{id} [put]
func (h *AdminHandler) UpdatePosition(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid position ID")
	}

	position, err := h.positionRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Position not found")
	}

	var req PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Title != "" {
		position.Title = req.Title
	}
	if req.VacantCount != nil {
		if *req.VacantCount < 0 {
			return response.BadRequest(c, "vacant_count must be >= 0")
		}
		position.VacantCount = *req.VacantCount
	}
	if req.Priority != nil {
		position.Priority = *req.Priority
	}
	if req.IsActive != nil {
		position.IsActive = *req.IsActive
	}

	if err := h.positionRepo.Update(c.Context(), position); err != nil {
		return response.InternalServerError(c, "Failed to update position")
	}
	return response.Success(c, "Position updated successfully", position)
}

// DeletePosition handles position deletion
// @Summary Delete position
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} response.Response
// @Router /admin/positions/{id} [delete]
func (h *AdminHandler) DeletePosition(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid position ID")
	}
	if err := h.positionRepo.Delete(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete position")
	}
	return response.Success(c, "Position deleted successfully", nil)
}

// ============================================================
// Candidates
// ============================================================

// CandidateRequest represents candidate create/update body
type CandidateRequest struct {
	PositionID uint   `json:"position_id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Bio        string `json:"bio"`
	ImageURL   string `json:"image_url"`
	IsActive   *bool  `json:"is_active"`
}

// CreateCandidate handles candidate creation
// @Summary Create candidate
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CandidateRequest true "Candidate"
// @Success 201 {object} response.Response
// @Router /admin/candidates [post]
func (h *AdminHandler) CreateCandidate(c *fiber.Ctx) error {
	var req CandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PositionID == 0 || req.FirstName == "" || req.LastName == "" {
		return response.BadRequest(c, "position_id, first_name and last_name are required")
	}

	if _, err := h.positionRepo.GetByID(c.Context(), req.PositionID); err != nil {
		return response.NotFound(c, "Position not found")
	}

	candidate := &models.Candidate{
		PositionID: req.PositionID,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Bio:        req.Bio,
		ImageURL:   req.ImageURL,
		IsActive:   true,
	}
	if req.IsActive != nil {
		candidate.IsActive = *req.IsActive
	}

	if err := h.positionRepo.CreateCandidate(c.Context(), candidate); err != nil {
		return response.InternalServerError(c, "Failed to create candidate")
	}
	return response.Created(c, "Candidate created successfully", candidate)
}

// UpdateCandidate handles candidate update
// @Summary Update candidate
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Candidate ID"
// @Param body body CandidateRequest true "Candidate"
// @Success 200 {object} response.Response
// @Router /admin/candidates/{id} [put]
func (h *AdminHandler) UpdateCandidate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid candidate ID")
	}

	candidate, err := h.positionRepo.GetCandidateByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			return response.NotFound(c, "Candidate not found")
		}
		return response.InternalServerError(c, "Failed to get candidate")
	}

	var req CandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PositionID != 0 && req.PositionID != candidate.PositionID {
		if _, err := h.positionRepo.GetByID(c.Context(), req.PositionID); err != nil {
			return response.NotFound(c, "Position not found")
		}
		candidate.PositionID = req.PositionID
	}
	if req.FirstName != "" {
		candidate.FirstName = req.FirstName
	}
	if req.MiddleName != "" {
		candidate.MiddleName = req.MiddleName
	}
	if req.LastName != "" {
		candidate.LastName = req.LastName
	}
	if req.Bio != "" {
		candidate.Bio = req.Bio
	}
	if req.ImageURL != "" {
		candidate.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		candidate.IsActive = *req.IsActive
	}

	candidate.Position = nil
	if err := h.positionRepo.UpdateCandidate(c.Context(), candidate); err != nil {
		return response.InternalServerError(c, "Failed to update candidate")
	}
	return response.Success(c, "Candidate updated successfully", candidate)
}

// DeleteCandidate handles candidate deletion
// @Summary Delete candidate
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Candidate ID"
// @Success 200 {object} response.Response
// @Router /admin/candidates/{id} [delete]
func (h *AdminHandler) DeleteCandidate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid candidate ID")
	}
	if err := h.positionRepo.DeleteCandidate(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete candidate")
	}
	return response.Success(c, "Candidate deleted successfully", nil)
}
