package handlers

import (
	"errors"

	"coopvote/internal/core/domain"
	"coopvote/internal/core/services"
	"coopvote/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ResultsHandler handles tally and turnout endpoints for the admin dashboard
type ResultsHandler struct {
	resultsService *services.ResultsService
	sessionService *services.SessionService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(resultsService *services.ResultsService, sessionService *services.SessionService) *ResultsHandler {
	return &ResultsHandler{
		resultsService: resultsService,
		sessionService: sessionService,
	}
}

// GetResults handles the full election tally
// @Summary Election results
// @Description Tally every active position, ranked with elected and tie flags
// @Tags Results
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/results [get]
func (h *ResultsHandler) GetResults(c *fiber.Ctx) error {
	results, err := h.resultsService.TallyAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to tally results")
	}
	return response.Success(c, "Results retrieved successfully", results)
}

// GetPositionResults handles a single-position tally
// @Summary Position results
// @Tags Results
// @Security BearerAuth
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/results/{id} [get]
func (h *ResultsHandler) GetPositionResults(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid position ID")
	}

	result, err := h.resultsService.TallyPosition(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			return response.NotFound(c, "Position not found")
		}
		return response.InternalServerError(c, "Failed to tally position")
	}
	return response.Success(c, "Position results retrieved successfully", result)
}

// GetTurnout handles turnout statistics
// @Summary Turnout statistics
// @Description Total votes cast, distinct ballots and live session count
// @Tags Results
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/turnout [get]
func (h *ResultsHandler) GetTurnout(c *fiber.Ctx) error {
	turnout, err := h.resultsService.GetTurnout(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute turnout")
	}
	return response.Success(c, "Turnout retrieved successfully", fiber.Map{
		"total_votes":     turnout.TotalVotes,
		"total_ballots":   turnout.TotalBallots,
		"active_sessions": h.sessionService.ActiveCount(),
	})
}
