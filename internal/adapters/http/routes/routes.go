package routes

import (
	"time"

	"coopvote/internal/adapters/http/handlers"
	"coopvote/internal/adapters/http/middleware"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/config"
	"coopvote/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and wires repositories,
// services and handlers together. Returns the session service so main can
// hand it to the cron scheduler.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) (*services.SessionService, *services.ResultsService) {
	// Initialize repositories
	branchRepo := repositories.NewBranchRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	positionRepo := repositories.NewPositionRepository(db)
	voteRepo := repositories.NewVoteRepository(db)
	receiptRepo := repositories.NewReceiptRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Initialize services
	sessionService := services.NewSessionService(branchRepo, memberRepo, voteRepo)
	verifyService := services.NewVerifyService(sessionService, memberRepo, cfg.Election.MinShareAmount)
	ballotService := services.NewBallotService(positionRepo)
	voteService := services.NewVoteService(voteRepo, positionRepo)
	receiptService := services.NewReceiptService(receiptRepo, voteRepo)
	resultsService := services.NewResultsService(voteRepo, positionRepo)
	authService := services.NewAuthService(userRepo, cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	votingHandler := handlers.NewVotingHandler(
		sessionService,
		verifyService,
		ballotService,
		voteService,
		receiptService,
		branchRepo,
		memberRepo,
	)
	adminHandler := handlers.NewAdminHandler(branchRepo, memberRepo, positionRepo)
	resultsHandler := handlers.NewResultsHandler(resultsService, sessionService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)

	// Voting flow routes (public, session-cookie scoped)
	voteRoutes := apiV1.Group("/vote")
	setupVoteRoutes(voteRoutes, votingHandler)

	// Admin routes (JWT protected)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	setupAdminRoutes(adminRoutes, adminHandler, resultsHandler)

	return sessionService, resultsService
}

// setupVoteRoutes configures the voter-facing flow. Everything past session
// start requires the voting session cookie; state checks live in the
// services, the routes only enforce that a session is attached.
func setupVoteRoutes(router fiber.Router, handler *handlers.VotingHandler) {
	// Branch list is public reference data and safe to cache briefly
	router.Get("/branches", middleware.PublicCache(5*time.Minute), handler.ListBranches)

	// Session bootstrap
	router.Post("/session", handler.StartSession)

	// Session-scoped flow
	flow := router.Group("", middleware.RequireSession(), middleware.NoCacheHeaders())
	flow.Get("/session", handler.GetSession)
	flow.Delete("/session", handler.Logout)
	flow.Post("/session/branch", handler.SelectBranch)
	flow.Get("/members/search", handler.SearchMembers)
	flow.Post("/session/member", handler.SelectMember)
	flow.Post("/session/verify", middleware.VerifyRateLimiter(), handler.VerifyIdentity)
	flow.Put("/session/member-info", handler.UpdateMemberInfo)
	flow.Get("/ballot", handler.GetBallot)
	flow.Post("/ballot", middleware.SubmitRateLimiter(), handler.SubmitBallot)

	// Receipt lookup is by opaque token, no session required
	router.Get("/receipt/:token", handler.GetReceipt)
}

// setupAdminRoutes configures election administration routes
func setupAdminRoutes(router fiber.Router, adminHandler *handlers.AdminHandler, resultsHandler *handlers.ResultsHandler) {
	// Results & turnout (Officer/Admin)
	results := router.Group("", middleware.OfficerOrAdmin())
	results.Get("/results", resultsHandler.GetResults)
	results.Get("/results/:id", resultsHandler.GetPositionResults)
	results.Get("/turnout", resultsHandler.GetTurnout)

	// Reference data CRUD (Admin only)
	master := router.Group("", middleware.AdminOnly())

	master.Get("/branches", adminHandler.ListBranches)
	master.Post("/branches", adminHandler.CreateBranch)
	master.Put("/branches/:id", adminHandler.UpdateBranch)
	master.Delete("/branches/:id", adminHandler.DeleteBranch)

	master.Get("/members", adminHandler.ListMembers)
	master.Post("/members", adminHandler.CreateMember)
	master.Put("/members/:id", adminHandler.UpdateMember)
	master.Delete("/members/:id", adminHandler.DeleteMember)

	master.Get("/positions", adminHandler.ListPositions)
	master.Post("/positions", adminHandler.CreatePosition)
	master.Put("/positions/:id", adminHandler.UpdatePosition)
	master.Delete("/positions/:id", adminHandler.DeletePosition)

	master.Post("/candidates", adminHandler.CreateCandidate)
	master.Put("/candidates/:id", adminHandler.UpdateCandidate)
	master.Delete("/candidates/:id", adminHandler.DeleteCandidate)
}
