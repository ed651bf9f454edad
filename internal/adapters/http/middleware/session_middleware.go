package middleware

import (
	"coopvote/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the voting session ID.
const SessionCookie = "voting_session"

// RequireSession extracts the voting session ID from the cookie (or the
// X-Voting-Session header for non-browser clients) and stores it in locals.
// Handlers resolve the ID against the session store; a missing cookie means
// the voter must restart from branch selection.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookie)
		if sessionID == "" {
			sessionID = c.Get("X-Voting-Session")
		}
		if sessionID == "" {
			return response.SessionError(c, "No voting session, please start over", "branch-selection")
		}

		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}

// SessionID returns the voting session ID set by RequireSession.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals("sessionID").(string)
	return id
}
