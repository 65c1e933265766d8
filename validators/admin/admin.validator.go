package adminValidator

import (
	"strconv"
	"strings"

	"certificados/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionParam validates the :id route parameter as a session identifier.
func SessionParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Params("id"))
		if _, err := uuid.Parse(sessionID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid session ID!", nil)
		}
		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}

// ReissueParams validates the session and participant route parameters on the
// certificate re-issue action.
func ReissueParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Params("id"))
		if _, err := uuid.Parse(sessionID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid session ID!", nil)
		}

		participantID, err := strconv.Atoi(strings.TrimSpace(c.Params("clienteId")))
		if err != nil || participantID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid participant ID!", nil)
		}

		c.Locals("sessionID", sessionID)
		c.Locals("participantID", uint(participantID))
		return c.Next()
	}
}
