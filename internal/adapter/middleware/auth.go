package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/the-inv-riya/pixify/internal/core/security"
)

// Protected validates the token header and stores the caller's user id
// in locals for the handler. Failures never touch the stores.
func Protected(tokens *security.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("token")
		if token == "" {
			return c.JSON(fiber.Map{"success": false, "message": "Not Authorized. Login Again"})
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			return c.JSON(fiber.Map{"success": false, "message": "Not Authorized. Login Again"})
		}

		c.Locals("userId", userID)
		return c.Next()
	}
}
