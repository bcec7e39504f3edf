package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursline/kursline/internal/app/session"
)

// Auth validates a bearer session token when one is present and attaches the
// resulting session to the request. Requests without a token continue
// anonymously; endpoints that require identity check SessionFrom themselves.
func Auth(signer *session.TokenSigner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Next()
		}

		token := strings.TrimPrefix(header, "Bearer ")
		sess, err := signer.Validate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid session token",
			})
		}

		c.Locals("session", sess)
		return c.Next()
	}
}

// SessionFrom returns the authenticated session, nil for anonymous requests.
func SessionFrom(c *fiber.Ctx) *session.Session {
	if s, ok := c.Locals("session").(*session.Session); ok {
		return s
	}
	return nil
}
