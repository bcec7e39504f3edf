package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	VisitorCookie    = "kl_visitor"
	visitorCookieAge = 365 * 24 * time.Hour
)

// VisitorID assigns each browser a stable visitor id cookie. The id scopes
// attribution dedupe keys the same way per-device storage would.
func VisitorID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		vid := c.Cookies(VisitorCookie)
		if vid == "" {
			vid = uuid.New().String()
			c.Cookie(&fiber.Cookie{
				Name:     VisitorCookie,
				Value:    vid,
				Expires:  time.Now().Add(visitorCookieAge),
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}
		c.Locals("visitor_id", vid)
		return c.Next()
	}
}

// Visitor returns the visitor id assigned by VisitorID, empty if the
// middleware did not run.
func Visitor(c *fiber.Ctx) string {
	if v, ok := c.Locals("visitor_id").(string); ok {
		return v
	}
	return ""
}
