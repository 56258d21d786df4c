// Package http exposes the triage engine and the stored views over fiber.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

// userIDHeader carries the caller identity. Authentication itself happens
// upstream; this service only scopes data by the forwarded ID.
const userIDHeader = "X-User-ID"

// GetUserID extracts the caller's user ID from the request. The middleware
// stores a parsed value in locals; the raw header is the fallback so handlers
// stay testable without the middleware chain.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	if v, ok := c.Locals("user_id").(uuid.UUID); ok {
		return v, nil
	}
	raw := c.Get(userIDHeader)
	if raw == "" {
		raw = c.Query("user_id")
	}
	if raw == "" {
		return uuid.Nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}
