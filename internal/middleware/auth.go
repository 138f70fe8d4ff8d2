package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"onyx/internal/auth"
)

// Auth verifies the Bearer token and stores the caller's user id in the
// request context. Requests without a valid token get 401.
func Auth(verifier *auth.Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "missing Authorization header")
		}

		// fasthttp trims trailing spaces, so "Bearer " arrives as "Bearer".
		scheme, token, _ := strings.Cut(authHeader, " ")
		if scheme != "Bearer" {
			return unauthorized(c, "invalid Authorization header format, expected 'Bearer <token>'")
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return unauthorized(c, "empty bearer token")
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return unauthorized(c, "token has expired")
			}
			return unauthorized(c, "invalid token")
		}

		c.SetContext(auth.WithUserID(c.Context(), userID))
		return c.Next()
	}
}

func unauthorized(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
