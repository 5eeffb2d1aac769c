package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// CommissionerAuthMiddleware guards the commissioner routes with a shared
// bearer token. EventSource clients cannot set headers, so a `token` query
// parameter is accepted too. An empty expected token disables the check.
func CommissionerAuthMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		log.Warn().Str("component", "auth").Msg("COMMISSIONER_TOKEN is not set, commissioner routes are open")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			log.Debug().Str("component", "auth").Str("path", c.Path()).Msg("missing commissioner token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "commissioner token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Warn().Str("component", "auth").Str("path", c.Path()).Str("ip", c.IP()).Msg("invalid commissioner token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid commissioner token",
			})
		}
		return c.Next()
	}
}

// bearerToken accepts "Bearer <token>" or a raw token value.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}
