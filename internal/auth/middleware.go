package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/randoapp/rando-service/internal/model"
)

const ownerLocal = "owner"

// Middleware resolves the authenticated owner from the bearer token and
// stores it in locals for the handlers.
func Middleware(verifier *JWTVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		email, err := verifier.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		ip := c.Get("X-Forwarded-For")
		if ip != "" {
			// first hop is the client
			if i := strings.IndexByte(ip, ','); i >= 0 {
				ip = ip[:i]
			}
			ip = strings.TrimSpace(ip)
		} else {
			ip = c.IP()
		}
		c.Locals(ownerLocal, model.Owner{Email: email, IP: ip})
		return c.Next()
	}
}

// OwnerFromCtx returns the owner resolved by Middleware.
func OwnerFromCtx(c *fiber.Ctx) (model.Owner, bool) {
	owner, ok := c.Locals(ownerLocal).(model.Owner)
	return owner, ok
}
