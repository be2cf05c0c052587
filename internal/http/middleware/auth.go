// Package middleware holds the request middleware shared by the API routes.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"log/slog"
)

const identityLocalsKey = "identity"

// Claims is the verified identity carried by a bearer token. Tokens are
// issued by the external auth service; this service only verifies them.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// unauthorized answers 401 with a uniform body. The underlying cause
// (missing header, bad signature, expiry) is never exposed to the caller.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
		"code":  "unauthorized",
	})
}

// RequireAuth validates the Authorization bearer token on every request and
// stores the resolved identity in locals for handlers to pick up explicitly.
func RequireAuth(secret string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c)
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Debug("Rejected bearer token", slog.Any("error", err))
			return unauthorized(c)
		}

		c.Locals(identityLocalsKey, claims)
		return c.Next()
	}
}

// IdentityFromLocals returns the claims stored by RequireAuth, or nil on
// unauthenticated routes.
func IdentityFromLocals(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(identityLocalsKey).(*Claims)
	return claims
}
