package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"clickpulse/internal/events"
	"clickpulse/internal/users"

	"log/slog"
)

// Stable machine-readable error codes returned alongside messages.
const (
	codeInvalidArgument = "invalid_argument"
	codeNotFound        = "not_found"
	codeUnauthorized    = "unauthorized"
	codeDependency      = "dependency_error"
	codeQueryTimeout    = "query_timeout"
)

func errorBody(message, code string) fiber.Map {
	return fiber.Map{"error": message, "code": code}
}

func badRequest(ctx *cartridge.Context, message string) error {
	return ctx.Status(http.StatusBadRequest).JSON(errorBody(message, codeInvalidArgument))
}

// handleError maps a domain error to its response. Aggregators propagate
// store errors untouched, so the mapping lives entirely at this boundary.
// Timeouts answer 504 with a retryable code; everything unrecognized is a
// dependency failure.
func handleError(ctx *cartridge.Context, err error) error {
	switch {
	case events.IsValidationError(err):
		return ctx.Status(http.StatusBadRequest).JSON(errorBody(err.Error(), codeInvalidArgument))
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(http.StatusNotFound).JSON(errorBody(err.Error(), codeNotFound))
	case errors.Is(err, context.DeadlineExceeded):
		ctx.Logger.Warn("Aggregation query timed out", slog.String("path", ctx.Path()))
		return ctx.Status(http.StatusGatewayTimeout).JSON(errorBody("query timed out, retry later", codeQueryTimeout))
	default:
		ctx.Logger.Error("Request failed", slog.String("path", ctx.Path()), slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(errorBody("internal error", codeDependency))
	}
}
