// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/relaycrm/scheduling-service/internal/infrastructure/auth"
	"github.com/relaycrm/scheduling-service/internal/logging"
	"github.com/relaycrm/scheduling-service/pkg/constants"
)

const principalLocalKey = "principal"

// requestIDMiddleware makes every request traceable: the inbound request ID
// is reused when present, minted otherwise, stored on the user context for
// log correlation and echoed back on the response.
func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(constants.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(c.UserContext(), constants.RequestIDContextID, requestID)
		ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))
		c.SetUserContext(ctx)

		c.Set(constants.RequestIDHeader, requestID)
		return c.Next()
	}
}

// requestLoggerMiddleware logs one line per request after completion.
func requestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		slog.InfoContext(c.UserContext(), "handled request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// authMiddleware validates the bearer token and stores the authenticated
// principal in both the Fiber locals and the user context. Unauthenticated
// callers get a 401.
func authMiddleware(jwtAuth auth.IJWTAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		principal, err := jwtAuth.ParsePrincipal(ctx, c.Get(constants.AuthorizationHeader), slog.Default())
		if err != nil {
			slog.DebugContext(ctx, "rejecting unauthenticated request", logging.ErrKey, err, "path", c.Path())
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		ctx = context.WithValue(ctx, constants.PrincipalContextID, principal)
		ctx = logging.AppendCtx(ctx, slog.String("principal", principal))
		c.SetUserContext(ctx)
		c.Locals(principalLocalKey, principal)
		return c.Next()
	}
}

// requestPrincipal returns the authenticated principal stored by
// authMiddleware.
func requestPrincipal(c *fiber.Ctx) string {
	principal, _ := c.Locals(principalLocalKey).(string)
	return principal
}
