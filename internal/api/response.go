// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package api exposes the scheduling service over HTTP. Responses are
// `{"data": ...}` on success and `{"error": "..."}` with a 4xx/5xx status on
// failure.
package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/relaycrm/scheduling-service/internal/domain"
)

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
}

// statusOf maps domain error categories onto HTTP status codes.
func statusOf(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
