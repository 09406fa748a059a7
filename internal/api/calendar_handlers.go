// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/relaycrm/scheduling-service/internal/service"
)

// CalendarHandler serves the calendar connect flow.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// Connect handles POST /calendar/connect: it returns the provider consent
// URL for the authenticated user.
func (h *CalendarHandler) Connect(c *fiber.Ctx) error {
	url, err := h.calendar.ConnectURL(c.UserContext(), requestPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, fiber.Map{"url": url})
}

// Callback handles GET /calendar/callback, the unauthenticated provider
// redirect. The state parameter identifies the connecting user.
func (h *CalendarHandler) Callback(c *fiber.Ctx) error {
	if err := h.calendar.CompleteConnect(c.UserContext(), c.Query("state"), c.Query("code")); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, fiber.Map{"connected": true})
}

// Status handles GET /calendar/status for the authenticated user.
func (h *CalendarHandler) Status(c *fiber.Ctx) error {
	connected, err := h.calendar.ConnectionStatus(c.UserContext(), requestPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, fiber.Map{"connected": connected})
}
