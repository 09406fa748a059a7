// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/relaycrm/scheduling-service/internal/infrastructure/auth"
	"github.com/relaycrm/scheduling-service/internal/service"
)

// ReadinessChecker reports whether a service has all its collaborators
// wired.
type ReadinessChecker interface {
	ServiceReady() bool
}

// NewServer builds the Fiber application with all routes and middleware.
// The calendar callback and the health probes are the only unauthenticated
// routes; everything else requires a valid bearer token.
func NewServer(jwtAuth auth.IJWTAuth, meetings *service.MeetingService, calendar *service.CalendarService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "scheduling-service",
		DisableStartupMessage: true,
	})

	app.Use(fiberrecover.New())
	app.Use(requestIDMiddleware())
	app.Use(requestLoggerMiddleware())

	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).SendString("OK")
	})
	app.Get("/readyz", readinessHandler(meetings, calendar))

	calendarHandler := NewCalendarHandler(calendar)
	app.Get("/calendar/callback", calendarHandler.Callback)

	authed := app.Group("", authMiddleware(jwtAuth))

	meetingHandler := NewMeetingHandler(meetings)
	authed.Get("/meetings", meetingHandler.List)
	authed.Post("/meetings", meetingHandler.Create)
	authed.Get("/meetings/:uid", meetingHandler.Get)
	authed.Put("/meetings/:uid", meetingHandler.Update)
	authed.Delete("/meetings/:uid", meetingHandler.Delete)

	authed.Post("/calendar/connect", calendarHandler.Connect)
	authed.Get("/calendar/status", calendarHandler.Status)

	return app
}

func readinessHandler(checkers ...ReadinessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, checker := range checkers {
			if !checker.ServiceReady() {
				return c.Status(http.StatusServiceUnavailable).SendString("NOT READY")
			}
		}
		return c.Status(http.StatusOK).SendString("OK")
	}
}
