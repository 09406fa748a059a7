// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/logging"
)

// CalendarService handles the calendar connect flow for the authenticated
// user. The state parameter carries the user UID through the provider
// redirect, since the callback request arrives without our bearer token.
type CalendarService struct {
	Connector domain.CalendarConnector
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(connector domain.CalendarConnector) *CalendarService {
	return &CalendarService{Connector: connector}
}

// ServiceReady checks if the service is ready for use.
func (s *CalendarService) ServiceReady() bool {
	return s.Connector != nil
}

// ConnectURL returns the provider consent URL for the user.
func (s *CalendarService) ConnectURL(ctx context.Context, userUID string) (string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return "", domain.NewUnavailableError("service not initialized")
	}
	if userUID == "" {
		return "", domain.NewValidationError("user is required")
	}
	return s.Connector.ConsentURL(userUID), nil
}

// CompleteConnect finishes the OAuth flow from the provider callback.
func (s *CalendarService) CompleteConnect(ctx context.Context, state, code string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}
	if state == "" || code == "" {
		return domain.NewValidationError("state and code are required")
	}
	return s.Connector.Exchange(ctx, state, code)
}

// ConnectionStatus reports whether the user has a connected calendar.
func (s *CalendarService) ConnectionStatus(ctx context.Context, userUID string) (bool, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return false, domain.NewUnavailableError("service not initialized")
	}
	return s.Connector.Connected(ctx, userUID), nil
}
