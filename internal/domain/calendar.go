// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// CalendarProvider defines the interface for external calendar and
// conferencing integrations.
//
// None of the methods return an error: calendar sync is best-effort by
// design. CreateEvent reports what it managed to provision through
// ConferenceResult; UpdateEvent and DeleteEvent report success as a bool and
// swallow provider failures after logging them. A missing credential for the
// organizer is the common path and yields a degraded result, not a failure.
type CalendarProvider interface {
	// CreateEvent creates a calendar event with a conferencing-creation
	// request for the organizer's connected calendar.
	CreateEvent(ctx context.Context, organizerUID string, event *models.CalendarEventInput) models.ConferenceResult

	// UpdateEvent patches the summary, description, time window and attendee
	// list of an existing external event.
	UpdateEvent(ctx context.Context, organizerUID, eventID string, event *models.CalendarEventInput) bool

	// DeleteEvent cancels the external event and notifies attendees.
	DeleteEvent(ctx context.Context, organizerUID, eventID string) bool
}

// CalendarConnector drives the OAuth connect flow for the external calendar
// provider.
type CalendarConnector interface {
	// ConsentURL returns the provider consent page URL; state round-trips
	// through the provider back to the callback.
	ConsentURL(state string) string

	// Exchange redeems the authorization code from the callback and stores
	// the resulting credential for the user.
	Exchange(ctx context.Context, userUID, code string) error

	// Connected reports whether the user has a stored credential.
	Connected(ctx context.Context, userUID string) bool
}
