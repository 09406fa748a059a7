// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/internal/logging"
)

const (
	// primaryCalendarID is the calendar all events go into; the service only
	// ever touches the organizer's primary calendar.
	primaryCalendarID = "primary"

	// linkPollAttempts bounds the re-fetch loop waiting for Google to attach
	// the Meet link to a freshly created event.
	linkPollAttempts = 3
	linkPollBaseWait = 1500 * time.Millisecond
)

// Provisioner implements domain.CalendarProvider on top of the Google
// Calendar API. Every operation acts as the meeting organizer, via the
// organizer's stored OAuth credential.
type Provisioner struct {
	tokens *TokenManager
}

// NewProvisioner creates a new Provisioner.
func NewProvisioner(tokens *TokenManager) *Provisioner {
	return &Provisioner{tokens: tokens}
}

var _ domain.CalendarProvider = (*Provisioner)(nil)

// CreateEvent inserts a calendar event with a Meet conference-creation
// request into the organizer's primary calendar. Conference provisioning is
// asynchronous on Google's side, so after insertion the event is re-fetched
// on a bounded backoff until the join link appears.
func (p *Provisioner) CreateEvent(ctx context.Context, organizerUID string, input *models.CalendarEventInput) models.ConferenceResult {
	service := p.tokens.ClientFor(ctx, organizerUID)
	if service == nil {
		return models.ConferenceResult{Degraded: models.DegradedReasonNotConnected}
	}

	event := buildEvent(input)
	event.ConferenceData = &calendar.ConferenceData{
		CreateRequest: &calendar.CreateConferenceRequest{
			RequestId: uuid.NewString(),
			ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
				Type: "hangoutsMeet",
			},
		},
	}

	created, err := service.Events.Insert(primaryCalendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		slog.ErrorContext(ctx, "error creating calendar event", logging.ErrKey, err, "organizer_uid", organizerUID)
		return models.ConferenceResult{Degraded: models.DegradedReasonProviderError}
	}

	link := joinLink(created)
	for attempt := 1; link == "" && attempt <= linkPollAttempts; attempt++ {
		wait := time.Duration(attempt) * linkPollBaseWait
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "context cancelled while waiting for meet link", "event_id", created.Id)
			return models.ConferenceResult{Provisioned: true, EventID: created.Id, Degraded: models.DegradedReasonLinkPending}
		case <-time.After(wait):
		}

		fetched, err := service.Events.Get(primaryCalendarID, created.Id).Context(ctx).Do()
		if err != nil {
			slog.WarnContext(ctx, "error polling event for meet link",
				logging.ErrKey, err, "event_id", created.Id, "attempt", attempt)
			continue
		}
		link = joinLink(fetched)
	}

	if link == "" {
		slog.WarnContext(ctx, "meet link still pending after polling window", "event_id", created.Id)
		return models.ConferenceResult{Provisioned: true, EventID: created.Id, Degraded: models.DegradedReasonLinkPending}
	}

	slog.DebugContext(ctx, "provisioned calendar event", "event_id", created.Id, "organizer_uid", organizerUID)
	return models.ConferenceResult{Provisioned: true, EventID: created.Id, JoinLink: link}
}

// UpdateEvent patches an existing event with the current meeting fields and
// notifies attendees. Failures are logged and reported as false.
func (p *Provisioner) UpdateEvent(ctx context.Context, organizerUID, eventID string, input *models.CalendarEventInput) bool {
	service := p.tokens.ClientFor(ctx, organizerUID)
	if service == nil {
		return false
	}

	_, err := service.Events.Patch(primaryCalendarID, eventID, buildEvent(input)).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		slog.ErrorContext(ctx, "error updating calendar event",
			logging.ErrKey, err, "event_id", eventID, "organizer_uid", organizerUID)
		return false
	}
	return true
}

// DeleteEvent cancels the external event. An event already gone on the
// provider side counts as success.
func (p *Provisioner) DeleteEvent(ctx context.Context, organizerUID, eventID string) bool {
	service := p.tokens.ClientFor(ctx, organizerUID)
	if service == nil {
		return false
	}

	err := service.Events.Delete(primaryCalendarID, eventID).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
			slog.DebugContext(ctx, "calendar event already gone", "event_id", eventID)
			return true
		}
		slog.ErrorContext(ctx, "error deleting calendar event",
			logging.ErrKey, err, "event_id", eventID, "organizer_uid", organizerUID)
		return false
	}
	return true
}

// buildEvent maps the provider-agnostic input onto a Calendar API event.
func buildEvent(input *models.CalendarEventInput) *calendar.Event {
	attendees := make([]*calendar.EventAttendee, 0, len(input.Attendees))
	for _, email := range input.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	return &calendar.Event{
		Summary:     input.Title,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start,
			TimeZone: input.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End,
			TimeZone: input.Timezone,
		},
		Attendees:  attendees,
		Recurrence: recurrenceRules(input.Recurrence),
	}
}

// recurrenceRules renders the meeting recurrence tag as an RRULE line, or nil
// for one-off meetings.
func recurrenceRules(recurrence models.Recurrence) []string {
	var opt rrule.ROption
	switch recurrence {
	case models.RecurrenceDaily:
		opt = rrule.ROption{Freq: rrule.DAILY}
	case models.RecurrenceWeekly:
		opt = rrule.ROption{Freq: rrule.WEEKLY}
	case models.RecurrenceBiWeekly:
		opt = rrule.ROption{Freq: rrule.WEEKLY, Interval: 2}
	case models.RecurrenceMonthly:
		opt = rrule.ROption{Freq: rrule.MONTHLY}
	default:
		return nil
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		slog.Warn("error building recurrence rule", logging.ErrKey, err, "recurrence", recurrence)
		return nil
	}
	return []string{"RRULE:" + rule.OrigOptions.RRuleString()}
}

// joinLink extracts the Meet link from an event, preferring the hangout link
// and falling back to the video entry point.
func joinLink(event *calendar.Event) string {
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	if event.ConferenceData == nil {
		return ""
	}
	for _, entryPoint := range event.ConferenceData.EntryPoints {
		if entryPoint.EntryPointType == "video" && entryPoint.Uri != "" {
			return entryPoint.Uri
		}
	}
	return ""
}
