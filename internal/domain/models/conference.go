// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package models

// DegradedReason explains why a conferencing operation returned less than a
// full result. Calendar sync is best-effort: a degraded result is not an
// error and never blocks the local meeting mutation.
type DegradedReason string

const (
	// DegradedReasonNotConnected means the organizer never connected the
	// external calendar. Conferencing is silently skipped.
	DegradedReasonNotConnected DegradedReason = "not_connected"
	// DegradedReasonProviderError means the provider call itself failed.
	DegradedReasonProviderError DegradedReason = "provider_error"
	// DegradedReasonLinkPending means the event exists but the join link was
	// still not provisioned after the bounded polling window.
	DegradedReasonLinkPending DegradedReason = "link_pending"
)

// ConferenceResult is the outcome of provisioning a calendar event with
// conferencing. Provisioned reports whether the external event exists;
// callers must check JoinLink for presence rather than inferring failure.
type ConferenceResult struct {
	Provisioned bool
	EventID     string
	JoinLink    string
	Degraded    DegradedReason
}

// OK reports whether the external event was created and a join link is
// available.
func (r ConferenceResult) OK() bool {
	return r.Provisioned && r.JoinLink != ""
}

// CalendarEventInput carries the provider-agnostic fields of a calendar
// event. Start and End are RFC3339 timestamps with the zone offset already
// resolved.
type CalendarEventInput struct {
	Title       string
	Description string
	Location    string
	Start       string
	End         string
	Timezone    string
	Recurrence  Recurrence
	Attendees   []string
}
