// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus represents the lifecycle state of a meeting.
type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// Recurrence is the recurrence tag of a meeting.
type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiWeekly Recurrence = "bi_weekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

// Meeting is the key-value store representation of a meeting.
//
// StartTime and EndTime are absolute UTC instants; Timezone keeps the IANA
// label the wall-clock inputs were given in, for display.
type Meeting struct {
	UID             string        `json:"uid"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	OrganizerUID    string        `json:"organizer_uid"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Timezone        string        `json:"timezone"`
	Location        string        `json:"location,omitempty"`
	JoinLink        string        `json:"join_link,omitempty"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
	JoinCode        string        `json:"join_code,omitempty"`
	Status          MeetingStatus `json:"status"`
	Recurrence      Recurrence    `json:"recurrence"`
	Color           string        `json:"color,omitempty"`
	LeadUID         string        `json:"lead_uid,omitempty"`
	CreatedAt       *time.Time    `json:"created_at,omitempty"`
	UpdatedAt       *time.Time    `json:"updated_at,omitempty"`
}

// EffectiveStatus derives the reader-facing status at the given instant.
// `in_progress` and `completed` are never written by the service; only
// `cancelled` is an explicit status write.
func (m *Meeting) EffectiveStatus(now time.Time) MeetingStatus {
	if m.Status == MeetingStatusCancelled {
		return MeetingStatusCancelled
	}
	switch {
	case !now.Before(m.EndTime):
		return MeetingStatusCompleted
	case !now.Before(m.StartTime):
		return MeetingStatusInProgress
	default:
		return MeetingStatusScheduled
	}
}

// ValidRecurrence reports whether the given tag is one of the supported
// recurrence tags.
func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// MeetingFull is a meeting together with its participant roster, as returned
// by the read endpoints.
type MeetingFull struct {
	Meeting      *Meeting       `json:"meeting"`
	Participants []*Participant `json:"participants"`
}
