// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// ParticipantRole represents the role of a participant within a meeting.
type ParticipantRole string

const (
	ParticipantRoleOrganizer ParticipantRole = "organizer"
	ParticipantRoleRequired  ParticipantRole = "required"
	ParticipantRoleOptional  ParticipantRole = "optional"
)

// RSVPStatus is a participant's response state to an invitation.
type RSVPStatus string

const (
	RSVPStatusPending   RSVPStatus = "pending"
	RSVPStatusAccepted  RSVPStatus = "accepted"
	RSVPStatusDeclined  RSVPStatus = "declined"
	RSVPStatusTentative RSVPStatus = "tentative"
)

// Participant is the key-value store representation of a meeting participant.
// UserUID is empty for external guests invited by raw email.
type Participant struct {
	UID         string          `json:"uid"`
	MeetingUID  string          `json:"meeting_uid"`
	UserUID     string          `json:"user_uid,omitempty"`
	Email       string          `json:"email,omitempty"`
	Name        string          `json:"name,omitempty"`
	Role        ParticipantRole `json:"role"`
	RSVP        RSVPStatus      `json:"rsvp"`
	InvitedAt   *time.Time      `json:"invited_at,omitempty"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
}

// IsOrganizer reports whether the participant is the meeting organizer row.
func (p *Participant) IsOrganizer() bool {
	return p.Role == ParticipantRoleOrganizer
}

// ParticipantInput is a single requested roster entry on create/update.
type ParticipantInput struct {
	UserUID string          `json:"user_uid,omitempty"`
	Email   string          `json:"email,omitempty"`
	Name    string          `json:"name,omitempty"`
	Role    ParticipantRole `json:"role,omitempty"`
}
