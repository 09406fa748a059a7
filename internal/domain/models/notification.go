// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// NotificationType tags the kind of notification being emitted.
type NotificationType string

const (
	NotificationTypeMeetingInvite     NotificationType = "meeting_invite"
	NotificationTypeMeetingReschedule NotificationType = "meeting_reschedule"
	NotificationTypeMeetingCancelled  NotificationType = "meeting_cancelled"
)

// Notification is a one-way emission referencing a user, a message body, a
// type tag and a related entity. The scheduling service never reads these
// back.
type Notification struct {
	UID        string           `json:"uid"`
	UserUID    string           `json:"user_uid"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	RelatedUID string           `json:"related_uid,omitempty"`
	CreatedAt  *time.Time       `json:"created_at,omitempty"`
}

// NotificationMessage is the broadcast payload published on NATS for the
// notification fan-out service. It is msgpack-encoded on the wire.
type NotificationMessage struct {
	UID        string `msgpack:"uid"`
	UserUID    string `msgpack:"user_uid"`
	Message    string `msgpack:"message"`
	Type       string `msgpack:"type"`
	RelatedUID string `msgpack:"related_uid"`
	SentAt     int64  `msgpack:"sent_at"`
}
