// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package constants

// NATS subjects produced by the scheduling service.
const (
	// NotificationSendSubject carries fire-and-forget user notifications for
	// the broadcast fan-out service.
	NotificationSendSubject = "crm.notification.send"
)
