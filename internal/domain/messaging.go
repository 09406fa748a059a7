// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// NotificationSender publishes fire-and-forget notification messages for the
// broadcast mechanism. Failures are the caller's to log and swallow; the
// local notification row is the durable record.
type NotificationSender interface {
	SendNotification(ctx context.Context, notification *models.Notification) error
}
