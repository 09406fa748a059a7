// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package messaging publishes fire-and-forget broadcast messages to NATS.
package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/internal/logging"
	"github.com/relaycrm/scheduling-service/pkg/constants"
)

// INatsConn is the slice of the NATS connection API that the publisher needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// NotificationPublisher builds notification broadcast messages and publishes
// them to the NATS server. The notification fan-out service consumes them;
// nothing is ever read back.
type NotificationPublisher struct {
	NatsConn INatsConn
}

// NewNotificationPublisher creates a new NotificationPublisher.
func NewNotificationPublisher(natsConn INatsConn) *NotificationPublisher {
	return &NotificationPublisher{
		NatsConn: natsConn,
	}
}

var _ domain.NotificationSender = (*NotificationPublisher)(nil)

// SendNotification publishes one notification message. The payload is
// msgpack-encoded to keep the broadcast fan-out cheap.
func (p *NotificationPublisher) SendNotification(ctx context.Context, notification *models.Notification) error {
	message := models.NotificationMessage{
		UID:        notification.UID,
		UserUID:    notification.UserUID,
		Message:    notification.Message,
		Type:       string(notification.Type),
		RelatedUID: notification.RelatedUID,
		SentAt:     time.Now().UTC().Unix(),
	}

	data, err := msgpack.Marshal(&message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling notification message", logging.ErrKey, err)
		return err
	}

	if err := p.NatsConn.Publish(constants.NotificationSendSubject, data); err != nil {
		slog.ErrorContext(ctx, "error sending notification message to NATS",
			logging.ErrKey, err, "subject", constants.NotificationSendSubject)
		return err
	}

	slog.DebugContext(ctx, "sent notification message to NATS",
		"subject", constants.NotificationSendSubject,
		"notification_uid", notification.UID,
		"notification_type", notification.Type,
	)
	return nil
}
