// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// NatsNotificationRepository persists notification rows, keyed by
// notification UID. The scheduling service is write-only here; reads belong
// to the notification center.
type NatsNotificationRepository struct {
	*NatsBaseRepository[models.Notification]
}

// NewNatsNotificationRepository creates a new NATS KV notifications repository.
func NewNatsNotificationRepository(kvStore INatsKeyValue) *NatsNotificationRepository {
	return &NatsNotificationRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Notification](kvStore, "notification"),
	}
}

var _ domain.NotificationRepository = (*NatsNotificationRepository)(nil)

func (r *NatsNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.UID == "" {
		return domain.NewValidationError("notification UID is required")
	}
	return r.NatsBaseRepository.Create(ctx, notification.UID, notification)
}
