// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// NatsUserRepository is a read-only projection of the CRM user store, keyed
// by user UID. The user records are maintained by the accounts subsystem;
// this service only needs emails and display names.
type NatsUserRepository struct {
	*NatsBaseRepository[models.User]
}

// NewNatsUserRepository creates a new NATS KV user reader.
func NewNatsUserRepository(kvStore INatsKeyValue) *NatsUserRepository {
	return &NatsUserRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.User](kvStore, "user"),
	}
}

var _ domain.UserReader = (*NatsUserRepository)(nil)

func (r *NatsUserRepository) Get(ctx context.Context, userUID string) (*models.User, error) {
	return r.NatsBaseRepository.Get(ctx, userUID)
}
