// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/pkg/utils"
)

// NatsCredentialRepository is the NATS KV implementation of
// domain.CredentialRepository. Credentials are keyed by user UID (1:1).
//
// Put is deliberately an unconditional write: token refresh can race between
// concurrent requests for the same user and last-write-wins is the accepted
// resolution, since the provider returns a valid token pair on each refresh.
type NatsCredentialRepository struct {
	*NatsBaseRepository[models.Credential]
}

// NewNatsCredentialRepository creates a new NATS KV credentials repository.
func NewNatsCredentialRepository(kvStore INatsKeyValue) *NatsCredentialRepository {
	return &NatsCredentialRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Credential](kvStore, "credential"),
	}
}

var _ domain.CredentialRepository = (*NatsCredentialRepository)(nil)

func (r *NatsCredentialRepository) Get(ctx context.Context, userUID string) (*models.Credential, error) {
	return r.NatsBaseRepository.Get(ctx, userUID)
}

func (r *NatsCredentialRepository) Put(ctx context.Context, credential *models.Credential) error {
	if credential.UserUID == "" {
		return domain.NewValidationError("credential user UID is required")
	}
	credential.UpdatedAt = utils.TimePtr(time.Now().UTC())
	return r.NatsBaseRepository.Create(ctx, credential.UserUID, credential)
}
