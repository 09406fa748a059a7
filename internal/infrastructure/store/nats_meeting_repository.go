// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// NatsMeetingRepository is the NATS KV implementation of
// domain.MeetingRepository. Meetings are keyed by their UID.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
}

// NewNatsMeetingRepository creates a new NATS KV meetings repository.
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](kvStore, "meeting"),
	}
}

var _ domain.MeetingRepository = (*NatsMeetingRepository)(nil)

func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.UID == "" {
		return domain.NewValidationError("meeting UID is required")
	}
	return r.NatsBaseRepository.Create(ctx, meeting.UID, meeting)
}

func (r *NatsMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	return r.NatsBaseRepository.Get(ctx, meetingUID)
}

func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, meetingUID)
}

func (r *NatsMeetingRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, meetingUID)
}

func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	if meeting.UID == "" {
		return domain.NewValidationError("meeting UID is required")
	}
	return r.NatsBaseRepository.Update(ctx, meeting.UID, meeting, revision)
}

func (r *NatsMeetingRepository) Delete(ctx context.Context, meetingUID string, revision uint64) error {
	return r.NatsBaseRepository.Delete(ctx, meetingUID, revision)
}

func (r *NatsMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	return r.ListEntities(ctx, "")
}
