// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// NatsParticipantRepository is the NATS KV implementation of
// domain.ParticipantRepository. Participants are keyed
// "<meetingUID>/<participantUID>" so that a meeting's roster is a key-prefix
// scan and a meeting delete can cascade by prefix.
type NatsParticipantRepository struct {
	*NatsBaseRepository[models.Participant]
}

// NewNatsParticipantRepository creates a new NATS KV participants repository.
func NewNatsParticipantRepository(kvStore INatsKeyValue) *NatsParticipantRepository {
	return &NatsParticipantRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Participant](kvStore, "participant"),
	}
}

var _ domain.ParticipantRepository = (*NatsParticipantRepository)(nil)

func participantKey(meetingUID, participantUID string) string {
	return fmt.Sprintf("%s/%s", meetingUID, participantUID)
}

func (r *NatsParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	if participant.UID == "" || participant.MeetingUID == "" {
		return domain.NewValidationError("participant UID and meeting UID are required")
	}
	return r.NatsBaseRepository.Create(ctx, participantKey(participant.MeetingUID, participant.UID), participant)
}

func (r *NatsParticipantRepository) Get(ctx context.Context, meetingUID, participantUID string) (*models.Participant, error) {
	return r.NatsBaseRepository.Get(ctx, participantKey(meetingUID, participantUID))
}

func (r *NatsParticipantRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Participant, error) {
	return r.ListEntities(ctx, meetingUID+"/")
}

func (r *NatsParticipantRepository) Delete(ctx context.Context, meetingUID, participantUID string) error {
	return r.DeleteWithoutRevision(ctx, participantKey(meetingUID, participantUID))
}

// DeleteByMeeting removes every participant row of a meeting. Individual
// delete failures abort the cascade so the caller can surface the error.
func (r *NatsParticipantRepository) DeleteByMeeting(ctx context.Context, meetingUID string) error {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return err
	}

	prefix := meetingUID + "/"
	for _, key := range keys {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if err := r.DeleteWithoutRevision(ctx, key); err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				continue
			}
			return err
		}
	}

	return nil
}
