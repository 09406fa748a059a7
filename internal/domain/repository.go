// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface can be implemented by different storage backends.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Exists(ctx context.Context, meetingUID string) (bool, error)
	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	Delete(ctx context.Context, meetingUID string, revision uint64) error
	ListAll(ctx context.Context) ([]*models.Meeting, error)
}

// ParticipantRepository defines the interface for meeting participant storage
// operations. Participants are exclusively owned by their meeting; deleting a
// meeting cascades through DeleteByMeeting.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	Get(ctx context.Context, meetingUID, participantUID string) (*models.Participant, error)
	ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Participant, error)
	Delete(ctx context.Context, meetingUID, participantUID string) error
	DeleteByMeeting(ctx context.Context, meetingUID string) error
}

// CredentialRepository persists per-user OAuth credentials for the external
// calendar provider. Get returns a not-found DomainError when the user never
// connected; callers translate that into the "not connected" state.
type CredentialRepository interface {
	Get(ctx context.Context, userUID string) (*models.Credential, error)
	Put(ctx context.Context, credential *models.Credential) error
}

// NotificationRepository persists notification rows. The scheduling service
// only ever writes them.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// UserReader resolves CRM users. The user store itself is owned by another
// subsystem; this service only reads emails and display names.
type UserReader interface {
	Get(ctx context.Context, userUID string) (*models.User, error)
}
