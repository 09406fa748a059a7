// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// MockParticipantRepository implements domain.ParticipantRepository for testing
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) Get(ctx context.Context, meetingUID, participantUID string) (*models.Participant, error) {
	args := m.Called(ctx, meetingUID, participantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Participant, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, meetingUID, participantUID string) error {
	args := m.Called(ctx, meetingUID, participantUID)
	return args.Error(0)
}

func (m *MockParticipantRepository) DeleteByMeeting(ctx context.Context, meetingUID string) error {
	args := m.Called(ctx, meetingUID)
	return args.Error(0)
}
