// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// MockCalendarProvider implements domain.CalendarProvider for testing
type MockCalendarProvider struct {
	mock.Mock
}

func (m *MockCalendarProvider) CreateEvent(ctx context.Context, organizerUID string, event *models.CalendarEventInput) models.ConferenceResult {
	args := m.Called(ctx, organizerUID, event)
	return args.Get(0).(models.ConferenceResult)
}

func (m *MockCalendarProvider) UpdateEvent(ctx context.Context, organizerUID, eventID string, event *models.CalendarEventInput) bool {
	args := m.Called(ctx, organizerUID, eventID, event)
	return args.Bool(0)
}

func (m *MockCalendarProvider) DeleteEvent(ctx context.Context, organizerUID, eventID string) bool {
	args := m.Called(ctx, organizerUID, eventID)
	return args.Bool(0)
}

// MockCalendarConnector implements domain.CalendarConnector for testing
type MockCalendarConnector struct {
	mock.Mock
}

func (m *MockCalendarConnector) ConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockCalendarConnector) Exchange(ctx context.Context, userUID, code string) error {
	args := m.Called(ctx, userUID, code)
	return args.Error(0)
}

func (m *MockCalendarConnector) Connected(ctx context.Context, userUID string) bool {
	args := m.Called(ctx, userUID)
	return args.Bool(0)
}
