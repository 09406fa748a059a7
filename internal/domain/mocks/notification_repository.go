// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// MockNotificationRepository implements domain.NotificationRepository for testing
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// MockNotificationSender implements domain.NotificationSender for testing
type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) SendNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
