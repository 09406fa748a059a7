// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// MockCredentialRepository implements domain.CredentialRepository for testing
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Get(ctx context.Context, userUID string) (*models.Credential, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Put(ctx context.Context, credential *models.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}
