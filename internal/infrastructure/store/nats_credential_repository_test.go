// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

func TestNatsCredentialRepositoryPutOverwrites(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsCredentialRepository(kv)
	ctx := context.Background()

	first := &models.Credential{
		UserUID:      "user-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Put(ctx, first))

	// Token rotation overwrites unconditionally; last write wins.
	second := &models.Credential{
		UserUID:      "user-1",
		AccessToken:  "access-2",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(2 * time.Hour).UTC(),
	}
	require.NoError(t, repo.Put(ctx, second))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
	assert.NotNil(t, got.UpdatedAt)
}

func TestNatsCredentialRepositoryGetNotConnected(t *testing.T) {
	repo := NewNatsCredentialRepository(newMockNatsKeyValue())

	_, err := repo.Get(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsCredentialRepositoryPutRequiresUserUID(t *testing.T) {
	repo := NewNatsCredentialRepository(newMockNatsKeyValue())

	err := repo.Put(context.Background(), &models.Credential{AccessToken: "access"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
