// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/mocks"
)

func TestCalendarServiceConnectURL(t *testing.T) {
	connector := &mocks.MockCalendarConnector{}
	connector.On("ConsentURL", "user-1").Return("https://accounts.google.com/o/oauth2/auth?state=user-1")

	svc := NewCalendarService(connector)

	url, err := svc.ConnectURL(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Contains(t, url, "state=user-1")

	_, err = svc.ConnectURL(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestCalendarServiceCompleteConnect(t *testing.T) {
	connector := &mocks.MockCalendarConnector{}
	connector.On("Exchange", mock.Anything, "user-1", "auth-code").Return(nil)

	svc := NewCalendarService(connector)

	require.NoError(t, svc.CompleteConnect(context.Background(), "user-1", "auth-code"))

	err := svc.CompleteConnect(context.Background(), "", "auth-code")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestCalendarServiceNotReady(t *testing.T) {
	svc := NewCalendarService(nil)

	_, err := svc.ConnectURL(context.Background(), "user-1")
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
