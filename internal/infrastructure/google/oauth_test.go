// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/mocks"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

func TestNewOAuthConfig(t *testing.T) {
	config := NewOAuthConfig("client-id", "client-secret", "https://crm.test/callback")

	assert.Equal(t, "client-id", config.ClientID)
	assert.Equal(t, "https://crm.test/callback", config.RedirectURL)
	assert.NotEmpty(t, config.Endpoint.TokenURL)
	require.Len(t, config.Scopes, 1)
	assert.Contains(t, config.Scopes[0], "calendar")
}

func TestTokenManagerConsentURL(t *testing.T) {
	config := NewOAuthConfig("client-id", "client-secret", "https://crm.test/callback")
	manager := NewTokenManager(config, &mocks.MockCredentialRepository{})

	url := manager.ConsentURL("user-1")
	assert.Contains(t, url, "state=user-1")
	assert.Contains(t, url, "access_type=offline")
}

func TestClientForNotConnected(t *testing.T) {
	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, "user-1").Return(nil, domain.NewNotFoundError("credential not found"))

	config := NewOAuthConfig("client-id", "client-secret", "https://crm.test/callback")
	manager := NewTokenManager(config, credentials)

	service := manager.ClientFor(context.Background(), "user-1")
	assert.Nil(t, service, "not connected yields no client, not an error")
	credentials.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestClientForFreshTokenSkipsRefresh(t *testing.T) {
	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, "user-1").Return(&models.Credential{
		UserUID:      "user-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}, nil)

	config := NewOAuthConfig("client-id", "client-secret", "https://crm.test/callback")
	manager := NewTokenManager(config, credentials)

	service := manager.ClientFor(context.Background(), "user-1")
	require.NotNil(t, service)
	credentials.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestClientForExpiringTokenRefreshesAndPersists(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-2","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, "user-1").Return(&models.Credential{
		UserUID:      "user-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Minute),
	}, nil)
	credentials.On("Put", mock.Anything, mock.MatchedBy(func(credential *models.Credential) bool {
		// The refresh response has no refresh token; the stored one carries
		// forward.
		return credential.AccessToken == "access-2" && credential.RefreshToken == "refresh-1"
	})).Return(nil)

	config := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
	}
	manager := NewTokenManager(config, credentials)

	service := manager.ClientFor(context.Background(), "user-1")
	require.NotNil(t, service)
	credentials.AssertExpectations(t)
}

func TestClientForRefreshFailureFallsBackToStoredToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, "user-1").Return(&models.Credential{
		UserUID:      "user-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Minute),
	}, nil)

	config := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
	}
	manager := NewTokenManager(config, credentials)

	service := manager.ClientFor(context.Background(), "user-1")
	assert.NotNil(t, service, "refresh failure defers the error to the next API call")
	credentials.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestExchangeStoresCredential(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","refresh_token":"refresh-1","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Put", mock.Anything, mock.MatchedBy(func(credential *models.Credential) bool {
		return credential.UserUID == "user-1" &&
			credential.AccessToken == "access-1" &&
			credential.RefreshToken == "refresh-1"
	})).Return(nil)

	config := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
	}
	manager := NewTokenManager(config, credentials)

	require.NoError(t, manager.Exchange(context.Background(), "user-1", "auth-code"))
	credentials.AssertExpectations(t)
}

func TestExchangeRejectedCode(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	config := &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: tokenServer.URL},
	}
	manager := NewTokenManager(config, &mocks.MockCredentialRepository{})

	err := manager.Exchange(context.Background(), "user-1", "bad-code")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestConnected(t *testing.T) {
	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, "user-1").Return(&models.Credential{UserUID: "user-1"}, nil)
	credentials.On("Get", mock.Anything, "user-2").Return(nil, domain.NewNotFoundError("credential not found"))

	manager := NewTokenManager(NewOAuthConfig("id", "secret", "url"), credentials)

	assert.True(t, manager.Connected(context.Background(), "user-1"))
	assert.False(t, manager.Connected(context.Background(), "user-2"))
}
