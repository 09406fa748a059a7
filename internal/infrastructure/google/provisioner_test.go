// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/mocks"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

// newTestProvisioner wires a Provisioner whose Calendar API calls hit the
// given test server as a connected user.
func newTestProvisioner(t *testing.T, server *httptest.Server) *Provisioner {
	t.Helper()

	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, mock.Anything).Return(&models.Credential{
		UserUID:      "org-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}, nil)

	config := NewOAuthConfig("client-id", "client-secret", "https://crm.test/callback")
	manager := NewTokenManager(config, credentials, option.WithEndpoint(server.URL))
	return NewProvisioner(manager)
}

func eventInput() *models.CalendarEventInput {
	return &models.CalendarEventInput{
		Title:      "Quarterly review",
		Start:      "2024-06-15T09:00:00+00:00",
		End:        "2024-06-15T10:00:00+00:00",
		Timezone:   "UTC",
		Recurrence: models.RecurrenceNone,
		Attendees:  []string{"two@crm.test"},
	}
}

func TestCreateEventNotConnected(t *testing.T) {
	credentials := &mocks.MockCredentialRepository{}
	credentials.On("Get", mock.Anything, "org-1").Return(nil, domain.NewNotFoundError("credential not found"))

	manager := NewTokenManager(NewOAuthConfig("id", "secret", "url"), credentials)
	provisioner := NewProvisioner(manager)

	result := provisioner.CreateEvent(context.Background(), "org-1", eventInput())

	assert.False(t, result.Provisioned)
	assert.Empty(t, result.JoinLink)
	assert.Equal(t, models.DegradedReasonNotConnected, result.Degraded)
}

func TestCreateEventLinkInInitialResponse(t *testing.T) {
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))
			assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotNil(t, body["conferenceData"], "insert must carry a conference creation request")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"evt-1","hangoutLink":"https://meet.google.com/abc"}`))
		case http.MethodGet:
			gets.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"evt-1","hangoutLink":"https://meet.google.com/abc"}`))
		}
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	result := provisioner.CreateEvent(context.Background(), "org-1", eventInput())

	assert.True(t, result.Provisioned)
	assert.Equal(t, "evt-1", result.EventID)
	assert.Equal(t, "https://meet.google.com/abc", result.JoinLink)
	assert.Empty(t, result.Degraded)
	assert.Zero(t, gets.Load(), "no polling when the link is already present")
}

func TestCreateEventPollsUntilLinkAppears(t *testing.T) {
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			// Conference provisioning is asynchronous: no link yet.
			_, _ = w.Write([]byte(`{"id":"evt-1"}`))
		case http.MethodGet:
			// The link materializes on the second re-fetch.
			if gets.Add(1) < 2 {
				_, _ = w.Write([]byte(`{"id":"evt-1"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"evt-1","conferenceData":{"entryPoints":[{"entryPointType":"video","uri":"https://meet.google.com/abc"}]}}`))
		}
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	result := provisioner.CreateEvent(context.Background(), "org-1", eventInput())

	assert.True(t, result.Provisioned)
	assert.Equal(t, "https://meet.google.com/abc", result.JoinLink)
	assert.Empty(t, result.Degraded)
	assert.Equal(t, int32(2), gets.Load(), "polling stops once the link appears")
}

func TestCreateEventLinkStillPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-1"}`))
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)

	// Cancel after the first backoff wait so the test does not sit through
	// the full polling window.
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	result := provisioner.CreateEvent(ctx, "org-1", eventInput())

	assert.True(t, result.Provisioned, "the event exists even without a link")
	assert.Equal(t, "evt-1", result.EventID)
	assert.Empty(t, result.JoinLink)
	assert.Equal(t, models.DegradedReasonLinkPending, result.Degraded)
}

func TestCreateEventProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	result := provisioner.CreateEvent(context.Background(), "org-1", eventInput())

	assert.False(t, result.Provisioned)
	assert.Equal(t, models.DegradedReasonProviderError, result.Degraded)
}

func TestUpdateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-1"}`))
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	assert.True(t, provisioner.UpdateEvent(context.Background(), "org-1", "evt-1", eventInput()))
}

func TestUpdateEventProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	assert.False(t, provisioner.UpdateEvent(context.Background(), "org-1", "evt-1", eventInput()))
}

func TestDeleteEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	assert.True(t, provisioner.DeleteEvent(context.Background(), "org-1", "evt-1"))
}

func TestDeleteEventAlreadyGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	provisioner := newTestProvisioner(t, server)
	assert.True(t, provisioner.DeleteEvent(context.Background(), "org-1", "evt-1"),
		"an event already gone on the provider side counts as cancelled")
}

func TestRecurrenceRules(t *testing.T) {
	tests := []struct {
		recurrence models.Recurrence
		want       string
	}{
		{models.RecurrenceNone, ""},
		{models.RecurrenceDaily, "RRULE:FREQ=DAILY"},
		{models.RecurrenceWeekly, "RRULE:FREQ=WEEKLY"},
		{models.RecurrenceBiWeekly, "RRULE:FREQ=WEEKLY;INTERVAL=2"},
		{models.RecurrenceMonthly, "RRULE:FREQ=MONTHLY"},
	}

	for _, tc := range tests {
		t.Run(string(tc.recurrence), func(t *testing.T) {
			rules := recurrenceRules(tc.recurrence)
			if tc.want == "" {
				assert.Nil(t, rules)
				return
			}
			require.Len(t, rules, 1)
			assert.Equal(t, tc.want, rules[0])
		})
	}
}
