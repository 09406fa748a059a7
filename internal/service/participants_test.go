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
	"github.com/relaycrm/scheduling-service/internal/domain/models"
)

func TestReconcilerRosterOrganizerInvariant(t *testing.T) {
	users := &mocks.MockUserReader{}
	users.On("Get", mock.Anything, "org-1").Return(&models.User{UID: "org-1", Email: "org@crm.test", Name: "Org"}, nil)
	users.On("Get", mock.Anything, "user-2").Return(&models.User{UID: "user-2", Email: "two@crm.test", Name: "Two"}, nil)

	reconciler := NewParticipantReconciler(users)

	requested := []models.ParticipantInput{
		{UserUID: "user-2"},
		// The organizer sneaking into the requested list must not produce a
		// second row.
		{UserUID: "org-1", Role: models.ParticipantRoleOrganizer},
		{Email: "guest@example.com", Name: "Guest"},
	}

	roster := reconciler.Roster(context.Background(), "meeting-1", "org-1", requested)
	require.Len(t, roster, 3)

	organizers := 0
	for _, participant := range roster {
		if participant.IsOrganizer() {
			organizers++
			assert.Equal(t, "org-1", participant.UserUID)
			assert.Equal(t, models.RSVPStatusAccepted, participant.RSVP)
			assert.NotNil(t, participant.RespondedAt)
		} else {
			assert.Equal(t, models.RSVPStatusPending, participant.RSVP)
		}
		assert.Equal(t, "meeting-1", participant.MeetingUID)
		assert.NotEmpty(t, participant.UID)
	}
	assert.Equal(t, 1, organizers)
	assert.True(t, roster[0].IsOrganizer(), "organizer row comes first")
}

func TestReconcilerRosterDeduplicatesUserReferences(t *testing.T) {
	users := &mocks.MockUserReader{}
	users.On("Get", mock.Anything, mock.Anything).Return(nil, domain.NewNotFoundError("user not found"))

	reconciler := NewParticipantReconciler(users)

	requested := []models.ParticipantInput{
		{UserUID: "user-2"},
		{UserUID: "user-2", Role: models.ParticipantRoleOptional},
		{Email: "guest@example.com"},
		{Email: "Guest@Example.com"},
		{Email: "  "},
	}

	roster := reconciler.Roster(context.Background(), "meeting-1", "org-1", requested)

	// organizer + user-2 + one guest
	require.Len(t, roster, 3)
	assert.Equal(t, "user-2", roster[1].UserUID)
	assert.Equal(t, models.ParticipantRoleRequired, roster[1].Role)
	assert.Equal(t, "guest@example.com", roster[2].Email)
}

func TestReconcilerAttendeeEmails(t *testing.T) {
	users := &mocks.MockUserReader{}
	users.On("Get", mock.Anything, "org-1").Return(&models.User{UID: "org-1", Email: "org@crm.test"}, nil)
	users.On("Get", mock.Anything, "user-2").Return(&models.User{UID: "user-2", Email: "two@crm.test"}, nil)
	users.On("Get", mock.Anything, "user-3").Return(nil, domain.NewNotFoundError("user not found"))

	reconciler := NewParticipantReconciler(users)

	requested := []models.ParticipantInput{
		{UserUID: "user-2"},
		{UserUID: "user-3"},
		{Email: "TWO@crm.test"},
		{Email: "guest@example.com"},
		{Email: "org@crm.test"},
	}

	emails := reconciler.AttendeeEmails(context.Background(), "org-1", requested)

	assert.Equal(t, []string{"guest@example.com", "two@crm.test"}, emails)
	assert.NotContains(t, emails, "org@crm.test", "organizer is never an attendee")
}

func TestReconcilerRosterEmailsFromPersistedRows(t *testing.T) {
	users := &mocks.MockUserReader{}
	users.On("Get", mock.Anything, "org-1").Return(&models.User{UID: "org-1", Email: "org@crm.test"}, nil)

	reconciler := NewParticipantReconciler(users)

	participants := []*models.Participant{
		{UID: "p0", Role: models.ParticipantRoleOrganizer, UserUID: "org-1", Email: "org@crm.test"},
		{UID: "p1", Role: models.ParticipantRoleRequired, Email: "one@example.com"},
		{UID: "p2", Role: models.ParticipantRoleOptional, Email: "two@example.com"},
	}

	emails := reconciler.RosterEmails(context.Background(), "org-1", participants)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, emails)
}
