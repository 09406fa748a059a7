// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/internal/logging"
	"github.com/relaycrm/scheduling-service/pkg/utils"
)

// ParticipantReconciler turns a requested roster into the participant rows to
// persist and the attendee emails to sync to the external calendar.
//
// Two invariants hold for every roster it produces: the organizer is exactly
// one row with role organizer and RSVP accepted, and no two rows share the
// same non-empty user reference.
type ParticipantReconciler struct {
	users domain.UserReader
}

// NewParticipantReconciler creates a new ParticipantReconciler.
func NewParticipantReconciler(users domain.UserReader) *ParticipantReconciler {
	return &ParticipantReconciler{users: users}
}

// Roster builds the full participant row set for a meeting: the organizer row
// first, then one row per requested entry at RSVP pending. Requested entries
// that reference the organizer, repeat a user reference, or repeat a guest
// email are dropped.
func (r *ParticipantReconciler) Roster(ctx context.Context, meetingUID, organizerUID string, requested []models.ParticipantInput) []*models.Participant {
	now := time.Now().UTC()

	organizer := &models.Participant{
		UID:         uuid.NewString(),
		MeetingUID:  meetingUID,
		UserUID:     organizerUID,
		Role:        models.ParticipantRoleOrganizer,
		RSVP:        models.RSVPStatusAccepted,
		InvitedAt:   utils.TimePtr(now),
		RespondedAt: utils.TimePtr(now),
	}
	if user := r.lookupUser(ctx, organizerUID); user != nil {
		organizer.Email = user.Email
		organizer.Name = user.Name
	}

	roster := []*models.Participant{organizer}
	seenUsers := map[string]bool{organizerUID: true}
	seenEmails := map[string]bool{}
	if organizer.Email != "" {
		seenEmails[strings.ToLower(organizer.Email)] = true
	}

	for _, entry := range requested {
		if entry.UserUID != "" {
			if seenUsers[entry.UserUID] {
				continue
			}
			seenUsers[entry.UserUID] = true
		} else {
			email := strings.ToLower(strings.TrimSpace(entry.Email))
			if email == "" || seenEmails[email] {
				continue
			}
			seenEmails[email] = true
		}

		role := entry.Role
		if role == "" || role == models.ParticipantRoleOrganizer {
			// The organizer row is never taken from the requested list.
			role = models.ParticipantRoleRequired
		}

		participant := &models.Participant{
			UID:        uuid.NewString(),
			MeetingUID: meetingUID,
			UserUID:    entry.UserUID,
			Email:      strings.TrimSpace(entry.Email),
			Name:       entry.Name,
			Role:       role,
			RSVP:       models.RSVPStatusPending,
			InvitedAt:  utils.TimePtr(now),
		}
		if participant.Email == "" && entry.UserUID != "" {
			if user := r.lookupUser(ctx, entry.UserUID); user != nil {
				participant.Email = user.Email
				if participant.Name == "" {
					participant.Name = user.Name
				}
			}
		}
		roster = append(roster, participant)
	}

	return roster
}

// AttendeeEmails derives the external attendee list for a requested roster:
// the union of literal emails and emails looked up from user references,
// de-duplicated and excluding the organizer. The result is sorted so the
// external event diff stays stable across edits.
func (r *ParticipantReconciler) AttendeeEmails(ctx context.Context, organizerUID string, requested []models.ParticipantInput) []string {
	organizerEmail := ""
	if user := r.lookupUser(ctx, organizerUID); user != nil {
		organizerEmail = strings.ToLower(user.Email)
	}

	seen := map[string]bool{}
	var emails []string
	add := func(email string) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || email == organizerEmail || seen[email] {
			return
		}
		seen[email] = true
		emails = append(emails, email)
	}

	for _, entry := range requested {
		add(entry.Email)
		if entry.UserUID != "" && entry.UserUID != organizerUID {
			if user := r.lookupUser(ctx, entry.UserUID); user != nil {
				add(user.Email)
			}
		}
	}

	sort.Strings(emails)
	return emails
}

// RosterEmails derives the attendee list from persisted participant rows, for
// external updates where no new roster was supplied.
func (r *ParticipantReconciler) RosterEmails(ctx context.Context, organizerUID string, participants []*models.Participant) []string {
	requested := make([]models.ParticipantInput, 0, len(participants))
	for _, p := range participants {
		if p.IsOrganizer() {
			continue
		}
		requested = append(requested, models.ParticipantInput{UserUID: p.UserUID, Email: p.Email})
	}
	return r.AttendeeEmails(ctx, organizerUID, requested)
}

func (r *ParticipantReconciler) lookupUser(ctx context.Context, userUID string) *models.User {
	user, err := r.users.Get(ctx, userUID)
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "error looking up user", logging.ErrKey, err, "user_uid", userUID)
		}
		return nil
	}
	return user
}
