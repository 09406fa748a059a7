// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/akamensky/base58"
	"github.com/google/uuid"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/internal/logging"
	"github.com/relaycrm/scheduling-service/pkg/concurrent"
	"github.com/relaycrm/scheduling-service/pkg/utils"
)

// MeetingService coordinates the meeting lifecycle: timestamp resolution,
// conferencing provisioning, row-store writes and notification fan-out.
// Local persistence is the source of truth; calendar sync is best-effort and
// never blocks the local mutation that triggered it.
type MeetingService struct {
	MeetingRepository      domain.MeetingRepository
	ParticipantRepository  domain.ParticipantRepository
	NotificationRepository domain.NotificationRepository
	NotificationSender     domain.NotificationSender
	Calendar               domain.CalendarProvider
	Resolver               *DateTimeResolver
	Reconciler             *ParticipantReconciler
	Config                 ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepository domain.MeetingRepository,
	participantRepository domain.ParticipantRepository,
	notificationRepository domain.NotificationRepository,
	notificationSender domain.NotificationSender,
	calendar domain.CalendarProvider,
	resolver *DateTimeResolver,
	reconciler *ParticipantReconciler,
	config ServiceConfig,
) *MeetingService {
	return &MeetingService{
		MeetingRepository:      meetingRepository,
		ParticipantRepository:  participantRepository,
		NotificationRepository: notificationRepository,
		NotificationSender:     notificationSender,
		Calendar:               calendar,
		Resolver:               resolver,
		Reconciler:             reconciler,
		Config:                 config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.ParticipantRepository != nil &&
		s.NotificationRepository != nil &&
		s.NotificationSender != nil &&
		s.Calendar != nil &&
		s.Resolver != nil &&
		s.Reconciler != nil
}

// CreateMeetingParams are the inputs for creating a meeting. StartDate is
// `YYYY-MM-DD`; StartTime and EndTime are `HH:MM` wall clock in Timezone.
type CreateMeetingParams struct {
	Title            string
	Description      string
	Location         string
	Color            string
	LeadUID          string
	StartDate        string
	StartTime        string
	EndTime          string
	Timezone         string
	Recurrence       models.Recurrence
	GenerateMeetLink bool
	Participants     []models.ParticipantInput
}

// UpdateMeetingParams are the inputs for updating a meeting. Nil fields are
// left unchanged; a nil Participants keeps the existing roster.
type UpdateMeetingParams struct {
	Title        *string
	Description  *string
	Location     *string
	Color        *string
	LeadUID      *string
	StartDate    *string
	StartTime    *string
	EndTime      *string
	Timezone     *string
	Recurrence   *models.Recurrence
	Status       *models.MeetingStatus
	Participants *[]models.ParticipantInput
}

// MeetingListFilter narrows ListMeetings. View is one of "", "today",
// "upcoming" or "past".
type MeetingListFilter struct {
	Status       models.MeetingStatus
	OrganizerUID string
	View         string
	From         *time.Time
	To           *time.Time
}

// CreateMeeting runs the create sequence: resolve timestamps, provision
// conferencing when requested, persist the meeting and roster, then fan out
// invite notifications.
func (s *MeetingService) CreateMeeting(ctx context.Context, organizerUID string, params *CreateMeetingParams) (*models.MeetingFull, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if organizerUID == "" {
		return nil, domain.NewValidationError("organizer is required")
	}
	if err := validateSchedule(params.Title, params.StartDate, params.StartTime, params.EndTime, params.Timezone); err != nil {
		return nil, err
	}
	if params.Recurrence == "" {
		params.Recurrence = models.RecurrenceNone
	}
	if !models.ValidRecurrence(params.Recurrence) {
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported recurrence %q", params.Recurrence))
	}

	startTime, endTime, startStr, endStr, err := s.resolveWindow(params.StartDate, params.StartTime, params.EndTime, params.Timezone)
	if err != nil {
		return nil, err
	}

	meetingUID := uuid.NewString()

	var conference models.ConferenceResult
	if params.GenerateMeetLink {
		conference = s.Calendar.CreateEvent(ctx, organizerUID, &models.CalendarEventInput{
			Title:       params.Title,
			Description: params.Description,
			Location:    params.Location,
			Start:       startStr,
			End:         endStr,
			Timezone:    params.Timezone,
			Recurrence:  params.Recurrence,
			Attendees:   s.Reconciler.AttendeeEmails(ctx, organizerUID, params.Participants),
		})
		if !conference.OK() {
			slog.InfoContext(ctx, "meeting created without full conferencing",
				"meeting_uid", meetingUID, "degraded_reason", conference.Degraded)
		}
	}

	now := time.Now().UTC()
	meeting := &models.Meeting{
		UID:             meetingUID,
		Title:           params.Title,
		Description:     params.Description,
		OrganizerUID:    organizerUID,
		StartTime:       startTime,
		EndTime:         endTime,
		Timezone:        params.Timezone,
		Location:        params.Location,
		JoinLink:        conference.JoinLink,
		CalendarEventID: conference.EventID,
		JoinCode:        generateJoinCode(),
		Status:          models.MeetingStatusScheduled,
		Recurrence:      params.Recurrence,
		Color:           params.Color,
		LeadUID:         params.LeadUID,
		CreatedAt:       utils.TimePtr(now),
		UpdatedAt:       utils.TimePtr(now),
	}

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		return nil, err
	}

	roster := s.Reconciler.Roster(ctx, meetingUID, organizerUID, params.Participants)
	for _, participant := range roster {
		if err := s.ParticipantRepository.Create(ctx, participant); err != nil {
			// Tolerated: the meeting row is the source of truth.
			slog.ErrorContext(ctx, "error persisting participant",
				logging.ErrKey, err, "meeting_uid", meetingUID, "participant_uid", participant.UID)
		}
	}

	s.notifyParticipants(ctx, meeting, roster, models.NotificationTypeMeetingInvite,
		fmt.Sprintf("You have been invited to %q", meeting.Title))

	slog.DebugContext(ctx, "created meeting", "meeting_uid", meetingUID, "organizer_uid", organizerUID)
	return &models.MeetingFull{Meeting: meeting, Participants: roster}, nil
}

// GetMeeting fetches one meeting with its participant roster.
func (s *MeetingService) GetMeeting(ctx context.Context, meetingUID string) (*models.MeetingFull, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	meeting, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	participants, err := s.ParticipantRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	return &models.MeetingFull{Meeting: meeting, Participants: participants}, nil
}

// ListMeetings fetches all meetings matching the filter, ordered by start
// time. Status filtering uses the time-derived effective status.
func (s *MeetingService) ListMeetings(ctx context.Context, filter MeetingListFilter) ([]*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	switch filter.View {
	case "", "all", "today", "upcoming", "past":
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported view %q", filter.View))
	}

	all, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meetings := make([]*models.Meeting, 0, len(all))
	for _, meeting := range all {
		if meeting == nil {
			continue
		}
		if filter.OrganizerUID != "" && meeting.OrganizerUID != filter.OrganizerUID {
			continue
		}
		if filter.Status != "" && meeting.EffectiveStatus(now) != filter.Status {
			continue
		}
		if filter.From != nil && meeting.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && meeting.StartTime.After(*filter.To) {
			continue
		}
		if !matchesView(meeting, filter.View, now) {
			continue
		}
		meetings = append(meetings, meeting)
	}

	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})
	return meetings, nil
}

// UpdateMeeting runs the update sequence: apply field changes, reconcile the
// roster when a new one was supplied, sync the external event, then fan out
// reschedule or cancellation notifications.
func (s *MeetingService) UpdateMeeting(ctx context.Context, meetingUID string, params *UpdateMeetingParams) (*models.MeetingFull, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	timeChanged, err := s.applyScheduleChange(meeting, params)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, domain.NewValidationError("title must not be empty")
		}
		meeting.Title = *params.Title
	}
	if params.Description != nil {
		meeting.Description = *params.Description
	}
	if params.Location != nil {
		meeting.Location = *params.Location
	}
	if params.Color != nil {
		meeting.Color = *params.Color
	}
	if params.LeadUID != nil {
		meeting.LeadUID = *params.LeadUID
	}
	if params.Recurrence != nil {
		if !models.ValidRecurrence(*params.Recurrence) {
			return nil, domain.NewValidationError(fmt.Sprintf("unsupported recurrence %q", *params.Recurrence))
		}
		meeting.Recurrence = *params.Recurrence
	}

	becameCancelled := false
	if params.Status != nil {
		// Only cancellation is an explicit status write; the other states are
		// derived from time by readers.
		if *params.Status != models.MeetingStatusCancelled {
			return nil, domain.NewValidationError("status can only be set to cancelled")
		}
		becameCancelled = meeting.Status != models.MeetingStatusCancelled
		meeting.Status = models.MeetingStatusCancelled
	}

	meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return nil, err
	}

	roster, err := s.reconcileRoster(ctx, meeting, params.Participants)
	if err != nil {
		return nil, err
	}

	if meeting.CalendarEventID != "" {
		if becameCancelled {
			if !s.Calendar.DeleteEvent(ctx, meeting.OrganizerUID, meeting.CalendarEventID) {
				slog.WarnContext(ctx, "external event cancellation failed", "meeting_uid", meetingUID)
			}
		} else {
			input := &models.CalendarEventInput{
				Title:       meeting.Title,
				Description: meeting.Description,
				Location:    meeting.Location,
				Start:       meeting.StartTime.In(meetingLocation(meeting)).Format(time.RFC3339),
				End:         meeting.EndTime.In(meetingLocation(meeting)).Format(time.RFC3339),
				Timezone:    meeting.Timezone,
				Recurrence:  meeting.Recurrence,
				Attendees:   s.Reconciler.RosterEmails(ctx, meeting.OrganizerUID, roster),
			}
			if !s.Calendar.UpdateEvent(ctx, meeting.OrganizerUID, meeting.CalendarEventID, input) {
				slog.WarnContext(ctx, "external event update failed", "meeting_uid", meetingUID)
			}
		}
	}

	switch {
	case becameCancelled:
		s.notifyParticipants(ctx, meeting, roster, models.NotificationTypeMeetingCancelled,
			fmt.Sprintf("%q has been cancelled", meeting.Title))
	case timeChanged:
		s.notifyParticipants(ctx, meeting, roster, models.NotificationTypeMeetingReschedule,
			fmt.Sprintf("%q has been rescheduled", meeting.Title))
	}

	slog.DebugContext(ctx, "updated meeting", "meeting_uid", meetingUID)
	return &models.MeetingFull{Meeting: meeting, Participants: roster}, nil
}

// DeleteMeeting runs the delete sequence: cancel the external event, notify
// participants, then remove the meeting and its roster.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.CalendarEventID != "" {
		if !s.Calendar.DeleteEvent(ctx, meeting.OrganizerUID, meeting.CalendarEventID) {
			slog.WarnContext(ctx, "external event cancellation failed", "meeting_uid", meetingUID)
		}
	}

	participants, err := s.ParticipantRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing participants for delete", logging.ErrKey, err, "meeting_uid", meetingUID)
		participants = nil
	}
	s.notifyParticipants(ctx, meeting, participants, models.NotificationTypeMeetingCancelled,
		fmt.Sprintf("%q has been cancelled", meeting.Title))

	if err := s.ParticipantRepository.DeleteByMeeting(ctx, meetingUID); err != nil {
		return err
	}
	if err := s.MeetingRepository.Delete(ctx, meetingUID, revision); err != nil {
		return err
	}

	slog.DebugContext(ctx, "deleted meeting", "meeting_uid", meetingUID)
	return nil
}

// resolveWindow turns the wall-clock inputs into UTC instants plus the
// RFC3339 strings handed to the calendar provider.
func (s *MeetingService) resolveWindow(startDate, startWall, endWall, timezone string) (time.Time, time.Time, string, string, error) {
	startStr := s.Resolver.Resolve(startDate, startWall, timezone, "")
	endStr := s.Resolver.Resolve(startDate, endWall, timezone, startWall)

	startTime, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, "", "", domain.NewValidationError("unresolvable start time", err)
	}
	endTime, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, "", "", domain.NewValidationError("unresolvable end time", err)
	}
	if !startTime.Before(endTime) {
		return time.Time{}, time.Time{}, "", "", domain.NewValidationError("end time must be after start time")
	}
	return startTime.UTC(), endTime.UTC(), startStr, endStr, nil
}

// applyScheduleChange recomputes the meeting window when any schedule field
// was supplied. All four fields travel together to keep the midnight
// heuristic meaningful.
func (s *MeetingService) applyScheduleChange(meeting *models.Meeting, params *UpdateMeetingParams) (bool, error) {
	if params.StartDate == nil && params.StartTime == nil && params.EndTime == nil && params.Timezone == nil {
		return false, nil
	}
	if params.StartDate == nil || params.StartTime == nil || params.EndTime == nil || params.Timezone == nil {
		return false, domain.NewValidationError("start_date, start_time, end_time and timezone must be supplied together")
	}
	if err := validateSchedule(meeting.Title, *params.StartDate, *params.StartTime, *params.EndTime, *params.Timezone); err != nil {
		return false, err
	}

	startTime, endTime, _, _, err := s.resolveWindow(*params.StartDate, *params.StartTime, *params.EndTime, *params.Timezone)
	if err != nil {
		return false, err
	}

	changed := !startTime.Equal(meeting.StartTime) || !endTime.Equal(meeting.EndTime)
	meeting.StartTime = startTime
	meeting.EndTime = endTime
	meeting.Timezone = *params.Timezone
	return changed, nil
}

// reconcileRoster replaces all non-organizer rows when a new roster was
// supplied. The organizer row survives every edit; everyone else restarts at
// RSVP pending.
func (s *MeetingService) reconcileRoster(ctx context.Context, meeting *models.Meeting, requested *[]models.ParticipantInput) ([]*models.Participant, error) {
	existing, err := s.ParticipantRepository.ListByMeeting(ctx, meeting.UID)
	if err != nil {
		return nil, err
	}
	if requested == nil {
		return existing, nil
	}

	var organizerRow *models.Participant
	for _, participant := range existing {
		if participant.IsOrganizer() && organizerRow == nil {
			organizerRow = participant
			continue
		}
		if err := s.ParticipantRepository.Delete(ctx, meeting.UID, participant.UID); err != nil {
			slog.ErrorContext(ctx, "error deleting participant",
				logging.ErrKey, err, "meeting_uid", meeting.UID, "participant_uid", participant.UID)
		}
	}

	rebuilt := s.Reconciler.Roster(ctx, meeting.UID, meeting.OrganizerUID, *requested)
	roster := make([]*models.Participant, 0, len(rebuilt))
	for _, participant := range rebuilt {
		if participant.IsOrganizer() && organizerRow != nil {
			roster = append(roster, organizerRow)
			continue
		}
		if err := s.ParticipantRepository.Create(ctx, participant); err != nil {
			slog.ErrorContext(ctx, "error persisting participant",
				logging.ErrKey, err, "meeting_uid", meeting.UID, "participant_uid", participant.UID)
			continue
		}
		roster = append(roster, participant)
	}
	return roster, nil
}

// notifyParticipants persists and publishes one notification per
// non-organizer participant with a known user reference. Failures are logged
// and never surfaced: notification delivery is fire-and-forget.
func (s *MeetingService) notifyParticipants(ctx context.Context, meeting *models.Meeting, participants []*models.Participant, notificationType models.NotificationType, message string) {
	var jobs []func() error
	for _, participant := range participants {
		if participant.IsOrganizer() || participant.UserUID == "" {
			continue
		}
		notification := &models.Notification{
			UID:        uuid.NewString(),
			UserUID:    participant.UserUID,
			Message:    message,
			Type:       notificationType,
			RelatedUID: meeting.UID,
			CreatedAt:  utils.TimePtr(time.Now().UTC()),
		}
		jobs = append(jobs, func() error {
			if err := s.NotificationRepository.Create(ctx, notification); err != nil {
				return fmt.Errorf("persisting notification for user %s: %w", notification.UserUID, err)
			}
			return s.NotificationSender.SendNotification(ctx, notification)
		})
	}
	if len(jobs) == 0 {
		return
	}

	pool := concurrent.NewWorkerPool(s.Config.NotificationWorkers)
	for _, err := range pool.RunAll(ctx, jobs...) {
		slog.ErrorContext(ctx, "error emitting notification", logging.ErrKey, err, "meeting_uid", meeting.UID)
	}
}

// matchesView applies the calendar view filters. "today" is evaluated in the
// meeting's own timezone so an evening meeting in Kolkata does not leak into
// tomorrow's list.
func matchesView(meeting *models.Meeting, view string, now time.Time) bool {
	switch view {
	case "", "all":
		return true
	case "today":
		location := meetingLocation(meeting)
		return meeting.StartTime.In(location).Format(dateLayout) == now.In(location).Format(dateLayout)
	case "upcoming":
		return meeting.StartTime.After(now) && meeting.Status != models.MeetingStatusCancelled
	case "past":
		return meeting.EndTime.Before(now)
	default:
		return false
	}
}

func meetingLocation(meeting *models.Meeting) *time.Location {
	location, err := time.LoadLocation(meeting.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

// validateSchedule checks the wall-clock inputs shared by create and update.
func validateSchedule(title, startDate, startTime, endTime, timezone string) error {
	if title == "" {
		return domain.NewValidationError("title is required")
	}
	if _, err := time.Parse(dateLayout, startDate); err != nil {
		return domain.NewValidationError("start_date must be YYYY-MM-DD", err)
	}
	if _, err := time.Parse(wallLayout, startTime); err != nil {
		return domain.NewValidationError("start_time must be HH:MM", err)
	}
	if _, err := time.Parse(wallLayout, endTime); err != nil {
		return domain.NewValidationError("end_time must be HH:MM", err)
	}
	if timezone == "" {
		return domain.NewValidationError("timezone is required")
	}
	return nil
}

// generateJoinCode mints the short human-shareable meeting code.
func generateJoinCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:8]
	}
	return base58.Encode(buf)
}
