// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/internal/service"
)

var validate = validator.New()

type participantRequest struct {
	UserUID string `json:"user_uid"`
	Email   string `json:"email" validate:"omitempty,email"`
	Name    string `json:"name"`
	Role    string `json:"role" validate:"omitempty,oneof=organizer required optional"`
}

type createMeetingRequest struct {
	Title            string               `json:"title" validate:"required,max=200"`
	Description      string               `json:"description"`
	Location         string               `json:"location"`
	Color            string               `json:"color"`
	LeadUID          string               `json:"lead_uid"`
	StartDate        string               `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime        string               `json:"start_time" validate:"required,datetime=15:04"`
	EndTime          string               `json:"end_time" validate:"required,datetime=15:04"`
	Timezone         string               `json:"timezone" validate:"required"`
	Recurrence       string               `json:"recurrence" validate:"omitempty,oneof=none daily weekly bi_weekly monthly"`
	GenerateMeetLink bool                 `json:"generate_meet_link"`
	Participants     []participantRequest `json:"participants" validate:"dive"`
}

type updateMeetingRequest struct {
	Title            *string               `json:"title" validate:"omitempty,max=200"`
	Description      *string               `json:"description"`
	Location         *string               `json:"location"`
	Color            *string               `json:"color"`
	LeadUID          *string               `json:"lead_uid"`
	StartDate        *string               `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime        *string               `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime          *string               `json:"end_time" validate:"omitempty,datetime=15:04"`
	Timezone         *string               `json:"timezone"`
	Recurrence       *string               `json:"recurrence" validate:"omitempty,oneof=none daily weekly bi_weekly monthly"`
	Status           *string               `json:"status" validate:"omitempty,oneof=cancelled"`
	Participants     *[]participantRequest `json:"participants" validate:"omitempty,dive"`
}

// MeetingHandler serves the /meetings routes.
type MeetingHandler struct {
	meetings *service.MeetingService
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(meetings *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

// List handles GET /meetings with status, organizer, date-range and view
// filters.
func (h *MeetingHandler) List(c *fiber.Ctx) error {
	filter := service.MeetingListFilter{
		Status:       models.MeetingStatus(c.Query("status")),
		OrganizerUID: c.Query("organizer"),
		View:         c.Query("view"),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, domain.NewValidationError("from must be RFC3339", err))
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, domain.NewValidationError("to must be RFC3339", err))
		}
		filter.To = &to
	}

	meetings, err := h.meetings.ListMeetings(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, meetings)
}

// Create handles POST /meetings. The authenticated principal becomes the
// organizer.
func (h *MeetingHandler) Create(c *fiber.Ctx) error {
	var req createMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domain.NewValidationError("invalid request body", err))
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, domain.NewValidationError(err.Error()))
	}

	params := &service.CreateMeetingParams{
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		Color:            req.Color,
		LeadUID:          req.LeadUID,
		StartDate:        req.StartDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Timezone:         req.Timezone,
		Recurrence:       models.Recurrence(req.Recurrence),
		GenerateMeetLink: req.GenerateMeetLink,
		Participants:     toParticipantInputs(req.Participants),
	}

	meeting, err := h.meetings.CreateMeeting(c.UserContext(), requestPrincipal(c), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, meeting)
}

// Get handles GET /meetings/:uid.
func (h *MeetingHandler) Get(c *fiber.Ctx) error {
	meeting, err := h.meetings.GetMeeting(c.UserContext(), c.Params("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, meeting)
}

// Update handles PUT /meetings/:uid.
func (h *MeetingHandler) Update(c *fiber.Ctx) error {
	var req updateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domain.NewValidationError("invalid request body", err))
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, domain.NewValidationError(err.Error()))
	}

	params := &service.UpdateMeetingParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Color:       req.Color,
		LeadUID:     req.LeadUID,
		StartDate:   req.StartDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Timezone:    req.Timezone,
	}
	if req.Recurrence != nil {
		recurrence := models.Recurrence(*req.Recurrence)
		params.Recurrence = &recurrence
	}
	if req.Status != nil {
		status := models.MeetingStatus(*req.Status)
		params.Status = &status
	}
	if req.Participants != nil {
		inputs := toParticipantInputs(*req.Participants)
		params.Participants = &inputs
	}

	meeting, err := h.meetings.UpdateMeeting(c.UserContext(), c.Params("uid"), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, meeting)
}

// Delete handles DELETE /meetings/:uid.
func (h *MeetingHandler) Delete(c *fiber.Ctx) error {
	uid := c.Params("uid")
	if err := h.meetings.DeleteMeeting(c.UserContext(), uid); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, fiber.Map{"uid": uid, "deleted": true})
}

func toParticipantInputs(requests []participantRequest) []models.ParticipantInput {
	inputs := make([]models.ParticipantInput, 0, len(requests))
	for _, r := range requests {
		inputs = append(inputs, models.ParticipantInput{
			UserUID: r.UserUID,
			Email:   r.Email,
			Name:    r.Name,
			Role:    models.ParticipantRole(r.Role),
		})
	}
	return inputs
}
