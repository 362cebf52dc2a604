package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
	"github.com/studentcouncil/portal/internal/service"
	"github.com/studentcouncil/portal/internal/transport/http/middleware"
	"github.com/studentcouncil/portal/pkg/validator"
)

type MeetingHandler struct {
	meetingService  *service.MeetingService
	documentService *service.DocumentService
}

func NewMeetingHandler(meetingService *service.MeetingService, documentService *service.DocumentService) *MeetingHandler {
	return &MeetingHandler{
		meetingService:  meetingService,
		documentService: documentService,
	}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateMeetingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMeeting(input.Title, input.Date, input.StartTime, input.EndTime, input.Venue, input.Chairperson, input.Agenda); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	m, err := h.meetingService.Create(r.Context(), userID, input)
	if err != nil {
		log.Printf("ERROR create meeting: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.MeetingFilter{
		Status:   domain.MeetingStatus(q.Get("status")),
		Type:     domain.MeetingType(q.Get("type")),
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
	}
	if v := q.Get("archived"); v != "" {
		archived := v == "true"
		filter.Archived = &archived
	}
	if v := q.Get("published"); v != "" {
		published := v == "true"
		filter.Published = &published
	}

	meetings, err := h.meetingService.List(r.Context(), filter)
	if err != nil {
		log.Printf("ERROR list meetings: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if meetings == nil {
		meetings = []domain.Meeting{}
	}
	writeJSON(w, http.StatusOK, meetings)
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	m, err := h.meetingService.Get(r.Context(), id)
	if err != nil {
		h.writeMeetingError(w, "get meeting", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var input service.UpdateMeetingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	m, err := h.meetingService.Update(r.Context(), userID, role, id, input)
	if err != nil {
		h.writeMeetingError(w, "update meeting", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) UpdateMinutes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var input service.UpdateMinutesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	m, err := h.meetingService.UpdateMinutes(r.Context(), userID, role, id, input)
	if err != nil {
		h.writeMeetingError(w, "update minutes", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	m, sent, err := h.meetingService.Publish(r.Context(), userID, id)
	if err != nil {
		h.writeMeetingError(w, "publish meeting", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meeting":            m,
		"notifications_sent": sent,
	})
}

func (h *MeetingHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	m, err := h.meetingService.Archive(r.Context(), userID, role, id)
	if err != nil {
		h.writeMeetingError(w, "archive meeting", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	m, err := h.meetingService.Restore(r.Context(), userID, role, id)
	if err != nil {
		h.writeMeetingError(w, "restore meeting", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional on delete.
	json.NewDecoder(r.Body).Decode(&body)

	if err := h.meetingService.Delete(r.Context(), userID, role, id, body.Reason); err != nil {
		h.writeMeetingError(w, "delete meeting", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MeetingHandler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var input service.AttendeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Attendee user_id is required")
		return
	}

	m, err := h.meetingService.AddAttendee(r.Context(), userID, role, id, input)
	if err != nil {
		h.writeMeetingError(w, "add attendee", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) CompleteActionItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(r.PathValue("itemId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid action item ID")
		return
	}

	var body struct {
		CompletionDate *time.Time `json:"completion_date,omitempty"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	m, err := h.meetingService.CompleteActionItem(r.Context(), userID, role, id, itemID, body.CompletionDate)
	if err != nil {
		h.writeMeetingError(w, "complete action item", err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	data, contentType, filename, err := h.documentService.Render(r.Context(), id)
	if err != nil {
		h.writeMeetingError(w, "render document", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)
}

func meetingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid meeting ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *MeetingHandler) writeMeetingError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMeetingNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Meeting not found")
	case errors.Is(err, service.ErrActionItemNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Action item not found")
	case errors.Is(err, service.ErrNotMeetingOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the meeting creator, chairperson or a controller can do this")
	case errors.Is(err, service.ErrNotController):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only a controller can do this")
	case errors.Is(err, service.ErrMeetingNotCompleted):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "Only completed meetings can be archived")
	case errors.Is(err, service.ErrMeetingArchived):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "Archived meetings cannot be modified")
	case errors.Is(err, service.ErrMinutesMissing):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "Minutes summary is required before publishing")
	case errors.Is(err, service.ErrNotPublished):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "Meeting minutes have not been published")
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
