package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/service"
	"github.com/studentcouncil/portal/internal/transport/http/middleware"
	"github.com/studentcouncil/portal/pkg/validator"
)

type DiscussionHandler struct {
	discussionService *service.DiscussionService
}

func NewDiscussionHandler(discussionService *service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

func (h *DiscussionHandler) Post(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var input service.PostMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessage(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.discussionService.Post(r.Context(), userID, id, input)
	if err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Meeting not found")
		} else {
			log.Printf("ERROR post message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var before *uuid.UUID
	if v := r.URL.Query().Get("before"); v != "" {
		b, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid before cursor")
			return
		}
		before = &b
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.discussionService.List(r.Context(), id, before, limit)
	if err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Meeting not found")
		} else {
			log.Printf("ERROR list messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())

	messageID, err := uuid.Parse(r.PathValue("msgId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := h.discussionService.Delete(r.Context(), userID, role, messageID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotMessageOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender or a controller can delete a message")
		default:
			log.Printf("ERROR delete message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
