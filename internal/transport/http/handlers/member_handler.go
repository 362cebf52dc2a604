package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
	"github.com/studentcouncil/portal/internal/service"
)

type MemberHandler struct {
	memberService *service.MemberService
}

func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.List(r.Context())
	if err != nil {
		log.Printf("ERROR list members: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if members == nil {
		members = []domain.User{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid member ID")
		return
	}

	member, err := h.memberService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Member not found")
		} else {
			log.Printf("ERROR get member: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid member ID")
		return
	}

	perf, err := h.memberService.GetPerformance(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Member not found")
		} else {
			log.Printf("ERROR get performance: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, perf)
}

func (h *MemberHandler) ListPerformance(w http.ResponseWriter, r *http.Request) {
	perfs, err := h.memberService.ListPerformance(r.Context())
	if err != nil {
		log.Printf("ERROR list performance: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if perfs == nil {
		perfs = []domain.MemberPerformance{}
	}
	writeJSON(w, http.StatusOK, perfs)
}
