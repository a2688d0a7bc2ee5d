package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

type MembersHandler struct {
	Membership *service.Membership
	Log        *logger.Logger
}

func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.Membership.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.Membership.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MemberInput
	if !decodeBody(w, r, &req) {
		return
	}
	member, err := h.Membership.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "member created", "member_id", member.ID)
	writeJSON(w, http.StatusOK, member)
}

func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.MemberInput
	if !decodeBody(w, r, &req) {
		return
	}
	member, err := h.Membership.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "member updated", "member_id", member.ID)
	writeJSON(w, http.StatusOK, member)
}

func (h *MembersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Membership.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "member deleted", "member_id", id)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Member deleted successfully"})
}
