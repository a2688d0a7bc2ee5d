package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

type TransactionsHandler struct {
	Lending *service.Lending
	Log     *logger.Logger
}

// Issue handles POST /transactions/issue.
func (h *TransactionsHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req models.IssueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tx, err := h.Lending.Issue(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "issue recorded", "transaction_id", tx.ID)
	writeJSON(w, http.StatusOK, tx)
}

// Return handles POST /transactions/return/{id}.
func (h *TransactionsHandler) Return(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Lending.Return(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "return recorded", "transaction_id", tx.ID)
	writeJSON(w, http.StatusOK, tx)
}

// List handles GET /transactions with optional status, member_id and book_id filters.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TransactionFilter{
		Status:   models.TransactionStatus(q.Get("status")),
		MemberID: q.Get("member_id"),
		BookID:   q.Get("book_id"),
	}
	switch filter.Status {
	case "", models.StatusIssued, models.StatusReturned:
	default:
		writeError(w, http.StatusBadRequest, "InvalidStatus", "status must be issued or returned")
		return
	}
	txs, err := h.Lending.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
