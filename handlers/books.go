package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
)

type BooksHandler struct {
	Catalog *service.Catalog
	Log     *logger.Logger
}

// List handles GET /books?search=.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.BookInput
	if !decodeBody(w, r, &req) {
		return
	}
	book, err := h.Catalog.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "book created", "book_id", book.ID)
	writeJSON(w, http.StatusOK, book)
}

// Update handles PUT /books/{id}, replacing every field but the id and counters.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.BookInput
	if !decodeBody(w, r, &req) {
		return
	}
	book, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "book updated", "book_id", book.ID)
	writeJSON(w, http.StatusOK, book)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	audit(r, h.Log, "book deleted", "book_id", id)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Book deleted successfully"})
}
