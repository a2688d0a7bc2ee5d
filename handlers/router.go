package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/middleware"
	"github.com/kevinaaaquil/library/backend/service"
)

type RouterDeps struct {
	Catalog    *service.Catalog
	Membership *service.Membership
	Lending    *service.Lending
	Reporting  *service.Reporting
	Log        *logger.Logger
	// Auth is nil when authentication is disabled; otherwise every
	// mutating route requires a token signed with Auth.JWTSecret.
	Auth *AuthHandler
}

func NewRouter(d RouterDeps) http.Handler {
	books := &BooksHandler{Catalog: d.Catalog, Log: d.Log}
	members := &MembersHandler{Membership: d.Membership, Log: d.Log}
	txs := &TransactionsHandler{Lending: d.Lending, Log: d.Log}
	dashboard := &DashboardHandler{Reporting: d.Reporting, Log: d.Log}

	protected := func(r chi.Router) {
		if d.Auth != nil {
			r.Use(middleware.Auth(d.Auth.JWTSecret))
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the Library Management System API"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Auth != nil {
		r.Post("/auth/login", d.Auth.Login)
	}

	r.Route("/books", func(r chi.Router) {
		r.Get("/", books.List)
		r.Get("/{id}", books.Get)
		r.Group(func(r chi.Router) {
			protected(r)
			r.Post("/", books.Create)
			r.Put("/{id}", books.Update)
			r.Delete("/{id}", books.Delete)
		})
	})
	r.Route("/members", func(r chi.Router) {
		r.Get("/", members.List)
		r.Get("/{id}", members.Get)
		r.Group(func(r chi.Router) {
			protected(r)
			r.Post("/", members.Create)
			r.Put("/{id}", members.Update)
			r.Delete("/{id}", members.Delete)
		})
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", txs.List)
		r.Group(func(r chi.Router) {
			protected(r)
			r.Post("/issue", txs.Issue)
			r.Post("/return/{id}", txs.Return)
		})
	})
	r.Get("/dashboard/stats", dashboard.Stats)

	return r
}
