package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/service"
)

type DashboardHandler struct {
	Reporting *service.Reporting
	Log       *logger.Logger
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reporting.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
