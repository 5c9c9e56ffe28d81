package search

import (
	"net/http"
	"strconv"

	"libraryexplorer/internal/httpx"
	"libraryexplorer/internal/metrics"
)

// HTTPHandler serves the stateless browse surface of the orchestrator.
// Session-scoped search goes through the session handler.
type HTTPHandler struct {
	svc     *Service
	metrics *metrics.Registry
}

func NewHTTPHandler(svc *Service, m *metrics.Registry) *HTTPHandler {
	return &HTTPHandler{svc: svc, metrics: m}
}

// BrowseSubject handles GET /subjects/{subject}?limit=10.
func (h *HTTPHandler) BrowseSubject(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("subject")
	if subject == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "subject is required", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if h.metrics != nil {
		h.metrics.SubjectBrowses.Inc()
	}

	books, err := h.svc.BrowseSubject(r.Context(), subject, limit)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch results. Please try again.", nil)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"subject": subject, "total": len(books)})
}
