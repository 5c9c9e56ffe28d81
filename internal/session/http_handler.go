package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/httpx"
	"libraryexplorer/internal/ledger"
	"libraryexplorer/internal/metrics"
)

// HTTPHandler is the presentation collaborator's surface over the session. It
// only invokes orchestration operations and renders their resulting state.
type HTTPHandler struct {
	session *Session
	metrics *metrics.Registry
}

func NewHTTPHandler(s *Session, m *metrics.Registry) *HTTPHandler {
	return &HTTPHandler{session: s, metrics: m}
}

// Search handles GET /search?q=&type=&page=
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind := catalog.KindBooks
	if t := query.Get("type"); t != "" {
		var err error
		kind, err = catalog.ParseKind(t)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "type must be books or authors", nil)
			return
		}
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	if h.metrics != nil {
		h.metrics.Searches.Inc()
	}

	state, err := h.session.Search(r.Context(), query.Get("q"), kind, page)
	if errors.Is(err, ErrStaleResult) {
		httpx.JSONSuccess(w, r, state, map[string]interface{}{"stale": true})
		return
	}
	if state.Failed && h.metrics != nil {
		h.metrics.SearchFailures.Inc()
	}

	httpx.JSONSuccess(w, r, state, map[string]interface{}{
		"page":        state.Page,
		"total":       state.TotalFound,
		"total_pages": state.TotalPages,
	})
}

// Overview handles GET /session: the full sidebar state.
func (h *HTTPHandler) Overview(w http.ResponseWriter, r *http.Request) {
	sel, _ := h.session.CurrentSelection()
	var selection interface{}
	if sel.Key != "" {
		selection = sel
	}

	httpx.JSONSuccess(w, r, map[string]interface{}{
		"search":          h.session.SearchState(),
		"selection":       selection,
		"user_books":      h.session.Shelf().All(),
		"saved_books":     h.session.SavedBooks(),
		"purchased_books": h.session.PurchasedUserBooks(),
		"ledger":          h.session.Ledger().Snapshot(),
	}, nil)
}

type selectRequest struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Select handles POST /session/selection. The response carries the partial
// record; enrichment lands asynchronously and is visible via GetSelection.
func (h *HTTPHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	kind, err := catalog.ParseKind(req.Type)
	if err != nil || req.Key == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "key and type are required", nil)
		return
	}

	sel, err := h.session.SelectKey(r.Context(), req.Key, kind)
	if err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Item not found in current results", nil)
		return
	}
	httpx.JSONSuccess(w, r, sel, nil)
}

// GetSelection handles GET /session/selection.
func (h *HTTPHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.session.CurrentSelection()
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Nothing selected", nil)
		return
	}
	httpx.JSONSuccess(w, r, sel, nil)
}

// ClearSelection handles DELETE /session/selection.
func (h *HTTPHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.session.ClearSelection()
	httpx.JSONSuccessNoContent(w)
}

// ToggleSave handles POST /books/{key}/save.
func (h *HTTPHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	saved, err := h.session.ToggleSave(key)
	if err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]interface{}{
		"key":      key,
		"is_saved": saved,
	}, nil)
}

// Purchase handles POST /books/{key}/purchase.
func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	tx, err := h.session.Purchase(key)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	case errors.Is(err, ledger.ErrNoPrice):
		// Unpriced books skip the purchase silently.
		httpx.JSONSuccess(w, r, map[string]interface{}{"skipped": true}, nil)
		return
	case err != nil:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	if h.metrics != nil {
		h.metrics.Purchases.Inc()
		h.metrics.PurchaseVolume.Add(tx.Price)
	}
	httpx.JSONSuccessCreated(w, r, tx)
}
