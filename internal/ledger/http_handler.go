package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"libraryexplorer/internal/httpx"
)

// HTTPHandler exposes read-side ledger views, the withdrawal simulation and
// the earnings preview. Purchases go through the session.
type HTTPHandler struct {
	engine *Engine
}

func NewHTTPHandler(engine *Engine) *HTTPHandler {
	return &HTTPHandler{engine: engine}
}

// Get handles GET /ledger.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.engine.Snapshot(), nil)
}

type withdrawRequest struct {
	Party string `json:"party"`
}

// Withdraw handles POST /ledger/withdrawals. The acknowledgement never
// mutates balances or the transaction log.
func (h *HTTPHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	party, err := ParseParty(req.Party)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "party must be author or owner", nil)
		return
	}

	wd, err := h.engine.Withdraw(party)
	if errors.Is(err, ErrNothingToWithdraw) {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "NO_FUNDS", "No funds to withdraw.", nil)
		return
	}
	httpx.JSONSuccess(w, r, wd, nil)
}

// Preview handles GET /ledger/preview?price=9.99: the earnings breakdown
// shown before a submission, using the exact purchase arithmetic.
func (h *HTTPHandler) Preview(w http.ResponseWriter, r *http.Request) {
	price, err := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
	if err != nil || price <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "price must be a positive number", nil)
		return
	}

	authorCut, ownerCut := Split(price)
	httpx.JSONSuccess(w, r, map[string]float64{
		"price":        price,
		"platform_fee": ownerCut,
		"earnings":     authorCut,
	}, nil)
}
