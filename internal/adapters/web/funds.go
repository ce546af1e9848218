package web

import (
	"net/http"

	"procurement-tracker/internal/app"
)

// listFunds handles GET /api/funds. Query: division?.
func (h *Handler) listFunds(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListFunds(r.Context(), r.URL.Query().Get("division"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Funds)
}

// getFund handles GET /api/funds/{id}.
func (h *Handler) getFund(w http.ResponseWriter, r *http.Request) {
	fundID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.GetFund(r.Context(), fundID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Fund)
}

// createFund handles POST /api/funds.
func (h *Handler) createFund(w http.ResponseWriter, r *http.Request) {
	var req app.FundRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateFund(r.Context(), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Fund)
}

// updateFund handles PUT /api/funds/{id}.
func (h *Handler) updateFund(w http.ResponseWriter, r *http.Request) {
	fundID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req app.FundRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateFund(r.Context(), fundID, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Fund)
}

// deleteFund handles DELETE /api/funds/{id}.
func (h *Handler) deleteFund(w http.ResponseWriter, r *http.Request) {
	fundID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteFund(r.Context(), fundID); err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
