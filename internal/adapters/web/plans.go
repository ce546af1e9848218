package web

import (
	"net/http"
	"strconv"

	"procurement-tracker/internal/app"
)

// listPlans handles GET /api/plans. Query: division?, year?.
func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	division := r.URL.Query().Get("division")
	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || n <= 0 {
			writeError(w, r, "invalid year parameter", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		year = n
	}

	result, err := h.svc.ListPlans(r.Context(), division, year)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Plans)
}

// createPlan handles POST /api/plans.
func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.CreatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Division == "" {
		req.Division = claims.Division
	}

	result, err := h.svc.CreatePlan(r.Context(), claims.UserID, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// getPlan handles GET /api/plans/{id}.
func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.GetPlan(r.Context(), planID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Plan)
}

// updatePlan handles PUT /api/plans/{id}. A sections array in the body
// replaces the entire child tree; omitting it leaves the tree untouched.
func (h *Handler) updatePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req app.UpdatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdatePlan(r.Context(), planID, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// deletePlan handles DELETE /api/plans/{id}.
func (h *Handler) deletePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	claims := authFromContext(r.Context())

	if err := h.svc.DeletePlan(r.Context(), planID, claims.UserID, claims.IsAdmin()); err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// approvePlan handles POST /api/plans/{id}/approve.
func (h *Handler) approvePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.ApprovePlan(r.Context(), planID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Plan)
}

// closePlan handles POST /api/plans/{id}/close.
func (h *Handler) closePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.ClosePlan(r.Context(), planID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Plan)
}
