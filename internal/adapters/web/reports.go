package web

import (
	"net/http"
	"strconv"
)

// utilizationReport handles GET /api/reports/utilization. Query: division?,
// year?. Non-admin users are scoped to their own division.
func (h *Handler) utilizationReport(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	division := r.URL.Query().Get("division")
	if !claims.IsAdmin() {
		division = claims.Division
	}

	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || n <= 0 {
			writeError(w, r, "invalid year parameter", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		year = n
	}

	result, err := h.svc.GetUtilization(r.Context(), division, year)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Plans)
}
