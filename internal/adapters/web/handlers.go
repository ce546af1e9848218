package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"procurement-tracker/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// Health (public)
	r.Get("/api/health", h.health)

	// Auth (public)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// Protected API routes (401 JSON if unauthenticated)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Procurement plans (PPMP)
		r.Get("/api/plans", h.listPlans)
		r.Post("/api/plans", h.createPlan)
		r.Get("/api/plans/{id}", h.getPlan)
		r.Put("/api/plans/{id}", h.updatePlan)
		r.Delete("/api/plans/{id}", h.deletePlan)

		// Purchase requests
		r.Get("/api/requests", h.listRequests)
		r.Post("/api/requests", h.createRequest)
		r.Get("/api/requests/{id}", h.getRequest)
		r.Delete("/api/requests/{id}", h.deleteRequest)
		r.Post("/api/requests/{id}/cancel", h.cancelRequest)
		r.Put("/api/requests/{id}/ris", h.setRIS)
		r.Patch("/api/requests/{id}/items/{itemID}", h.updateRequestItem)

		// Sources of fund (read)
		r.Get("/api/funds", h.listFunds)
		r.Get("/api/funds/{id}", h.getFund)

		// Reports
		r.Get("/api/reports/utilization", h.utilizationReport)

		// Approval and lookup maintenance are restricted to admins.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)

			r.Post("/api/plans/{id}/approve", h.approvePlan)
			r.Post("/api/plans/{id}/close", h.closePlan)
			r.Post("/api/requests/{id}/approve", h.approveRequest)
			r.Post("/api/requests/{id}/complete", h.completeRequest)

			r.Post("/api/funds", h.createFund)
			r.Put("/api/funds/{id}", h.updateFund)
			r.Delete("/api/funds/{id}", h.deleteFund)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts a positive integer URL parameter. Writes a 400 response
// and returns false on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
