package web

import (
	"net/http"

	"procurement-tracker/internal/app"
)

// listRequests handles GET /api/requests. Query: status?, mine?. Non-admin
// users always see only their own requests.
func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	status := r.URL.Query().Get("status")

	userID := claims.UserID
	if claims.IsAdmin() && r.URL.Query().Get("mine") != "true" {
		userID = 0 // no user filter
	}

	result, err := h.svc.ListRequests(r.Context(), userID, status)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Requests)
}

// createRequest handles POST /api/requests.
func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.CreateRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateRequest(r.Context(), claims.UserID, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Request)
}

// getRequest handles GET /api/requests/{id}.
func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.GetRequest(r.Context(), requestID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Request)
}

// deleteRequest handles DELETE /api/requests/{id}.
func (h *Handler) deleteRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	claims := authFromContext(r.Context())

	if err := h.svc.DeleteRequest(r.Context(), requestID, claims.UserID, claims.IsAdmin()); err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// approveRequest handles POST /api/requests/{id}/approve.
func (h *Handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.ApproveRequest(r.Context(), requestID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Request)
}

// completeRequest handles POST /api/requests/{id}/complete.
func (h *Handler) completeRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.CompleteRequest(r.Context(), requestID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Request)
}

// cancelRequest handles POST /api/requests/{id}/cancel.
func (h *Handler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.CancelRequest(r.Context(), requestID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Request)
}

// setRIS handles PUT /api/requests/{id}/ris. Body: { ris_status }.
func (h *Handler) setRIS(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		RISStatus string `json:"ris_status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.SetRIS(r.Context(), requestID, body.RISStatus)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Request)
}

// updateRequestItem handles PATCH /api/requests/{id}/items/{itemID}.
func (h *Handler) updateRequestItem(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}

	var req app.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateRequestItem(r.Context(), requestID, itemID, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Request)
}
