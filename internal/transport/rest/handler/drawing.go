package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"drawit/internal/model"
	"drawit/internal/service"
	"drawit/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// DrawingHandler handles drawing submission and rating endpoints
type DrawingHandler struct {
	drawingSvc *service.DrawingService
}

// NewDrawingHandler creates a new drawing handler
func NewDrawingHandler(drawingSvc *service.DrawingService) *DrawingHandler {
	return &DrawingHandler{drawingSvc: drawingSvc}
}

// Create handles POST /api/drawings
func (h *DrawingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	drawing, err := h.drawingSvc.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Drawing saved", drawing)
}

// Rate handles POST /api/drawings/{drawingId}/rate
func (h *DrawingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req model.RateDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	drawing, err := h.drawingSvc.Rate(r.Context(), mux.Vars(r)["drawingId"], middleware.GetUserID(r.Context()), req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Rating recorded", drawing)
}

// ListByGame handles GET /api/games/{gameId}/drawings
func (h *DrawingHandler) ListByGame(w http.ResponseWriter, r *http.Request) {
	drawings, err := h.drawingSvc.ListByGame(r.Context(), mux.Vars(r)["gameId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", drawings)
}

// Top handles GET /api/drawings/top
func (h *DrawingHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top, err := h.drawingSvc.Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", top)
}
