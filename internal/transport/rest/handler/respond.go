package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"drawit/internal/service"
)

// apiResponse is the envelope every REST endpoint answers with.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Message: message})
}

// writeServiceError maps service sentinel errors to HTTP statuses. Unknown
// errors are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrLobbyNotFound),
		errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrDrawingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotHost),
		errors.Is(err, service.ErrLobbyLocked),
		errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrLobbyFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrMaxBelowPlayers),
		errors.Is(err, service.ErrNotEnoughPlays),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrDrawingIncomplete):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
