package handler

import (
	"encoding/json"
	"net/http"

	"drawit/internal/model"
	"drawit/internal/service"
	"drawit/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// lobbyView is the REST wire form of a lobby: the summary with host and
// players resolved alongside it.
type lobbyView struct {
	model.LobbySummary
	HostUser *model.PlayerInfo  `json:"hostUser"`
	Players  []model.PlayerInfo `json:"players"`
}

func lobbyViewOf(d *model.LobbyDetail) lobbyView {
	return lobbyView{
		LobbySummary: d.Lobby.Summary(len(d.Players)),
		HostUser:     d.HostInfo(),
		Players:      d.PlayerInfos(),
	}
}

// LobbyHandler handles lobby and game endpoints
type LobbyHandler struct {
	lobbySvc *service.LobbyService
	gameSvc  *service.GameService
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbySvc *service.LobbyService, gameSvc *service.GameService) *LobbyHandler {
	return &LobbyHandler{lobbySvc: lobbySvc, gameSvc: gameSvc}
}

// List handles GET /api/lobbies
func (h *LobbyHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.lobbySvc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]lobbyView, len(details))
	for i := range details {
		views[i] = lobbyViewOf(&details[i])
	}
	writeData(w, http.StatusOK, "", views)
}

// Create handles POST /api/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.lobbySvc.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Lobby created", lobbyViewOf(detail))
}

// Get handles GET /api/lobbies/{lobbyId}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.lobbySvc.Get(r.Context(), mux.Vars(r)["lobbyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", lobbyViewOf(detail))
}

// Join handles POST /api/lobbies/{lobbyId}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req model.JoinLobbyRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	detail, err := h.lobbySvc.Join(r.Context(), mux.Vars(r)["lobbyId"], middleware.GetUserID(r.Context()), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Joined lobby", lobbyViewOf(detail))
}

// Leave handles POST /api/lobbies/{lobbyId}/leave
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.lobbySvc.Leave(r.Context(), mux.Vars(r)["lobbyId"], middleware.GetUserID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Left lobby", nil)
}

// UpdateSettings handles PUT /api/lobbies/{lobbyId}/settings
func (h *LobbyHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateLobbySettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lobby, err := h.lobbySvc.UpdateSettings(r.Context(), mux.Vars(r)["lobbyId"], middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Settings updated", lobby)
}

// SetLocked handles POST /api/lobbies/{lobbyId}/lock
func (h *LobbyHandler) SetLocked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locked bool `json:"locked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lobby, err := h.lobbySvc.SetLocked(r.Context(), mux.Vars(r)["lobbyId"], middleware.GetUserID(r.Context()), req.Locked)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Lobby lock updated", lobby)
}

// StartGame handles POST /api/lobbies/{lobbyId}/start-game
func (h *LobbyHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameSvc.Start(r.Context(), mux.Vars(r)["lobbyId"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Game started", game)
}

// GetGame handles GET /api/games/{gameId}
func (h *LobbyHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	detail, err := h.gameSvc.Get(r.Context(), mux.Vars(r)["gameId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", detail.View())
}
