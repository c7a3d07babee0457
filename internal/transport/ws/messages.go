package ws

import "drawit/internal/model"

// Inbound message types.
const (
	MsgJoinLobby        = "join_lobby"
	MsgLeaveLobby       = "leave_lobby"
	MsgSetReady         = "set_ready"
	MsgRequestLobbies   = "request_lobbies_update"
	MsgGameStateRequest = "game_state_request"
	MsgStartGame        = "start_game"
	MsgChatMessage      = "chat_message"
)

// Outbound message types.
const (
	MsgConnectionEstablished = "connection_established"
	MsgLobbiesUpdate         = "lobbies_update"
	MsgLobbyJoined           = "lobby_joined"
	MsgLobbyState            = "lobby_state"
	MsgGameState             = "game_state"
	MsgError                 = "error"
	MsgAuthRequired          = "auth_required"
)

// inboundMessage is the envelope decoded from every client frame. Field
// names follow the client protocol: start_game uses lobbyId/gameId, chat and
// state requests use game_id.
type inboundMessage struct {
	Type      string `json:"type"`
	LobbyID   string `json:"lobbyId,omitempty"`
	GameID    string `json:"gameId,omitempty"`
	GameRef   string `json:"game_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Ready     *bool  `json:"ready,omitempty"`
}

// statusMessage covers connection_established, auth_required and error.
type statusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorMessage(message string) statusMessage {
	return statusMessage{Type: MsgError, Message: message}
}

// lobbyListing is one entry of a lobbies_update payload: the lobby summary
// with host and players resolved inline.
type lobbyListing struct {
	model.LobbySummary
	HostUser *model.PlayerInfo  `json:"hostUser"`
	Players  []model.PlayerInfo `json:"players"`
}

type lobbiesPayload struct {
	Lobbies []lobbyListing `json:"lobbies"`
	Event   string         `json:"event"`
}

type lobbiesUpdateMessage struct {
	Type    string         `json:"type"`
	Payload lobbiesPayload `json:"payload"`
}

// lobbyStatePayload carries the lobby summary with the host delivered
// alongside it, never nested inside the lobby object.
type lobbyStatePayload struct {
	Lobby    model.LobbySummary `json:"lobby"`
	HostUser *model.PlayerInfo  `json:"hostUser"`
	Players  []model.PlayerInfo `json:"players"`
	Event    string             `json:"event"`
	UserID   string             `json:"user_id,omitempty"`
}

type lobbyStateMessage struct {
	Type    string            `json:"type"`
	LobbyID string            `json:"lobbyId,omitempty"`
	Payload lobbyStatePayload `json:"payload"`
}

type gamePayload struct {
	Event         string            `json:"event,omitempty"`
	Game          *model.GameView   `json:"game"`
	CurrentDrawer *model.PlayerInfo `json:"currentDrawer,omitempty"`
	WordToGuess   string            `json:"wordToGuess,omitempty"`
	TimeRemaining int               `json:"timeRemaining,omitempty"`
}

type gameStateMessage struct {
	Type        string      `json:"type"`
	GamePayload gamePayload `json:"gamePayload"`
}

type chatSender struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

type chatBroadcast struct {
	Type      string     `json:"type"`
	GameID    string     `json:"game_id"`
	Message   string     `json:"message"`
	Timestamp int64      `json:"timestamp"`
	Sender    chatSender `json:"sender"`
}
