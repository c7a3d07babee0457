package ws

import (
	"context"
	"log"
	"time"

	"drawit/internal/repository"
)

// Router decodes inbound frames and dispatches them to the realtime
// components. Unknown message types are logged and dropped; malformed
// frames and missing fields get an error reply on the originating
// connection and never disturb other clients.
type Router struct {
	registry    *Registry
	dispatcher  *Dispatcher
	reconciler  *Reconciler
	coordinator *Coordinator
	users       repository.UserRepo
	games       repository.GameRepo
}

// NewRouter creates a message router.
func NewRouter(
	registry *Registry,
	dispatcher *Dispatcher,
	reconciler *Reconciler,
	coordinator *Coordinator,
	users repository.UserRepo,
	games repository.GameRepo,
) *Router {
	return &Router{
		registry:    registry,
		dispatcher:  dispatcher,
		reconciler:  reconciler,
		coordinator: coordinator,
		users:       users,
		games:       games,
	}
}

// Handle processes one decoded frame from an authenticated connection. Any
// inbound traffic counts as activity for staleness purposes.
func (rt *Router) Handle(ctx context.Context, conn *Conn, msg inboundMessage) {
	conn.touch()

	switch msg.Type {
	case MsgJoinLobby:
		if msg.LobbyID == "" {
			rt.dispatcher.Reply(conn, errorMessage("lobbyId is required"))
			return
		}
		rt.coordinator.JoinLobby(ctx, conn, msg.LobbyID)

	case MsgLeaveLobby:
		rt.handleLeaveLobby(ctx, conn)

	case MsgSetReady:
		rt.handleSetReady(ctx, conn, msg)

	case MsgRequestLobbies:
		rt.reconciler.SendLobbyList(ctx, conn, "initial")

	case MsgGameStateRequest:
		if msg.GameRef == "" {
			rt.dispatcher.Reply(conn, errorMessage("game_id is required"))
			return
		}
		rt.handleGameStateRequest(ctx, conn, msg.GameRef)

	case MsgStartGame:
		if msg.LobbyID == "" || msg.GameID == "" {
			rt.dispatcher.Reply(conn, errorMessage("lobbyId and gameId are required"))
			return
		}
		rt.coordinator.StartGame(ctx, conn, msg.LobbyID, msg.GameID)

	case MsgChatMessage:
		if msg.GameRef == "" || msg.Message == "" {
			rt.dispatcher.Reply(conn, errorMessage("game_id and message are required"))
			return
		}
		rt.handleChat(ctx, conn, msg)

	default:
		log.Printf("Unknown message type %q from user %s", msg.Type, conn.UserID)
	}
}

// handleLeaveLobby drops every lobby subscription the connection holds and
// pushes fresh state to the lobbies it left.
func (rt *Router) handleLeaveLobby(ctx context.Context, conn *Conn) {
	for _, lobbyID := range rt.registry.UnsubscribeAllLobbies(conn.UserID) {
		rt.reconciler.NotifyLobbyChange(ctx, lobbyID)
	}
}

// handleSetReady persists the ready flag on the user record and refreshes
// every lobby the user is watching. An absent flag means ready.
func (rt *Router) handleSetReady(ctx context.Context, conn *Conn, msg inboundMessage) {
	user, err := rt.users.GetByUserID(ctx, conn.UserID)
	if err != nil {
		log.Printf("Failed to load user %s for ready update: %v", conn.UserID, err)
		rt.dispatcher.Reply(conn, errorMessage("Failed to update ready state"))
		return
	}
	if user == nil {
		rt.dispatcher.Reply(conn, errorMessage("User not found"))
		return
	}

	ready := true
	if msg.Ready != nil {
		ready = *msg.Ready
	}
	user.Ready = ready
	if err := rt.users.Update(ctx, user); err != nil {
		log.Printf("Failed to persist ready state for user %s: %v", conn.UserID, err)
		rt.dispatcher.Reply(conn, errorMessage("Failed to update ready state"))
		return
	}

	for _, lobbyID := range rt.registry.LobbiesOf(conn.UserID) {
		rt.reconciler.NotifyLobbyChange(ctx, lobbyID)
	}
}

// handleGameStateRequest replies with the current game state and subscribes
// the requester to further updates for that game.
func (rt *Router) handleGameStateRequest(ctx context.Context, conn *Conn, gameID string) {
	game, err := rt.games.GetByID(ctx, gameID)
	if err != nil {
		log.Printf("Failed to load game %s: %v", gameID, err)
		rt.dispatcher.Reply(conn, errorMessage("Failed to load game state"))
		return
	}
	if game == nil {
		rt.dispatcher.Reply(conn, errorMessage("Game not found"))
		return
	}

	detail, err := rt.reconciler.resolveGame(ctx, game)
	if err != nil {
		log.Printf("Failed to resolve game %s: %v", gameID, err)
		rt.dispatcher.Reply(conn, errorMessage("Failed to load game state"))
		return
	}

	rt.dispatcher.Reply(conn, gameStateMessage{
		Type: MsgGameState,
		GamePayload: gamePayload{
			Event:         "update",
			Game:          detail.View(),
			CurrentDrawer: detail.DrawerInfo(),
			WordToGuess:   game.WordToGuess,
			TimeRemaining: game.TimeRemaining,
		},
	})
	rt.registry.SubscribeGame(gameID, conn.UserID)
}

// handleChat relays a chat line to everyone subscribed to the game,
// including the sender, stamping it with the sender's profile.
func (rt *Router) handleChat(ctx context.Context, conn *Conn, msg inboundMessage) {
	sender, err := rt.users.GetByUserID(ctx, conn.UserID)
	if err != nil {
		log.Printf("Failed to load chat sender %s: %v", conn.UserID, err)
		rt.dispatcher.Reply(conn, errorMessage("Failed to send message"))
		return
	}
	if sender == nil {
		rt.dispatcher.Reply(conn, errorMessage("User not found"))
		return
	}

	ts := msg.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	rt.dispatcher.BroadcastGame(msg.GameRef, chatBroadcast{
		Type:      MsgChatMessage,
		GameID:    msg.GameRef,
		Message:   msg.Message,
		Timestamp: ts,
		Sender: chatSender{
			UserID:    sender.UserID,
			Username:  sender.Username,
			AvatarURL: sender.AvatarURL,
		},
	}, "")
}
