package ws

import (
	"context"
	"log"
	"math/rand"
	"time"

	"drawit/internal/model"
	"drawit/internal/repository"
	"drawit/internal/service"
)

// Coordinator drives the join protocol and the start-of-game handshake: it
// validates preconditions against the store, synthesizes transient game
// records when needed, migrates lobby subscribers into the game subscription
// and runs the two-phase start broadcast.
type Coordinator struct {
	registry   *Registry
	dispatcher *Dispatcher
	reconciler *Reconciler
	lobbies    repository.LobbyRepo
	games      repository.GameRepo

	// settleDelay postpones the post-join state broadcast so a concurrent
	// record mutation can land first; corroborateDelay spaces the start
	// signal from the confirming game_state broadcast. Both are tuning
	// parameters, not correctness requirements.
	settleDelay      time.Duration
	corroborateDelay time.Duration
}

// NewCoordinator creates a game transition coordinator.
func NewCoordinator(
	registry *Registry,
	dispatcher *Dispatcher,
	reconciler *Reconciler,
	lobbies repository.LobbyRepo,
	games repository.GameRepo,
	settleDelay, corroborateDelay time.Duration,
) *Coordinator {
	return &Coordinator{
		registry:         registry,
		dispatcher:       dispatcher,
		reconciler:       reconciler,
		lobbies:          lobbies,
		games:            games,
		settleDelay:      settleDelay,
		corroborateDelay: corroborateDelay,
	}
}

// JoinLobby subscribes the requester to a lobby's updates and confirms with
// a fresh lobby snapshot. Subscription is unconditional once the record
// exists: a client may watch a lobby before formally joining its player
// list. After a short settling delay everyone in the lobby gets fresh state.
func (co *Coordinator) JoinLobby(ctx context.Context, conn *Conn, lobbyID string) {
	detail, err := co.reconciler.loadLobbyDetail(ctx, lobbyID)
	if err != nil {
		log.Printf("Join failed for user %s in lobby %s: %v", conn.UserID, lobbyID, err)
		co.dispatcher.Reply(conn, errorMessage("Failed to join lobby"))
		return
	}
	if detail == nil {
		co.dispatcher.Reply(conn, errorMessage("Lobby not found"))
		return
	}

	co.registry.SubscribeLobby(lobbyID, conn.UserID)

	co.dispatcher.Reply(conn, lobbyStateMessage{
		Type:    MsgLobbyJoined,
		LobbyID: lobbyID,
		Payload: lobbyStatePayload{
			Lobby:    detail.Lobby.Summary(len(detail.Players)),
			HostUser: detail.HostInfo(),
			Players:  detail.PlayerInfos(),
			Event:    "joined",
			UserID:   conn.UserID,
		},
	})

	time.AfterFunc(co.settleDelay, func() {
		co.reconciler.withTimeout(func(ctx context.Context) {
			co.reconciler.NotifyLobbyChange(ctx, lobbyID)
		})
	})
}

// StartGame runs the host-initiated start handshake, idempotent with respect
// to the supplied game id:
//
//  1. validate the lobby and the requester's host role
//  2. reuse the game record, or synthesize a transient one from lobby settings
//  3. lock the lobby
//  4. union the lobby's subscribers into the game subscription
//  5. broadcast the start signal (game subscribers preferred, lobby fallback)
//  6. after a delay, broadcast corroborating full game state
//  7. refresh everyone's lobby list, since the lobby left the public listings
//
// Store failures abort the current step with no partial broadcast.
func (co *Coordinator) StartGame(ctx context.Context, conn *Conn, lobbyID, gameID string) {
	detail, err := co.reconciler.loadLobbyDetail(ctx, lobbyID)
	if err != nil {
		log.Printf("Start aborted for lobby %s: %v", lobbyID, err)
		return
	}
	if detail == nil {
		co.dispatcher.Reply(conn, errorMessage("Lobby not found"))
		return
	}
	if detail.Lobby.HostID != conn.UserID {
		log.Printf("User %s is not the host of lobby %s", conn.UserID, lobbyID)
		co.dispatcher.Reply(conn, errorMessage("Only the host can start the game"))
		return
	}

	game, err := co.games.GetByID(ctx, gameID)
	if err != nil {
		log.Printf("Start aborted for game %s: %v", gameID, err)
		return
	}
	gameDetail := &model.GameDetail{Game: game, Players: detail.Players}
	if game == nil {
		gameDetail = co.synthesizeGame(detail, gameID)
		if err := co.games.Create(ctx, gameDetail.Game); err != nil {
			log.Printf("Failed to persist transient game %s: %v", gameID, err)
			return
		}
		log.Printf("Created transient game %s for lobby %s", gameID, lobbyID)
	} else {
		for i := range gameDetail.Players {
			if gameDetail.Players[i].ID == game.CurrentDrawer {
				gameDetail.Drawer = &gameDetail.Players[i]
				break
			}
		}
	}

	detail.Lobby.IsLocked = true
	if err := co.lobbies.Update(ctx, detail.Lobby); err != nil {
		log.Printf("Failed to lock lobby %s: %v", lobbyID, err)
		return
	}

	subscribers := co.registry.CopyLobbyToGame(lobbyID, gameID)
	log.Printf("Game %s subscription now has %d members", gameID, subscribers)

	startMsg := gameStateMessage{
		Type:        MsgStartGame,
		GamePayload: gamePayload{Game: gameDetail.View()},
	}
	if len(co.registry.ActiveInGame(gameID)) > 0 {
		co.dispatcher.BroadcastGame(gameID, startMsg, "")
	} else {
		co.dispatcher.BroadcastLobby(lobbyID, startMsg, "")
	}

	time.AfterFunc(co.corroborateDelay, func() {
		co.reconciler.withTimeout(func(ctx context.Context) {
			co.reconciler.NotifyGameChange(ctx, gameID)
		})
	})

	co.reconciler.BroadcastLobbyList(ctx)
}

// synthesizeGame builds a transient game from lobby settings: a random
// drawer, a random word from the fixed candidate list and zeroed scores.
func (co *Coordinator) synthesizeGame(detail *model.LobbyDetail, gameID string) *model.GameDetail {
	lobby := detail.Lobby
	game := &model.Game{
		GameID:               gameID,
		LobbyID:              lobby.LobbyID,
		HostID:               lobby.HostID,
		Players:              lobby.Players,
		CurrentRound:         1,
		MaxRounds:            lobby.NumRounds,
		RoundDurationSeconds: lobby.RoundDurationSeconds,
		TimeRemaining:        lobby.RoundDurationSeconds,
		IsTransient:          true,
		Status:               model.GameActive,
		CreatedAt:            time.Now(),
	}

	scores := make([]model.PlayerScore, len(detail.Players))
	for i, p := range detail.Players {
		scores[i] = model.PlayerScore{UserID: p.UserID, Username: p.Username}
	}
	game.PlayerScores = scores

	gameDetail := &model.GameDetail{Game: game, Players: detail.Players}
	if len(detail.Players) > 0 {
		drawer := &detail.Players[rand.Intn(len(detail.Players))]
		game.CurrentDrawer = drawer.ID
		gameDetail.Drawer = drawer
	}
	service.EnsurePlayable(game, service.DefaultWordList)
	return gameDetail
}
