package ws

import (
	"context"
	"fmt"
	"log"
	"time"

	"drawit/internal/model"
	"drawit/internal/repository"
	"drawit/internal/service"
)

const reconcileTimeout = 10 * time.Second

// Reconciler recomputes broadcastable state from the authoritative store and
// compares it against live subscriptions. Every broadcast it emits is built
// from a freshly reloaded record, never from in-memory cache; divergence
// between record membership and subscriber sets is logged and left to heal
// on a later pass, never treated as fatal.
type Reconciler struct {
	registry   *Registry
	dispatcher *Dispatcher
	lobbies    repository.LobbyRepo
	games      repository.GameRepo
	users      repository.UserRepo

	syncInterval time.Duration
	stop         chan struct{}
}

// NewReconciler creates a reconciler; call Run to start the periodic sync pass.
func NewReconciler(
	registry *Registry,
	dispatcher *Dispatcher,
	lobbies repository.LobbyRepo,
	games repository.GameRepo,
	users repository.UserRepo,
	syncInterval time.Duration,
) *Reconciler {
	return &Reconciler{
		registry:     registry,
		dispatcher:   dispatcher,
		lobbies:      lobbies,
		games:        games,
		users:        users,
		syncInterval: syncInterval,
		stop:         make(chan struct{}),
	}
}

// Run executes the log-only sync pass on a fixed period until Stop is called.
func (r *Reconciler) Run() {
	ticker := time.NewTicker(r.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
			r.SyncPass(ctx)
			cancel()
		case <-r.stop:
			return
		}
	}
}

// Stop tears the sync pass down.
func (r *Reconciler) Stop() {
	close(r.stop)
}

// RefreshLobby reloads the lobby with players resolved and logs any
// divergence between the persisted player list and the live subscriber set.
// It never mutates the record. A nil detail without error means not found.
func (r *Reconciler) RefreshLobby(ctx context.Context, lobbyID string) (*model.LobbyDetail, error) {
	detail, err := r.loadLobbyDetail(ctx, lobbyID)
	if err != nil || detail == nil {
		return detail, err
	}

	active := make(map[string]struct{})
	for _, userID := range r.registry.ActiveInLobby(lobbyID) {
		active[userID] = struct{}{}
	}

	inRecord := make(map[string]struct{}, len(detail.Players))
	for _, p := range detail.Players {
		inRecord[p.UserID] = struct{}{}
		if _, ok := active[p.UserID]; !ok {
			log.Printf("Lobby %s: player %s (%s) is in the record but has no live connection", lobbyID, p.UserID, p.Username)
		}
	}
	for userID := range active {
		if _, ok := inRecord[userID]; !ok {
			log.Printf("Lobby %s: user %s has a live connection but is not in the record player list", lobbyID, userID)
		}
	}

	return detail, nil
}

// NotifyLobbyChange rebuilds lobby state from the store and pushes it to the
// lobby's subscribers, then refreshes everyone's lobby list since aggregate
// visibility may have changed.
func (r *Reconciler) NotifyLobbyChange(ctx context.Context, lobbyID string) {
	detail, err := r.RefreshLobby(ctx, lobbyID)
	if err != nil {
		log.Printf("Failed to refresh lobby %s: %v", lobbyID, err)
		return
	}
	if detail == nil {
		log.Printf("Cannot notify state change: lobby %s not found", lobbyID)
		return
	}

	summary := detail.Lobby.Summary(len(detail.Players))
	host := detail.HostInfo()
	players := detail.PlayerInfos()

	delivered, failed := 0, 0
	for _, userID := range r.registry.ActiveInLobby(lobbyID) {
		msg := lobbyStateMessage{
			Type: MsgLobbyState,
			Payload: lobbyStatePayload{
				Lobby:    summary,
				HostUser: host,
				Players:  players,
				Event:    "updated",
				UserID:   userID,
			},
		}
		if r.dispatcher.SendTo(userID, msg) {
			delivered++
		} else {
			failed++
		}
	}
	log.Printf("Lobby state update for %s: delivered to %d clients, failed for %d clients", lobbyID, delivered, failed)

	r.BroadcastLobbyList(ctx)
}

// NotifyGameChange rebuilds game state from the store, repairing and
// persisting any missing drawer, word or timer before anything is sent, and
// pushes it to the game's subscribers. The originating lobby's subscribers
// receive the same message as a fallback for clients not yet migrated to
// the game subscription.
func (r *Reconciler) NotifyGameChange(ctx context.Context, gameID string) {
	game, err := r.games.GetByID(ctx, gameID)
	if err != nil {
		log.Printf("Failed to load game %s: %v", gameID, err)
		return
	}
	if game == nil {
		log.Printf("Cannot notify state change: game %s not found", gameID)
		return
	}

	if service.EnsurePlayable(game, service.DefaultWordList) {
		log.Printf("Game %s was missing drawer, word or timer; derived fallback values", gameID)
		if err := r.games.Update(ctx, game); err != nil {
			log.Printf("Failed to persist fallback fields for game %s: %v", gameID, err)
			return
		}
	}

	detail, err := r.resolveGame(ctx, game)
	if err != nil {
		log.Printf("Failed to resolve game %s: %v", gameID, err)
		return
	}

	msg := gameStateMessage{
		Type: MsgGameState,
		GamePayload: gamePayload{
			Game:          detail.View(),
			CurrentDrawer: detail.DrawerInfo(),
			WordToGuess:   game.WordToGuess,
			TimeRemaining: game.TimeRemaining,
		},
	}
	r.dispatcher.BroadcastGame(gameID, msg, "")

	lobby, err := r.lobbies.GetByID(ctx, game.LobbyID)
	if err != nil {
		log.Printf("Failed to load lobby %s for game fallback broadcast: %v", game.LobbyID, err)
		return
	}
	if lobby != nil {
		r.dispatcher.BroadcastLobby(lobby.LobbyID, msg, "")
	}
}

// SendLobbyList delivers the current public lobby list to one connection.
func (r *Reconciler) SendLobbyList(ctx context.Context, conn *Conn, event string) {
	listings, err := r.buildLobbyListings(ctx)
	if err != nil {
		log.Printf("Failed to build lobby list: %v", err)
		return
	}
	r.dispatcher.Reply(conn, lobbiesUpdateMessage{
		Type:    MsgLobbiesUpdate,
		Payload: lobbiesPayload{Lobbies: listings, Event: event},
	})
}

// BroadcastLobbyList pushes the current public lobby list to every
// registered connection.
func (r *Reconciler) BroadcastLobbyList(ctx context.Context) {
	listings, err := r.buildLobbyListings(ctx)
	if err != nil {
		log.Printf("Failed to build lobby list: %v", err)
		return
	}
	r.dispatcher.BroadcastAll(lobbiesUpdateMessage{
		Type:    MsgLobbiesUpdate,
		Payload: lobbiesPayload{Lobbies: listings, Event: "updated"},
	})
}

// SyncPass walks every lobby with a non-empty player list and logs players
// that have no live connection. A monitoring aid: it never mutates records
// or subscriptions.
func (r *Reconciler) SyncPass(ctx context.Context) {
	lobbies, err := r.lobbies.ListAll(ctx)
	if err != nil {
		log.Printf("Sync pass failed to list lobbies: %v", err)
		return
	}

	for i := range lobbies {
		lobby := &lobbies[i]
		if len(lobby.Players) == 0 {
			continue
		}
		players, err := r.users.GetManyByIDs(ctx, lobby.Players)
		if err != nil {
			log.Printf("Sync pass failed to resolve players for lobby %s: %v", lobby.LobbyID, err)
			continue
		}
		active := make(map[string]struct{})
		for _, userID := range r.registry.ActiveInLobby(lobby.LobbyID) {
			active[userID] = struct{}{}
		}
		for _, p := range players {
			if _, ok := active[p.UserID]; !ok {
				log.Printf("Sync: player %s (%s) in lobby %s has no live connection", p.UserID, p.Username, lobby.LobbyID)
			}
		}
	}
}

// LobbyChanged implements service.Notifier.
func (r *Reconciler) LobbyChanged(lobbyID string) {
	go r.withTimeout(func(ctx context.Context) { r.NotifyLobbyChange(ctx, lobbyID) })
}

// GameChanged implements service.Notifier.
func (r *Reconciler) GameChanged(gameID string) {
	go r.withTimeout(func(ctx context.Context) { r.NotifyGameChange(ctx, gameID) })
}

// LobbyListChanged implements service.Notifier.
func (r *Reconciler) LobbyListChanged() {
	go r.withTimeout(r.BroadcastLobbyList)
}

func (r *Reconciler) withTimeout(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	fn(ctx)
}

func (r *Reconciler) loadLobbyDetail(ctx context.Context, lobbyID string) (*model.LobbyDetail, error) {
	lobby, err := r.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lobby: %w", err)
	}
	if lobby == nil {
		return nil, nil
	}
	players, err := r.users.GetManyByIDs(ctx, lobby.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve players: %w", err)
	}
	host, err := r.users.GetByUserID(ctx, lobby.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	return &model.LobbyDetail{Lobby: lobby, Players: players, Host: host}, nil
}

func (r *Reconciler) resolveGame(ctx context.Context, game *model.Game) (*model.GameDetail, error) {
	players, err := r.users.GetManyByIDs(ctx, game.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve players: %w", err)
	}
	detail := &model.GameDetail{Game: game, Players: players}
	for i := range players {
		if players[i].ID == game.CurrentDrawer {
			detail.Drawer = &players[i]
			break
		}
	}
	return detail, nil
}

func (r *Reconciler) buildLobbyListings(ctx context.Context) ([]lobbyListing, error) {
	lobbies, err := r.lobbies.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobbies: %w", err)
	}

	listings := make([]lobbyListing, 0, len(lobbies))
	for i := range lobbies {
		lobby := &lobbies[i]
		players, err := r.users.GetManyByIDs(ctx, lobby.Players)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve players for lobby %s: %w", lobby.LobbyID, err)
		}
		detail := model.LobbyDetail{Lobby: lobby, Players: players}
		host, err := r.users.GetByUserID(ctx, lobby.HostID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve host for lobby %s: %w", lobby.LobbyID, err)
		}
		detail.Host = host
		listings = append(listings, lobbyListing{
			LobbySummary: lobby.Summary(len(players)),
			HostUser:     detail.HostInfo(),
			Players:      detail.PlayerInfos(),
		})
	}
	return listings, nil
}
