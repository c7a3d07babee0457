package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawit/internal/model"
	"drawit/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrNotEnoughPlays = errors.New("at least 2 players required to start game")
)

// GameService handles the HTTP start-game path and game lookups. The
// websocket start handshake is driven by the realtime coordinator; this
// service covers the explicit endpoint.
type GameService struct {
	games    repository.GameRepo
	lobbies  repository.LobbyRepo
	users    repository.UserRepo
	notifier Notifier
}

// NewGameService creates a new game service.
func NewGameService(games repository.GameRepo, lobbies repository.LobbyRepo, users repository.UserRepo) *GameService {
	return &GameService{
		games:    games,
		lobbies:  lobbies,
		users:    users,
		notifier: noopNotifier{},
	}
}

// SetNotifier injects the realtime notifier (the websocket reconciler).
func (s *GameService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start creates a game from a lobby, locks the lobby and pushes both lobby
// and game state to connected clients. Host only, minimum two players.
func (s *GameService) Start(ctx context.Context, lobbyID, userID string) (*model.Game, error) {
	lobby, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lobby: %w", err)
	}
	if lobby == nil {
		return nil, ErrLobbyNotFound
	}
	if lobby.HostID != userID {
		return nil, ErrNotHost
	}
	if len(lobby.Players) < 2 {
		return nil, ErrNotEnoughPlays
	}

	players, err := s.users.GetManyByIDs(ctx, lobby.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve players: %w", err)
	}

	scores := make([]model.PlayerScore, len(players))
	for i, p := range players {
		scores[i] = model.PlayerScore{UserID: p.UserID, Username: p.Username}
	}

	game := &model.Game{
		GameID:               uuid.New().String(),
		LobbyID:              lobby.LobbyID,
		HostID:               lobby.HostID,
		Players:              lobby.Players,
		CurrentRound:         1,
		MaxRounds:            lobby.NumRounds,
		RoundDurationSeconds: lobby.RoundDurationSeconds,
		PlayerScores:         scores,
		Status:               model.GameActive,
		CreatedAt:            time.Now(),
	}
	EnsurePlayable(game, DefaultWordList)

	if err := s.games.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	lobby.IsLocked = true
	if err := s.lobbies.Update(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to lock lobby: %w", err)
	}

	s.notifier.LobbyChanged(lobbyID)
	s.notifier.GameChanged(game.GameID)
	s.notifier.LobbyListChanged()
	return game, nil
}

// Get returns one game with players and drawer resolved.
func (s *GameService) Get(ctx context.Context, gameID string) (*model.GameDetail, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	players, err := s.users.GetManyByIDs(ctx, game.Players)
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
