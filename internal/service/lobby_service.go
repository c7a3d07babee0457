package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"drawit/internal/model"
	"drawit/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrLobbyNotFound   = errors.New("lobby not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrLobbyLocked     = errors.New("lobby is locked")
	ErrLobbyFull       = errors.New("lobby is full")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrNotHost         = errors.New("only the host can perform this action")
	ErrNameRequired    = errors.New("lobby name is required")
	ErrMaxBelowPlayers = errors.New("cannot set max players below current player count")
)

// LobbyService handles lobby lifecycle operations. Mutations push fresh
// state to connected clients through the injected notifier.
type LobbyService struct {
	lobbies  repository.LobbyRepo
	users    repository.UserRepo
	notifier Notifier
}

// NewLobbyService creates a new lobby service.
func NewLobbyService(lobbies repository.LobbyRepo, users repository.UserRepo) *LobbyService {
	return &LobbyService{
		lobbies:  lobbies,
		users:    users,
		notifier: noopNotifier{},
	}
}

// SetNotifier injects the realtime notifier (the websocket reconciler).
func (s *LobbyService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create persists a new lobby with the creator as host and sole player.
func (s *LobbyService) Create(ctx context.Context, hostID string, req *model.CreateLobbyRequest) (*model.LobbyDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	host, err := s.users.GetByUserID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up host: %w", err)
	}
	if host == nil {
		return nil, ErrUserNotFound
	}

	lobby := &model.Lobby{
		LobbyID:              uuid.New().String(),
		Name:                 name,
		HostID:               hostID,
		MaxPlayers:           req.MaxPlayers,
		IsPrivate:            req.IsPrivate,
		NumRounds:            req.NumRounds,
		RoundDurationSeconds: req.RoundDurationSeconds,
		Players:              []primitive.ObjectID{host.ID},
		CreatedAt:            time.Now(),
		LastActivity:         time.Now(),
	}
	if lobby.MaxPlayers <= 0 {
		lobby.MaxPlayers = 5
	}
	if lobby.NumRounds <= 0 {
		lobby.NumRounds = 3
	}
	if lobby.RoundDurationSeconds <= 0 {
		lobby.RoundDurationSeconds = 60
	}
	if req.IsPrivate {
		lobby.Password = req.Password
	}

	if err := s.lobbies.Create(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to create lobby: %w", err)
	}

	s.notifier.LobbyListChanged()

	return &model.LobbyDetail{Lobby: lobby, Players: []model.User{*host}, Host: host}, nil
}

// List returns all publicly visible lobbies with players resolved.
func (s *LobbyService) List(ctx context.Context) ([]model.LobbyDetail, error) {
	lobbies, err := s.lobbies.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobbies: %w", err)
	}

	details := make([]model.LobbyDetail, 0, len(lobbies))
	for i := range lobbies {
		detail, err := s.resolve(ctx, &lobbies[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// Get returns one lobby with players resolved.
func (s *LobbyService) Get(ctx context.Context, lobbyID string) (*model.LobbyDetail, error) {
	lobby, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lobby: %w", err)
	}
	if lobby == nil {
		return nil, ErrLobbyNotFound
	}
	return s.resolve(ctx, lobby)
}

// Join adds a user to a lobby's player list after capacity, lock and
// password checks. Joining a lobby the user is already in is a no-op.
func (s *LobbyService) Join(ctx context.Context, lobbyID, userID, password string) (*model.LobbyDetail, error) {
	lobby, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lobby: %w", err)
	}
	if lobby == nil {
		return nil, ErrLobbyNotFound
	}
	if lobby.IsLocked {
		return nil, ErrLobbyLocked
	}
	if len(lobby.Players) >= lobby.MaxPlayers {
		return nil, ErrLobbyFull
	}
	if lobby.IsPrivate && lobby.Password != password {
		return nil, ErrWrongPassword
	}

	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	already := false
	for _, id := range lobby.Players {
		if id == user.ID {
			already = true
			break
		}
	}
	if !already {
		if err := s.lobbies.AddPlayer(ctx, lobbyID, user.ID); err != nil {
			return nil, fmt.Errorf("failed to join lobby: %w", err)
		}
		s.notifier.LobbyChanged(lobbyID)
		s.notifier.LobbyListChanged()
	}

	return s.Get(ctx, lobbyID)
}

// Leave removes a user from a lobby. When the host leaves, hosting passes to
// the first remaining player; an emptied lobby is deleted.
func (s *LobbyService) Leave(ctx context.Context, lobbyID, userID string) error {
	lobby, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return fmt.Errorf("failed to load lobby: %w", err)
	}
	if lobby == nil {
		return ErrLobbyNotFound
	}

	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	remaining := lobby.Players[:0]
	for _, id := range lobby.Players {
		if id != user.ID {
			remaining = append(remaining, id)
		}
	}
	lobby.Players = remaining

	if lobby.HostID == userID {
		if len(lobby.Players) == 0 {
			if err := s.lobbies.Delete(ctx, lobbyID); err != nil {
				return fmt.Errorf("failed to delete empty lobby: %w", err)
			}
			s.notifier.LobbyListChanged()
			return nil
		}
		successors, err := s.users.GetManyByIDs(ctx, lobby.Players[:1])
		if err != nil {
			return fmt.Errorf("failed to resolve new host: %w", err)
		}
		if len(successors) > 0 {
			lobby.HostID = successors[0].UserID
		}
	}

	if err := s.lobbies.Update(ctx, lobby); err != nil {
		return fmt.Errorf("failed to update lobby: %w", err)
	}

	s.notifier.LobbyChanged(lobbyID)
	s.notifier.LobbyListChanged()
	return nil
}

// UpdateSettings applies host-only partial settings updates.
func (s *LobbyService) UpdateSettings(ctx context.Context, lobbyID, userID string, req *model.UpdateLobbySettingsRequest) (*model.Lobby, error) {
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

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		lobby.Name = strings.TrimSpace(*req.Name)
	}
	if req.MaxPlayers != nil {
		if *req.MaxPlayers < len(lobby.Players) {
			return nil, ErrMaxBelowPlayers
		}
		lobby.MaxPlayers = *req.MaxPlayers
	}
	if req.IsPrivate != nil {
		lobby.IsPrivate = *req.IsPrivate
	}
	if req.Password != nil {
		lobby.Password = *req.Password
	}
	if req.NumRounds != nil {
		lobby.NumRounds = *req.NumRounds
	}
	if req.RoundDurationSeconds != nil {
		lobby.RoundDurationSeconds = *req.RoundDurationSeconds
	}

	if err := s.lobbies.Update(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to update lobby: %w", err)
	}

	s.notifier.LobbyChanged(lobbyID)
	return lobby, nil
}

// SetLocked toggles the host-only joinability flag.
func (s *LobbyService) SetLocked(ctx context.Context, lobbyID, userID string, locked bool) (*model.Lobby, error) {
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

	lobby.IsLocked = locked
	if err := s.lobbies.Update(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to update lobby: %w", err)
	}

	s.notifier.LobbyChanged(lobbyID)
	s.notifier.LobbyListChanged()
	return lobby, nil
}

func (s *LobbyService) resolve(ctx context.Context, lobby *model.Lobby) (*model.LobbyDetail, error) {
	players, err := s.users.GetManyByIDs(ctx, lobby.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve players: %w", err)
	}
	host, err := s.users.GetByUserID(ctx, lobby.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	return &model.LobbyDetail{Lobby: lobby, Players: players, Host: host}, nil
}
