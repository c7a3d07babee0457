package service

import (
	"context"
	"sync"

	"drawit/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *memUserRepo) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (m *memUserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		for _, u := range m.users {
			if u.ID == id {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (m *memUserRepo) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username && u.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && u.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Create(ctx, user)
}

type memLobbyRepo struct {
	mu      sync.Mutex
	lobbies map[string]*model.Lobby
}

func newMemLobbyRepo() *memLobbyRepo {
	return &memLobbyRepo{lobbies: make(map[string]*model.Lobby)}
}

func (m *memLobbyRepo) Create(ctx context.Context, lobby *model.Lobby) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lobby
	m.lobbies[lobby.LobbyID] = &cp
	return nil
}

func (m *memLobbyRepo) GetByID(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, nil
	}
	cp := *lobby
	return &cp, nil
}

func (m *memLobbyRepo) ListOpen(ctx context.Context) ([]model.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Lobby
	for _, l := range m.lobbies {
		if !l.IsLocked && !l.IsPrivate {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memLobbyRepo) ListAll(ctx context.Context) ([]model.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Lobby
	for _, l := range m.lobbies {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memLobbyRepo) Update(ctx context.Context, lobby *model.Lobby) error {
	return m.Create(ctx, lobby)
}

func (m *memLobbyRepo) Delete(ctx context.Context, lobbyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobbies, lobbyID)
	return nil
}

func (m *memLobbyRepo) AddPlayer(ctx context.Context, lobbyID string, playerID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[lobbyID]
	if !ok {
		return nil
	}
	for _, id := range lobby.Players {
		if id == playerID {
			return nil
		}
	}
	lobby.Players = append(lobby.Players, playerID)
	return nil
}

type memGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{games: make(map[string]*model.Game)}
}

func (m *memGameRepo) Create(ctx context.Context, game *model.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *game
	m.games[game.GameID] = &cp
	return nil
}

func (m *memGameRepo) GetByID(ctx context.Context, gameID string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[gameID]
	if !ok {
		return nil, nil
	}
	cp := *game
	return &cp, nil
}

func (m *memGameRepo) Update(ctx context.Context, game *model.Game) error {
	return m.Create(ctx, game)
}
