package ws

import (
	"context"
	"sync"
	"time"

	"drawit/internal/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.UserID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		for _, u := range f.users {
			if u.ID == id {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && u.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	return f.Create(ctx, user)
}

type fakeLobbyRepo struct {
	mu      sync.Mutex
	lobbies map[string]*model.Lobby
}

func newFakeLobbyRepo() *fakeLobbyRepo {
	return &fakeLobbyRepo{lobbies: make(map[string]*model.Lobby)}
}

func (f *fakeLobbyRepo) Create(ctx context.Context, lobby *model.Lobby) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *lobby
	f.lobbies[lobby.LobbyID] = &cp
	return nil
}

func (f *fakeLobbyRepo) GetByID(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lobby, ok := f.lobbies[lobbyID]
	if !ok {
		return nil, nil
	}
	cp := *lobby
	return &cp, nil
}

func (f *fakeLobbyRepo) ListOpen(ctx context.Context) ([]model.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Lobby
	for _, l := range f.lobbies {
		if !l.IsLocked && !l.IsPrivate {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLobbyRepo) ListAll(ctx context.Context) ([]model.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Lobby
	for _, l := range f.lobbies {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLobbyRepo) Update(ctx context.Context, lobby *model.Lobby) error {
	return f.Create(ctx, lobby)
}

func (f *fakeLobbyRepo) Delete(ctx context.Context, lobbyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lobbies, lobbyID)
	return nil
}

func (f *fakeLobbyRepo) AddPlayer(ctx context.Context, lobbyID string, playerID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lobby, ok := f.lobbies[lobbyID]
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

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*model.Game)}
}

func (f *fakeGameRepo) Create(ctx context.Context, game *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *game
	f.games[game.GameID] = &cp
	return nil
}

func (f *fakeGameRepo) GetByID(ctx context.Context, gameID string) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return nil, nil
	}
	cp := *game
	return &cp, nil
}

func (f *fakeGameRepo) Update(ctx context.Context, game *model.Game) error {
	return f.Create(ctx, game)
}

// fixture wires the realtime core against in-memory stores. Delayed
// broadcasts are pushed out an hour so tests only see synchronous traffic.
type fixture struct {
	registry    *Registry
	dispatcher  *Dispatcher
	reconciler  *Reconciler
	coordinator *Coordinator
	router      *Router
	users       *fakeUserRepo
	lobbies     *fakeLobbyRepo
	games       *fakeGameRepo
}

func newFixture() *fixture {
	users := newFakeUserRepo()
	lobbies := newFakeLobbyRepo()
	games := newFakeGameRepo()

	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)
	reconciler := NewReconciler(registry, dispatcher, lobbies, games, users, time.Minute)
	coordinator := NewCoordinator(registry, dispatcher, reconciler, lobbies, games, time.Hour, time.Hour)
	router := NewRouter(registry, dispatcher, reconciler, coordinator, users, games)

	return &fixture{
		registry:    registry,
		dispatcher:  dispatcher,
		reconciler:  reconciler,
		coordinator: coordinator,
		router:      router,
		users:       users,
		lobbies:     lobbies,
		games:       games,
	}
}

func (f *fixture) addUser(username string) *model.User {
	user := &model.User{
		ID:       primitive.NewObjectID(),
		UserID:   uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
	}
	f.users.Create(context.Background(), user)
	return user
}

func (f *fixture) addLobby(host *model.User, others ...*model.User) *model.Lobby {
	players := []primitive.ObjectID{host.ID}
	for _, u := range others {
		players = append(players, u.ID)
	}
	lobby := &model.Lobby{
		LobbyID:              uuid.New().String(),
		Name:                 "test lobby",
		HostID:               host.UserID,
		MaxPlayers:           5,
		NumRounds:            3,
		RoundDurationSeconds: 60,
		Players:              players,
		CreatedAt:            time.Now(),
	}
	f.lobbies.Create(context.Background(), lobby)
	return lobby
}

func (f *fixture) connect(user *model.User) *Conn {
	conn, _ := newTestConn(user.UserID)
	f.registry.Register(conn)
	return conn
}
