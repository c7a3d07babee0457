package ws

import (
	"log"
	"sync"
)

// Registry owns the identity-to-connection map and the lobby and game
// subscription indices. It is the only mutable shared state in the realtime
// core; every mutation goes through these methods, all O(1) amortized and
// none blocking. Subscription sets hold identities, not sockets, so an entry
// can never outlive or shadow the registered connection for that identity.
type Registry struct {
	mu        sync.RWMutex
	clients   map[string]*Conn
	lobbySubs map[string]map[string]struct{}
	gameSubs  map[string]map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients:   make(map[string]*Conn),
		lobbySubs: make(map[string]map[string]struct{}),
		gameSubs:  make(map[string]map[string]struct{}),
	}
}

// Register makes conn the authoritative channel for its identity, replacing
// any prior entry. The replaced connection is returned so the caller can
// close its socket; its subscriptions carry over to the new connection.
func (r *Registry) Register(conn *Conn) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior := r.clients[conn.UserID]
	r.clients[conn.UserID] = conn
	if prior != nil {
		log.Printf("Replaced existing connection for user %s", conn.UserID)
	}
	return prior
}

// Unregister removes conn and cascades removal from every subscription set.
// It is a no-op when conn is no longer the registered entry for its
// identity, so a stale connection cannot evict its replacement. The lobby
// ids the identity was subscribed to are returned for follow-up state
// broadcasts.
func (r *Registry) Unregister(conn *Conn) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.clients[conn.UserID]
	if !ok || current != conn {
		return nil
	}
	delete(r.clients, conn.UserID)

	var lobbies []string
	for lobbyID, members := range r.lobbySubs {
		if _, ok := members[conn.UserID]; ok {
			delete(members, conn.UserID)
			lobbies = append(lobbies, lobbyID)
			if len(members) == 0 {
				delete(r.lobbySubs, lobbyID)
			}
		}
	}
	for gameID, members := range r.gameSubs {
		if _, ok := members[conn.UserID]; ok {
			delete(members, conn.UserID)
			if len(members) == 0 {
				delete(r.gameSubs, gameID)
			}
		}
	}
	return lobbies
}

// Get returns the registered connection for an identity.
func (r *Registry) Get(userID string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.clients[userID]
	return conn, ok
}

// Conns returns a snapshot of all registered connections.
func (r *Registry) Conns() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]*Conn, 0, len(r.clients))
	for _, c := range r.clients {
		conns = append(conns, c)
	}
	return conns
}

// SubscribeLobby adds an identity to a lobby's subscriber set, creating the
// index entry on first use.
func (r *Registry) SubscribeLobby(lobbyID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.lobbySubs[lobbyID]
	if !ok {
		members = make(map[string]struct{})
		r.lobbySubs[lobbyID] = members
	}
	members[userID] = struct{}{}
}

// UnsubscribeLobby removes an identity from a lobby's subscriber set and
// drops the entry once emptied.
func (r *Registry) UnsubscribeLobby(lobbyID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.lobbySubs[lobbyID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.lobbySubs, lobbyID)
	}
}

// UnsubscribeAllLobbies removes an identity from every lobby subscriber set
// and returns the affected lobby ids.
func (r *Registry) UnsubscribeAllLobbies(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var lobbies []string
	for lobbyID, members := range r.lobbySubs {
		if _, ok := members[userID]; ok {
			delete(members, userID)
			lobbies = append(lobbies, lobbyID)
			if len(members) == 0 {
				delete(r.lobbySubs, lobbyID)
			}
		}
	}
	return lobbies
}

// LobbiesOf returns the lobby ids an identity is currently subscribed to.
func (r *Registry) LobbiesOf(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var lobbies []string
	for lobbyID, members := range r.lobbySubs {
		if _, ok := members[userID]; ok {
			lobbies = append(lobbies, lobbyID)
		}
	}
	return lobbies
}

// SubscribeGame adds an identity to a game's subscriber set.
func (r *Registry) SubscribeGame(gameID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.gameSubs[gameID]
	if !ok {
		members = make(map[string]struct{})
		r.gameSubs[gameID] = members
	}
	members[userID] = struct{}{}
}

// UnsubscribeGame removes an identity from a game's subscriber set.
func (r *Registry) UnsubscribeGame(gameID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.gameSubs[gameID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.gameSubs, gameID)
	}
}

// CopyLobbyToGame unions a lobby's current subscriber set into a game's set,
// creating it when absent. Additive: members a game set already has are
// never dropped. Returns the resulting game subscriber count.
func (r *Registry) CopyLobbyToGame(lobbyID, gameID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.gameSubs[gameID]
	if !ok {
		target = make(map[string]struct{})
		r.gameSubs[gameID] = target
	}
	for userID := range r.lobbySubs[lobbyID] {
		target[userID] = struct{}{}
	}
	if len(target) == 0 {
		delete(r.gameSubs, gameID)
		return 0
	}
	return len(target)
}

// ActiveInLobby returns a snapshot of the identities subscribed to a lobby.
func (r *Registry) ActiveInLobby(lobbyID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return identitySnapshot(r.lobbySubs[lobbyID])
}

// ActiveInGame returns a snapshot of the identities subscribed to a game.
func (r *Registry) ActiveInGame(gameID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return identitySnapshot(r.gameSubs[gameID])
}

func identitySnapshot(members map[string]struct{}) []string {
	if len(members) == 0 {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}
