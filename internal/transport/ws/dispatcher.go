package ws

import (
	"encoding/json"
	"log"
)

// Dispatcher delivers messages to single connections or fans them out to a
// lobby's or game's subscriber set. Delivery failures are counted and
// logged, never escalated, and never unregister a connection: deciding a
// connection is dead is the heartbeat's job alone.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Reply sends a message directly to a connection, bypassing the registry.
// Used for handshake replies and for unauthenticated channels.
func (d *Dispatcher) Reply(conn *Conn, msg interface{}) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message for %s: %v", conn.UserID, err)
		return false
	}
	return d.deliver(conn, data, "reply")
}

// SendTo delivers a message to the registered connection of an identity.
func (d *Dispatcher) SendTo(userID string, msg interface{}) bool {
	conn, ok := d.registry.Get(userID)
	if !ok {
		log.Printf("No connection registered for user %s", userID)
		return false
	}
	return d.Reply(conn, msg)
}

// BroadcastLobby fans a message out to a lobby's current subscriber set,
// optionally excluding one identity, and returns delivered/failed counts.
// Ordering across recipients is unspecified.
func (d *Dispatcher) BroadcastLobby(lobbyID string, msg interface{}, exclude string) (delivered, failed int) {
	delivered, failed = d.fanOut(d.registry.ActiveInLobby(lobbyID), msg, exclude)
	log.Printf("Broadcast to lobby %s: delivered to %d clients, failed for %d clients", lobbyID, delivered, failed)
	return delivered, failed
}

// BroadcastGame fans a message out to a game's current subscriber set.
func (d *Dispatcher) BroadcastGame(gameID string, msg interface{}, exclude string) (delivered, failed int) {
	delivered, failed = d.fanOut(d.registry.ActiveInGame(gameID), msg, exclude)
	log.Printf("Broadcast to game %s: delivered to %d clients, failed for %d clients", gameID, delivered, failed)
	return delivered, failed
}

// BroadcastAll fans a message out to every registered connection.
func (d *Dispatcher) BroadcastAll(msg interface{}) (delivered, failed int) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return 0, 0
	}
	for _, conn := range d.registry.Conns() {
		if d.deliver(conn, data, "global broadcast") {
			delivered++
		} else {
			failed++
		}
	}
	return delivered, failed
}

func (d *Dispatcher) fanOut(userIDs []string, msg interface{}, exclude string) (delivered, failed int) {
	if len(userIDs) == 0 {
		return 0, 0
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return 0, len(userIDs)
	}
	for _, userID := range userIDs {
		if userID == exclude {
			continue
		}
		conn, ok := d.registry.Get(userID)
		if !ok {
			failed++
			continue
		}
		if d.deliver(conn, data, "fan-out") {
			delivered++
		} else {
			failed++
		}
	}
	return delivered, failed
}

// deliver queues one frame and refreshes the recipient's activity timestamp
// on success.
func (d *Dispatcher) deliver(conn *Conn, data []byte, desc string) bool {
	if err := conn.enqueue(data); err != nil {
		log.Printf("Failed to send %s to %s: %v", desc, conn.UserID, err)
		return false
	}
	conn.touch()
	return true
}
