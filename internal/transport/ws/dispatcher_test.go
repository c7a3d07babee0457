package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// recvFrame pops the next queued frame from a connection's send buffer.
func recvFrame(t *testing.T, conn *Conn) map[string]interface{} {
	t.Helper()
	select {
	case data := <-conn.send:
		var frame map[string]interface{}
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("invalid frame: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatalf("no frame queued")
		return nil
	}
}

func noFrame(t *testing.T, conn *Conn) {
	t.Helper()
	select {
	case data := <-conn.send:
		t.Fatalf("unexpected frame queued: %s", data)
	default:
	}
}

func TestBroadcastLobbyDeliversToSubscribers(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)
	a, _ := newTestConn("u1")
	b, _ := newTestConn("u2")
	r.Register(a)
	r.Register(b)
	r.SubscribeLobby("l1", "u1")
	r.SubscribeLobby("l1", "u2")

	delivered, failed := d.BroadcastLobby("l1", statusMessage{Type: "test", Message: "hi"}, "")
	if delivered != 2 || failed != 0 {
		t.Fatalf("expected 2/0, got %d/%d", delivered, failed)
	}
	if frame := recvFrame(t, a); frame["type"] != "test" {
		t.Fatalf("unexpected frame %v", frame)
	}
	recvFrame(t, b)
}

func TestBroadcastLobbyEmptySet(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	if delivered, failed := d.BroadcastLobby("l1", statusMessage{Type: "test"}, ""); delivered != 0 || failed != 0 {
		t.Fatalf("expected 0/0 for empty lobby, got %d/%d", delivered, failed)
	}
}

func TestBroadcastExcludesIdentity(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)
	a, _ := newTestConn("u1")
	b, _ := newTestConn("u2")
	r.Register(a)
	r.Register(b)
	r.SubscribeLobby("l1", "u1")
	r.SubscribeLobby("l1", "u2")

	delivered, _ := d.BroadcastLobby("l1", statusMessage{Type: "test"}, "u1")
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
	noFrame(t, a)
	recvFrame(t, b)
}

func TestBroadcastCountsClosedConnAsFailed(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)
	a, _ := newTestConn("u1")
	r.Register(a)
	r.SubscribeLobby("l1", "u1")
	a.close()

	delivered, failed := d.BroadcastLobby("l1", statusMessage{Type: "test"}, "")
	if delivered != 0 || failed != 1 {
		t.Fatalf("expected 0/1, got %d/%d", delivered, failed)
	}
}

func TestSendToUnknownUser(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	if d.SendTo("ghost", statusMessage{Type: "test"}) {
		t.Fatalf("expected send to unknown user to fail")
	}
}

func TestDeliveryRefreshesActivity(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)
	conn, _ := newTestConn("u1")
	r.Register(conn)

	conn.mu.Lock()
	conn.lastSeen = time.Now().Add(-time.Hour)
	conn.mu.Unlock()

	if !d.SendTo("u1", statusMessage{Type: "test"}) {
		t.Fatalf("expected delivery to succeed")
	}
	if time.Since(conn.lastActivity()) > time.Minute {
		t.Fatalf("expected successful delivery to refresh last activity")
	}
}
