package ws

import (
	"context"
	"testing"

	"drawit/internal/model"
)

func TestHandleJoinRequiresLobbyID(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice")
	conn := f.connect(user)

	f.router.Handle(context.Background(), conn, inboundMessage{Type: MsgJoinLobby})

	if frame := recvFrame(t, conn); frame["type"] != MsgError {
		t.Fatalf("expected error reply, got %v", frame)
	}
}

func TestHandleLeaveLobbyNotifiesRemaining(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	guest := f.addUser("bob")
	lobby := f.addLobby(host, guest)
	hostConn := f.connect(host)
	guestConn := f.connect(guest)
	f.registry.SubscribeLobby(lobby.LobbyID, host.UserID)
	f.registry.SubscribeLobby(lobby.LobbyID, guest.UserID)

	f.router.Handle(context.Background(), guestConn, inboundMessage{Type: MsgLeaveLobby})

	if lobbies := f.registry.LobbiesOf(guest.UserID); lobbies != nil {
		t.Fatalf("expected all subscriptions dropped, got %v", lobbies)
	}
	if frame := recvFrame(t, hostConn); frame["type"] != MsgLobbyState {
		t.Fatalf("expected lobby_state for remaining subscriber, got %v", frame["type"])
	}
}

func TestHandleSetReadyPersistsFlag(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	lobby := f.addLobby(host)
	conn := f.connect(host)
	f.registry.SubscribeLobby(lobby.LobbyID, host.UserID)

	ready := true
	f.router.Handle(context.Background(), conn, inboundMessage{Type: MsgSetReady, Ready: &ready})

	user, _ := f.users.GetByUserID(context.Background(), host.UserID)
	if !user.Ready {
		t.Fatalf("expected ready flag to be persisted")
	}
	frame := recvFrame(t, conn)
	if frame["type"] != MsgLobbyState {
		t.Fatalf("expected lobby_state, got %v", frame["type"])
	}
	payload := frame["payload"].(map[string]interface{})
	players := payload["players"].([]interface{})
	if players[0].(map[string]interface{})["ready"] != true {
		t.Fatalf("expected broadcast to carry ready flag, got %v", players[0])
	}
}

func TestHandleSetReadyDefaultsToTrue(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	conn := f.connect(host)

	f.router.Handle(context.Background(), conn, inboundMessage{Type: MsgSetReady})

	user, _ := f.users.GetByUserID(context.Background(), host.UserID)
	if !user.Ready {
		t.Fatalf("absent ready flag should default to true")
	}
}

func TestHandleGameStateRequest(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	lobby := f.addLobby(host)
	conn := f.connect(host)

	f.games.Create(context.Background(), &model.Game{
		GameID:        "game-1",
		LobbyID:       lobby.LobbyID,
		HostID:        host.UserID,
		Players:       lobby.Players,
		WordToGuess:   "apple",
		CurrentDrawer: host.ID,
		TimeRemaining: 60,
		Status:        model.GameActive,
	})

	f.router.Handle(context.Background(), conn, inboundMessage{Type: MsgGameStateRequest, GameRef: "game-1"})

	frame := recvFrame(t, conn)
	if frame["type"] != MsgGameState {
		t.Fatalf("expected game_state, got %v", frame["type"])
	}
	gp := frame["gamePayload"].(map[string]interface{})
	if gp["event"] != "update" {
		t.Fatalf("expected update event, got %v", gp["event"])
	}
	drawer := gp["currentDrawer"].(map[string]interface{})
	if drawer["userId"] != host.UserID {
		t.Fatalf("expected resolved drawer, got %v", drawer)
	}

	subs := f.registry.ActiveInGame("game-1")
	if len(subs) != 1 || subs[0] != host.UserID {
		t.Fatalf("expected requester subscribed to game, got %v", subs)
	}
}

func TestHandleGameStateRequestUnknownGame(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice")
	conn := f.connect(user)

	f.router.Handle(context.Background(), conn, inboundMessage{Type: MsgGameStateRequest, GameRef: "missing"})

	frame := recvFrame(t, conn)
	if frame["type"] != MsgError || frame["message"] != "Game not found" {
		t.Fatalf("expected game not found error, got %v", frame)
	}
}

func TestHandleChatBroadcast(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	aliceConn := f.connect(alice)
	bobConn := f.connect(bob)
	f.registry.SubscribeGame("game-1", alice.UserID)
	f.registry.SubscribeGame("game-1", bob.UserID)

	f.router.Handle(context.Background(), aliceConn, inboundMessage{
		Type:    MsgChatMessage,
		GameRef: "game-1",
		Message: "is it a dog?",
	})

	for _, conn := range []*Conn{aliceConn, bobConn} {
		frame := recvFrame(t, conn)
		if frame["type"] != MsgChatMessage {
			t.Fatalf("expected chat_message, got %v", frame["type"])
		}
		if frame["message"] != "is it a dog?" || frame["game_id"] != "game-1" {
			t.Fatalf("unexpected chat frame %v", frame)
		}
		sender := frame["sender"].(map[string]interface{})
		if sender["username"] != "alice" {
			t.Fatalf("expected sender alice, got %v", sender)
		}
		if frame["timestamp"].(float64) == 0 {
			t.Fatalf("expected server-side timestamp")
		}
	}
}

func TestHandleChatRequiresFields(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice")
	conn := f.connect(user)

	f.router.Handle(context.Background(), conn, inboundMessage{Type: MsgChatMessage, GameRef: "game-1"})

	if frame := recvFrame(t, conn); frame["type"] != MsgError {
		t.Fatalf("expected error reply, got %v", frame)
	}
}

func TestHandleUnknownTypeIgnored(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice")
	conn := f.connect(user)

	f.router.Handle(context.Background(), conn, inboundMessage{Type: "no_such_type"})
	noFrame(t, conn)
}

func TestHandleCountsAsActivity(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice")
	conn := f.connect(user)
	conn.mu.Lock()
	conn.lastSeen = conn.lastSeen.AddDate(0, 0, -1)
	conn.mu.Unlock()
	before := conn.lastActivity()

	f.router.Handle(context.Background(), conn, inboundMessage{Type: "no_such_type"})
	if !conn.lastActivity().After(before) {
		t.Fatalf("expected inbound traffic to refresh activity")
	}
}
