package ws

import (
	"context"
	"testing"

	"drawit/internal/model"
	"drawit/internal/service"
)

func TestJoinLobbyRepliesWithState(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	lobby := f.addLobby(host)
	conn := f.connect(host)

	f.coordinator.JoinLobby(context.Background(), conn, lobby.LobbyID)

	frame := recvFrame(t, conn)
	if frame["type"] != MsgLobbyJoined {
		t.Fatalf("expected lobby_joined, got %v", frame["type"])
	}
	if frame["lobbyId"] != lobby.LobbyID {
		t.Fatalf("expected lobbyId %s, got %v", lobby.LobbyID, frame["lobbyId"])
	}
	payload := frame["payload"].(map[string]interface{})
	if payload["event"] != "joined" || payload["user_id"] != host.UserID {
		t.Fatalf("unexpected payload %v", payload)
	}

	subs := f.registry.ActiveInLobby(lobby.LobbyID)
	if len(subs) != 1 || subs[0] != host.UserID {
		t.Fatalf("expected subscription for %s, got %v", host.UserID, subs)
	}
}

func TestJoinUnknownLobby(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice")
	conn := f.connect(user)

	f.coordinator.JoinLobby(context.Background(), conn, "missing")

	frame := recvFrame(t, conn)
	if frame["type"] != MsgError || frame["message"] != "Lobby not found" {
		t.Fatalf("expected lobby not found error, got %v", frame)
	}
	if subs := f.registry.ActiveInLobby("missing"); subs != nil {
		t.Fatalf("expected no subscription, got %v", subs)
	}
}

func TestStartGameSynthesizesTransientGame(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	guest := f.addUser("bob")
	lobby := f.addLobby(host, guest)
	hostConn := f.connect(host)
	guestConn := f.connect(guest)
	f.registry.SubscribeLobby(lobby.LobbyID, host.UserID)
	f.registry.SubscribeLobby(lobby.LobbyID, guest.UserID)

	f.coordinator.StartGame(context.Background(), hostConn, lobby.LobbyID, "game-1")

	game, _ := f.games.GetByID(context.Background(), "game-1")
	if game == nil {
		t.Fatalf("expected game to be persisted")
	}
	if !game.IsTransient || game.Status != model.GameActive {
		t.Fatalf("expected active transient game, got %+v", game)
	}
	wordOK := false
	for _, w := range service.DefaultWordList {
		if game.WordToGuess == w {
			wordOK = true
			break
		}
	}
	if !wordOK {
		t.Fatalf("word %q not from candidate list", game.WordToGuess)
	}
	if game.CurrentDrawer != host.ID && game.CurrentDrawer != guest.ID {
		t.Fatalf("drawer %v is not a player", game.CurrentDrawer)
	}
	if game.TimeRemaining != 60 {
		t.Fatalf("expected 60s timer, got %d", game.TimeRemaining)
	}
	if len(game.PlayerScores) != 2 {
		t.Fatalf("expected 2 score entries, got %d", len(game.PlayerScores))
	}

	stored, _ := f.lobbies.GetByID(context.Background(), lobby.LobbyID)
	if !stored.IsLocked {
		t.Fatalf("expected lobby to be locked")
	}

	if subs := f.registry.ActiveInGame("game-1"); len(subs) != 2 {
		t.Fatalf("expected both players in game subscription, got %v", subs)
	}

	for _, conn := range []*Conn{hostConn, guestConn} {
		frame := recvFrame(t, conn)
		if frame["type"] != MsgStartGame {
			t.Fatalf("expected start_game, got %v", frame["type"])
		}
		gp := frame["gamePayload"].(map[string]interface{})
		gameObj := gp["game"].(map[string]interface{})
		if gameObj["gameId"] != "game-1" {
			t.Fatalf("unexpected game payload %v", gameObj)
		}
		// Corroborating lobby list refresh follows the start signal.
		if frame := recvFrame(t, conn); frame["type"] != MsgLobbiesUpdate {
			t.Fatalf("expected lobbies_update, got %v", frame["type"])
		}
	}
}

func TestStartGameNonHostRejected(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	guest := f.addUser("bob")
	lobby := f.addLobby(host, guest)
	guestConn := f.connect(guest)

	f.coordinator.StartGame(context.Background(), guestConn, lobby.LobbyID, "game-1")

	frame := recvFrame(t, guestConn)
	if frame["type"] != MsgError {
		t.Fatalf("expected error reply, got %v", frame)
	}
	if game, _ := f.games.GetByID(context.Background(), "game-1"); game != nil {
		t.Fatalf("expected no game to be created")
	}
	stored, _ := f.lobbies.GetByID(context.Background(), lobby.LobbyID)
	if stored.IsLocked {
		t.Fatalf("lobby must not be locked on rejected start")
	}
}

func TestStartGameKeepsExistingGame(t *testing.T) {
	f := newFixture()
	host := f.addUser("alice")
	guest := f.addUser("bob")
	lobby := f.addLobby(host, guest)
	hostConn := f.connect(host)
	f.registry.SubscribeLobby(lobby.LobbyID, host.UserID)

	existing := &model.Game{
		GameID:        "game-1",
		LobbyID:       lobby.LobbyID,
		HostID:        host.UserID,
		Players:       lobby.Players,
		WordToGuess:   "apple",
		CurrentDrawer: guest.ID,
		TimeRemaining: 42,
		Status:        model.GameActive,
	}
	f.games.Create(context.Background(), existing)

	f.coordinator.StartGame(context.Background(), hostConn, lobby.LobbyID, "game-1")

	game, _ := f.games.GetByID(context.Background(), "game-1")
	if game.WordToGuess != "apple" || game.CurrentDrawer != guest.ID || game.TimeRemaining != 42 {
		t.Fatalf("existing game was resynthesized: %+v", game)
	}
	if frame := recvFrame(t, hostConn); frame["type"] != MsgStartGame {
		t.Fatalf("expected start_game, got %v", frame["type"])
	}
}
