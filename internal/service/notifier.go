package service

// Notifier pushes realtime state refreshes after a record mutation
// (implemented by the websocket reconciler; interface avoids import cycle).
type Notifier interface {
	LobbyChanged(lobbyID string)
	GameChanged(gameID string)
	LobbyListChanged()
}

// noopNotifier is used until a real notifier is injected.
type noopNotifier struct{}

func (noopNotifier) LobbyChanged(string) {}
func (noopNotifier) GameChanged(string)  {}
func (noopNotifier) LobbyListChanged()   {}
