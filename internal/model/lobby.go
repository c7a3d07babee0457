package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lobby is the persisted pre-game waiting room document. Players are stored
// as references and resolved on demand; the realtime layer always reloads
// this document before broadcasting state built from it.
type Lobby struct {
	ID                   primitive.ObjectID   `json:"-" bson:"_id,omitempty"`
	LobbyID              string               `json:"lobbyId" bson:"lobbyId"`
	Name                 string               `json:"name" bson:"name"`
	HostID               string               `json:"hostId" bson:"hostId"`
	MaxPlayers           int                  `json:"maxPlayers" bson:"maxPlayers"`
	IsPrivate            bool                 `json:"isPrivate" bson:"isPrivate"`
	Password             string               `json:"-" bson:"password"`
	Players              []primitive.ObjectID `json:"-" bson:"players"`
	IsLocked             bool                 `json:"isLocked" bson:"isLocked"`
	NumRounds            int                  `json:"numRounds" bson:"numRounds"`
	RoundDurationSeconds int                  `json:"roundDurationSeconds" bson:"roundDurationSeconds"`
	CreatedAt            time.Time            `json:"createdAt" bson:"createdAt"`
	LastActivity         time.Time            `json:"lastActivity" bson:"lastActivity"`
}

// LobbySummary is the flattened lobby description carried in websocket
// payloads. Host details are delivered alongside, never nested inside.
type LobbySummary struct {
	LobbyID              string `json:"lobbyId"`
	Name                 string `json:"name"`
	HostID               string `json:"hostId"`
	MaxPlayers           int    `json:"maxPlayers"`
	IsPrivate            bool   `json:"isPrivate"`
	IsLocked             bool   `json:"isLocked"`
	NumRounds            int    `json:"numRounds"`
	RoundDurationSeconds int    `json:"roundDurationSeconds"`
	PlayerCount          int    `json:"playerCount"`
}

// Summary builds the wire form of the lobby with the given resolved count.
func (l *Lobby) Summary(playerCount int) LobbySummary {
	return LobbySummary{
		LobbyID:              l.LobbyID,
		Name:                 l.Name,
		HostID:               l.HostID,
		MaxPlayers:           l.MaxPlayers,
		IsPrivate:            l.IsPrivate,
		IsLocked:             l.IsLocked,
		NumRounds:            l.NumRounds,
		RoundDurationSeconds: l.RoundDurationSeconds,
		PlayerCount:          playerCount,
	}
}

// LobbyDetail pairs a lobby with its resolved player and host records.
type LobbyDetail struct {
	Lobby   *Lobby
	Players []User
	Host    *User
}

// PlayerInfos returns the wire summaries of the resolved players.
func (d *LobbyDetail) PlayerInfos() []PlayerInfo {
	return Infos(d.Players)
}

// HostInfo returns the wire summary of the host, or a placeholder when the
// host record could not be resolved.
func (d *LobbyDetail) HostInfo() *PlayerInfo {
	if d.Host == nil {
		return &PlayerInfo{UserID: d.Lobby.HostID, Username: "Unknown Host"}
	}
	info := d.Host.Info()
	return &info
}
