package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GameStatus string

const (
	GameWaiting  GameStatus = "waiting"
	GameActive   GameStatus = "active"
	GameFinished GameStatus = "finished"
)

// PlayerScore tracks one player's running score within a game.
type PlayerScore struct {
	UserID   string `json:"userId" bson:"userId"`
	Username string `json:"username" bson:"username"`
	Score    int    `json:"score" bson:"score"`
}

// Game is the persisted game session document. A transient game is one
// synthesized from lobby settings during the start handshake rather than
// created through the start-game endpoint.
type Game struct {
	ID                   primitive.ObjectID   `json:"-" bson:"_id,omitempty"`
	GameID               string               `json:"gameId" bson:"gameId"`
	LobbyID              string               `json:"lobbyId" bson:"lobbyId"`
	HostID               string               `json:"hostId" bson:"hostId"`
	Players              []primitive.ObjectID `json:"-" bson:"players"`
	CurrentRound         int                  `json:"currentRound" bson:"currentRound"`
	MaxRounds            int                  `json:"maxRounds" bson:"maxRounds"`
	RoundDurationSeconds int                  `json:"roundDurationSeconds" bson:"roundDurationSeconds"`
	CurrentDrawer        primitive.ObjectID   `json:"-" bson:"currentDrawer,omitempty"`
	WordToGuess          string               `json:"wordToGuess" bson:"wordToGuess"`
	TimeRemaining        int                  `json:"timeRemaining" bson:"timeRemaining"`
	IsTransient          bool                 `json:"isTransient" bson:"isTransient"`
	PlayerScores         []PlayerScore        `json:"playerScores" bson:"playerScores"`
	Status               GameStatus           `json:"status" bson:"status"`
	CreatedAt            time.Time            `json:"createdAt" bson:"createdAt"`
}

// GameDetail pairs a game with its resolved player and drawer records.
type GameDetail struct {
	Game    *Game
	Players []User
	Drawer  *User
}

// GameView is the wire representation of a game with references resolved.
type GameView struct {
	GameID               string        `json:"gameId"`
	LobbyID              string        `json:"lobbyId"`
	HostID               string        `json:"hostId,omitempty"`
	Players              []PlayerInfo  `json:"players"`
	CurrentRound         int           `json:"currentRound"`
	MaxRounds            int           `json:"maxRounds"`
	RoundDurationSeconds int           `json:"roundDurationSeconds"`
	CurrentDrawer        *PlayerInfo   `json:"currentDrawer,omitempty"`
	WordToGuess          string        `json:"wordToGuess,omitempty"`
	TimeRemaining        int           `json:"timeRemaining"`
	IsTransient          bool          `json:"isTransient"`
	PlayerScores         []PlayerScore `json:"playerScores"`
	Status               GameStatus    `json:"status"`
	CreatedAt            time.Time     `json:"createdAt"`
}

// View builds the wire form of the game.
func (d *GameDetail) View() *GameView {
	v := &GameView{
		GameID:               d.Game.GameID,
		LobbyID:              d.Game.LobbyID,
		HostID:               d.Game.HostID,
		Players:              Infos(d.Players),
		CurrentRound:         d.Game.CurrentRound,
		MaxRounds:            d.Game.MaxRounds,
		RoundDurationSeconds: d.Game.RoundDurationSeconds,
		WordToGuess:          d.Game.WordToGuess,
		TimeRemaining:        d.Game.TimeRemaining,
		IsTransient:          d.Game.IsTransient,
		PlayerScores:         d.Game.PlayerScores,
		Status:               d.Game.Status,
		CreatedAt:            d.Game.CreatedAt,
	}
	if d.Drawer != nil {
		info := d.Drawer.Info()
		v.CurrentDrawer = &info
	}
	return v
}

// DrawerInfo returns the wire summary of the current drawer, or nil.
func (d *GameDetail) DrawerInfo() *PlayerInfo {
	if d.Drawer == nil {
		return nil
	}
	info := d.Drawer.Info()
	return &info
}
