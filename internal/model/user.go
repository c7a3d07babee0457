package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the persisted account document.
type User struct {
	ID               primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID           string             `json:"userId" bson:"userId"`
	Username         string             `json:"username" bson:"username"`
	Email            string             `json:"email" bson:"email"`
	Password         string             `json:"-" bson:"password"`
	AvatarURL        string             `json:"avatarUrl" bson:"avatarUrl"`
	TotalGamesPlayed int                `json:"totalGamesPlayed" bson:"totalGamesPlayed"`
	GamesWon         int                `json:"gamesWon" bson:"gamesWon"`
	Ready            bool               `json:"ready" bson:"ready"`
}

// PlayerInfo is the resolved player summary embedded in lobby and game
// payloads sent to clients.
type PlayerInfo struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Ready     bool   `json:"ready"`
}

// Info returns the wire summary for this user.
func (u *User) Info() PlayerInfo {
	return PlayerInfo{
		UserID:    u.UserID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Ready:     u.Ready,
	}
}

// Infos maps a resolved user list to wire summaries.
func Infos(users []User) []PlayerInfo {
	infos := make([]PlayerInfo, len(users))
	for i := range users {
		infos[i] = users[i].Info()
	}
	return infos
}
