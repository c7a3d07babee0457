package model

// CreateLobbyRequest is the request body for lobby creation.
type CreateLobbyRequest struct {
	Name                 string `json:"name"`
	MaxPlayers           int    `json:"maxPlayers"`
	IsPrivate            bool   `json:"isPrivate"`
	Password             string `json:"password"`
	NumRounds            int    `json:"numRounds"`
	RoundDurationSeconds int    `json:"roundDurationSeconds"`
}

// UpdateLobbySettingsRequest carries partial lobby settings updates; nil
// fields are left untouched.
type UpdateLobbySettingsRequest struct {
	Name                 *string `json:"name"`
	MaxPlayers           *int    `json:"maxPlayers"`
	IsPrivate            *bool   `json:"isPrivate"`
	Password             *string `json:"password"`
	NumRounds            *int    `json:"numRounds"`
	RoundDurationSeconds *int    `json:"roundDurationSeconds"`
}

// JoinLobbyRequest is the request body for joining a lobby.
type JoinLobbyRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest carries partial profile updates.
type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// CreateDrawingRequest is the request body for submitting a drawing.
type CreateDrawingRequest struct {
	Title     string `json:"title"`
	ImageData string `json:"imageData"`
	Prompt    string `json:"prompt"`
	GameID    string `json:"gameId"`
}

// RateDrawingRequest is the request body for rating a drawing.
type RateDrawingRequest struct {
	Score int `json:"score"`
}
