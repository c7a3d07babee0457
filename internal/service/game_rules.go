package service

import (
	"math/rand"

	"drawit/internal/model"
)

// DefaultWordList is the fixed candidate list used when a round needs a word.
var DefaultWordList = []string{
	"apple", "banana", "car", "dog", "elephant",
	"flower", "guitar", "house", "island", "jacket",
}

// EnsurePlayable fills in any field an active game cannot run without:
// a current drawer (random draw from the player list), a word to guess
// (random draw from words) and a remaining time (round duration, or 60s
// when the duration itself is unset). It mutates only the given game and
// reports whether anything changed, so callers decide about persistence.
func EnsurePlayable(game *model.Game, words []string) bool {
	changed := false

	if game.CurrentDrawer.IsZero() && len(game.Players) > 0 {
		game.CurrentDrawer = game.Players[rand.Intn(len(game.Players))]
		changed = true
	}
	if game.WordToGuess == "" && len(words) > 0 {
		game.WordToGuess = words[rand.Intn(len(words))]
		changed = true
	}
	if game.TimeRemaining <= 0 {
		if game.RoundDurationSeconds > 0 {
			game.TimeRemaining = game.RoundDurationSeconds
		} else {
			game.TimeRemaining = 60
		}
		changed = true
	}
	return changed
}
