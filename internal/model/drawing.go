package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a single user's score for a drawing. A user rates a drawing at
// most once; a later rating replaces the earlier one.
type Rating struct {
	UserID string `json:"userId" bson:"userId"`
	Score  int    `json:"score" bson:"score"`
}

// Drawing is a persisted drawing submitted during a game round.
type Drawing struct {
	ID            primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	DrawingID     string             `json:"drawingId" bson:"drawingId"`
	Title         string             `json:"title" bson:"title"`
	ImageData     string             `json:"imageData" bson:"imageData"`
	AuthorID      string             `json:"authorId" bson:"authorId"`
	Prompt        string             `json:"prompt" bson:"prompt"`
	Ratings       []Rating           `json:"ratings" bson:"ratings"`
	AverageRating float64            `json:"averageRating" bson:"averageRating"`
	GameID        string             `json:"gameId,omitempty" bson:"gameId,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// ApplyRating records or replaces the user's vote and recomputes the average.
func (d *Drawing) ApplyRating(userID string, score int) {
	for i := range d.Ratings {
		if d.Ratings[i].UserID == userID {
			d.Ratings[i].Score = score
			d.recomputeAverage()
			return
		}
	}
	d.Ratings = append(d.Ratings, Rating{UserID: userID, Score: score})
	d.recomputeAverage()
}

func (d *Drawing) recomputeAverage() {
	if len(d.Ratings) == 0 {
		d.AverageRating = 0
		return
	}
	total := 0
	for _, r := range d.Ratings {
		total += r.Score
	}
	d.AverageRating = float64(total) / float64(len(d.Ratings))
}
