package repository

import (
	"context"

	"drawit/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, gameID string) (*model.Game, error)
	Update(ctx context.Context, game *model.Game) error
}

type gameRepo struct {
	collection *mongo.Collection
}

func NewGameRepo(db *mongo.Database) GameRepo {
	return &gameRepo{collection: db.Collection("games")}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	_, err := r.collection.InsertOne(ctx, game)
	return err
}

func (r *gameRepo) GetByID(ctx context.Context, gameID string) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, bson.M{"gameId": gameID}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) Update(ctx context.Context, game *model.Game) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"gameId": game.GameID}, game)
	return err
}
