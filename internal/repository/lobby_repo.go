package repository

import (
	"context"

	"drawit/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LobbyRepo interface {
	Create(ctx context.Context, lobby *model.Lobby) error
	GetByID(ctx context.Context, lobbyID string) (*model.Lobby, error)
	// ListOpen returns lobbies visible in public listings: unlocked and not private.
	ListOpen(ctx context.Context) ([]model.Lobby, error)
	ListAll(ctx context.Context) ([]model.Lobby, error)
	Update(ctx context.Context, lobby *model.Lobby) error
	Delete(ctx context.Context, lobbyID string) error
	AddPlayer(ctx context.Context, lobbyID string, playerID primitive.ObjectID) error
}

type lobbyRepo struct {
	collection *mongo.Collection
}

func NewLobbyRepo(db *mongo.Database) LobbyRepo {
	return &lobbyRepo{collection: db.Collection("lobbies")}
}

func (r *lobbyRepo) Create(ctx context.Context, lobby *model.Lobby) error {
	_, err := r.collection.InsertOne(ctx, lobby)
	return err
}

func (r *lobbyRepo) GetByID(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	var lobby model.Lobby
	err := r.collection.FindOne(ctx, bson.M{"lobbyId": lobbyID}).Decode(&lobby)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &lobby, nil
}

func (r *lobbyRepo) ListOpen(ctx context.Context) ([]model.Lobby, error) {
	return r.list(ctx, bson.M{"isLocked": false, "isPrivate": false})
}

func (r *lobbyRepo) ListAll(ctx context.Context) ([]model.Lobby, error) {
	return r.list(ctx, bson.M{})
}

func (r *lobbyRepo) list(ctx context.Context, filter bson.M) ([]model.Lobby, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lobbies []model.Lobby
	if err := cursor.All(ctx, &lobbies); err != nil {
		return nil, err
	}
	return lobbies, nil
}

func (r *lobbyRepo) Update(ctx context.Context, lobby *model.Lobby) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"lobbyId": lobby.LobbyID}, lobby)
	return err
}

func (r *lobbyRepo) Delete(ctx context.Context, lobbyID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"lobbyId": lobbyID})
	return err
}

func (r *lobbyRepo) AddPlayer(ctx context.Context, lobbyID string, playerID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"lobbyId": lobbyID},
		bson.M{"$addToSet": bson.M{"players": playerID}})
	return err
}
