package repository

import (
	"context"

	"drawit/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DrawingRepo interface {
	Create(ctx context.Context, drawing *model.Drawing) error
	GetByID(ctx context.Context, drawingID string) (*model.Drawing, error)
	Update(ctx context.Context, drawing *model.Drawing) error
	ListByGame(ctx context.Context, gameID string) ([]model.Drawing, error)
}

type drawingRepo struct {
	collection *mongo.Collection
}

func NewDrawingRepo(db *mongo.Database) DrawingRepo {
	return &drawingRepo{collection: db.Collection("drawings")}
}

func (r *drawingRepo) Create(ctx context.Context, drawing *model.Drawing) error {
	_, err := r.collection.InsertOne(ctx, drawing)
	return err
}

func (r *drawingRepo) GetByID(ctx context.Context, drawingID string) (*model.Drawing, error) {
	var drawing model.Drawing
	err := r.collection.FindOne(ctx, bson.M{"drawingId": drawingID}).Decode(&drawing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &drawing, nil
}

func (r *drawingRepo) Update(ctx context.Context, drawing *model.Drawing) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"drawingId": drawing.DrawingID}, drawing)
	return err
}

func (r *drawingRepo) ListByGame(ctx context.Context, gameID string) ([]model.Drawing, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"gameId": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drawings []model.Drawing
	if err := cursor.All(ctx, &drawings); err != nil {
		return nil, err
	}
	return drawings, nil
}
