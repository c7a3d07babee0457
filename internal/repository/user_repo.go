package repository

import (
	"context"

	"drawit/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByUserID(ctx context.Context, userID string) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{collection: db.Collection("users")}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *userRepo) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}
	var user model.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	filter := bson.M{"username": username}
	if excludeUserID != "" {
		filter["userId"] = bson.M{"$ne": excludeUserID}
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	return n > 0, err
}

func (r *userRepo) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	filter := bson.M{"email": email}
	if excludeUserID != "" {
		filter["userId"] = bson.M{"$ne": excludeUserID}
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	return n > 0, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"userId": user.UserID}, user)
	return err
}
