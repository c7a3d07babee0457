package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"drawit/internal/cache"
	"drawit/internal/model"
	"drawit/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrDrawingNotFound   = errors.New("drawing not found")
	ErrInvalidScore      = errors.New("score must be between 1 and 5")
	ErrDrawingIncomplete = errors.New("title and image data are required")
)

// DrawingService handles drawing submissions and the rating aggregate.
// Averages are persisted on the drawing document; the redis leaderboard is
// best-effort and rebuilt write-through on every rating.
type DrawingService struct {
	drawings repository.DrawingRepo
	ratings  cache.RatingCache
}

// NewDrawingService creates a new drawing service.
func NewDrawingService(drawings repository.DrawingRepo, ratings cache.RatingCache) *DrawingService {
	return &DrawingService{drawings: drawings, ratings: ratings}
}

// Create persists a new drawing.
func (s *DrawingService) Create(ctx context.Context, authorID string, req *model.CreateDrawingRequest) (*model.Drawing, error) {
	if req.Title == "" || req.ImageData == "" {
		return nil, ErrDrawingIncomplete
	}

	drawing := &model.Drawing{
		DrawingID: uuid.New().String(),
		Title:     req.Title,
		ImageData: req.ImageData,
		AuthorID:  authorID,
		Prompt:    req.Prompt,
		GameID:    req.GameID,
		CreatedAt: time.Now(),
	}
	if err := s.drawings.Create(ctx, drawing); err != nil {
		return nil, fmt.Errorf("failed to create drawing: %w", err)
	}
	return drawing, nil
}

// Rate records one user's vote, recomputes the average and refreshes the
// leaderboard entry.
func (s *DrawingService) Rate(ctx context.Context, drawingID, userID string, score int) (*model.Drawing, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}

	drawing, err := s.drawings.GetByID(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawing: %w", err)
	}
	if drawing == nil {
		return nil, ErrDrawingNotFound
	}

	drawing.ApplyRating(userID, score)
	if err := s.drawings.Update(ctx, drawing); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	if err := s.ratings.UpdateScore(ctx, drawingID, drawing.AverageRating); err != nil {
		log.Printf("Failed to update rating leaderboard for drawing %s: %v", drawingID, err)
	}
	return drawing, nil
}

// ListByGame returns all drawings submitted in a game.
func (s *DrawingService) ListByGame(ctx context.Context, gameID string) ([]model.Drawing, error) {
	drawings, err := s.drawings.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawings: %w", err)
	}
	return drawings, nil
}

// Top returns the highest-rated drawings from the leaderboard.
func (s *DrawingService) Top(ctx context.Context, limit int) ([]cache.RatedDrawing, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.ratings.GetTop(ctx, limit)
}
