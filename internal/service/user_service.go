package service

import (
	"context"
	"fmt"

	"drawit/internal/model"
	"drawit/internal/repository"
)

// UserService handles profile lookups and updates.
type UserService struct {
	users repository.UserRepo
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepo) *UserService {
	return &UserService{users: users}
}

// Get returns a user by its public identifier.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies partial profile changes with uniqueness checks.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		taken, err := s.users.UsernameTaken(ctx, req.Username, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		if !emailPattern.MatchString(req.Email) {
			return nil, ErrInvalidEmail
		}
		taken, err := s.users.EmailTaken(ctx, req.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = req.Email
	}

	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
