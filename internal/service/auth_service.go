package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"drawit/internal/model"
	"drawit/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrInvalidEmail       = errors.New("please provide a valid email address")
	ErrMissingFields      = errors.New("username, email and password are required")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const tokenTTL = 7 * 24 * time.Hour

// AuthService handles registration, login and token issue/verify.
type AuthService struct {
	users     repository.UserRepo
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(users repository.UserRepo, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a new account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthData, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < 6 {
		return nil, ErrWeakPassword
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}

	if taken, err := s.users.UsernameTaken(ctx, req.Username, ""); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.users.EmailTaken(ctx, req.Email, ""); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		UserID:    uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=" + req.Username,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &model.AuthData{Token: token, User: user}, nil
}

// Login verifies credentials against the stored hash and issues a token.
// The identifier may be a username or an email address.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*model.AuthData, error) {
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &model.AuthData{Token: token, User: user}, nil
}

// Refresh issues a fresh token for the holder of a structurally valid token,
// even if that token has already expired.
func (s *AuthService) Refresh(ctx context.Context, tokenString string) (*model.AuthData, error) {
	claims := &model.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &model.AuthData{Token: token, User: user}, nil
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.Claims, error) {
	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) keyFunc(token *jwt.Token) (interface{}, error) {
	return s.jwtSecret, nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	claims := &model.Claims{
		UserID:   user.UserID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
