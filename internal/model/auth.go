package model

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims carried by every issued token.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	Token string `json:"token"`
}

// AuthData is returned after successful registration, login or refresh.
type AuthData struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
