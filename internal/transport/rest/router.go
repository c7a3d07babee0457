package rest

import (
	"net/http"
	"os"

	"drawit/internal/service"
	"drawit/internal/transport/rest/handler"
	"drawit/internal/transport/rest/middleware"
	"drawit/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	UserService    *service.UserService
	LobbyService   *service.LobbyService
	GameService    *service.GameService
	DrawingService *service.DrawingService
	WSHandler      *ws.Handler
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	userHandler := handler.NewUserHandler(c.UserService)
	lobbyHandler := handler.NewLobbyHandler(c.LobbyService, c.GameService)
	drawingHandler := handler.NewDrawingHandler(c.DrawingService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// WebSocket endpoint; does its own token handling so unauthenticated
	// sockets can still connect
	r.HandleFunc("/ws", c.WSHandler.ServeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")

	// Authenticated routes
	auth := api.NewRoute().Subrouter()
	auth.Use(authMW.RequireAuth)

	auth.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	// /users/profile must be registered before /users/{userId}
	auth.HandleFunc("/users/profile", userHandler.GetProfile).Methods("GET", "OPTIONS")
	auth.HandleFunc("/users/profile", userHandler.UpdateProfile).Methods("PUT", "OPTIONS")
	auth.HandleFunc("/users/{userId}", userHandler.GetByID).Methods("GET", "OPTIONS")

	auth.HandleFunc("/lobbies", lobbyHandler.List).Methods("GET", "OPTIONS")
	auth.HandleFunc("/lobbies", lobbyHandler.Create).Methods("POST", "OPTIONS")
	auth.HandleFunc("/lobbies/{lobbyId}", lobbyHandler.Get).Methods("GET", "OPTIONS")
	auth.HandleFunc("/lobbies/{lobbyId}/join", lobbyHandler.Join).Methods("POST", "OPTIONS")
	auth.HandleFunc("/lobbies/{lobbyId}/leave", lobbyHandler.Leave).Methods("POST", "OPTIONS")
	auth.HandleFunc("/lobbies/{lobbyId}/settings", lobbyHandler.UpdateSettings).Methods("PUT", "OPTIONS")
	auth.HandleFunc("/lobbies/{lobbyId}/lock", lobbyHandler.SetLocked).Methods("POST", "OPTIONS")
	auth.HandleFunc("/lobbies/{lobbyId}/start-game", lobbyHandler.StartGame).Methods("POST", "OPTIONS")

	auth.HandleFunc("/games/{gameId}", lobbyHandler.GetGame).Methods("GET", "OPTIONS")
	auth.HandleFunc("/games/{gameId}/drawings", drawingHandler.ListByGame).Methods("GET", "OPTIONS")

	// /drawings/top must be registered before /drawings/{drawingId}/rate
	auth.HandleFunc("/drawings/top", drawingHandler.Top).Methods("GET", "OPTIONS")
	auth.HandleFunc("/drawings", drawingHandler.Create).Methods("POST", "OPTIONS")
	auth.HandleFunc("/drawings/{drawingId}/rate", drawingHandler.Rate).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
