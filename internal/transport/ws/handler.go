package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"drawit/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and runs the read
// and write pumps. Authentication happens before registration: a socket
// without a valid token is accepted but never registered, and every frame it
// sends is answered with auth_required.
type Handler struct {
	auth       *service.AuthService
	registry   *Registry
	dispatcher *Dispatcher
	reconciler *Reconciler
	router     *Router
}

// NewHandler creates the websocket entry point.
func NewHandler(
	auth *service.AuthService,
	registry *Registry,
	dispatcher *Dispatcher,
	reconciler *Reconciler,
	router *Router,
) *Handler {
	return &Handler{
		auth:       auth,
		registry:   registry,
		dispatcher: dispatcher,
		reconciler: reconciler,
		router:     router,
	}
}

// ServeWS handles GET /ws. The token comes from the Authorization header or,
// for browser clients that cannot set headers on websocket requests, the
// token query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	claims, err := h.auth.ValidateToken(extractToken(r))
	if err != nil {
		h.serveUnauthenticated(sock)
		return
	}

	conn := newConn(claims.UserID, sock)
	if prior := h.registry.Register(conn); prior != nil {
		prior.close()
	}
	log.Printf("Websocket connected for user %s", claims.UserID)

	go h.writePump(sock, conn)

	h.dispatcher.Reply(conn, statusMessage{Type: MsgConnectionEstablished, Message: "Connected"})
	h.reconciler.withTimeout(func(ctx context.Context) {
		h.reconciler.SendLobbyList(ctx, conn, "initial")
	})

	h.readPump(sock, conn)
}

// readPump reads frames until the socket dies, then unregisters the
// connection and refreshes the lobbies it was subscribed to.
func (h *Handler) readPump(sock *websocket.Conn, conn *Conn) {
	defer func() {
		lobbies := h.registry.Unregister(conn)
		conn.close()
		log.Printf("Websocket disconnected for user %s", conn.UserID)
		for _, lobbyID := range lobbies {
			id := lobbyID
			h.reconciler.withTimeout(func(ctx context.Context) {
				h.reconciler.NotifyLobbyChange(ctx, id)
			})
		}
	}()

	sock.SetReadLimit(maxMessageSize)
	sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		conn.markAlive()
		sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for user %s: %v", conn.UserID, err)
			}
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.dispatcher.Reply(conn, errorMessage("Invalid message format"))
			continue
		}
		h.reconciler.withTimeout(func(ctx context.Context) {
			h.router.Handle(ctx, conn, msg)
		})
	}
}

// writePump drains the send queue onto the socket. Pings are not sent here:
// the heartbeat monitor probes all connections centrally.
func (h *Handler) writePump(sock *websocket.Conn, conn *Conn) {
	for data := range conn.send {
		sock.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sock.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Websocket write error for user %s: %v", conn.UserID, err)
			conn.close()
			return
		}
	}
	sock.SetWriteDeadline(time.Now().Add(writeWait))
	sock.WriteMessage(websocket.CloseMessage, []byte{})
}

// serveUnauthenticated keeps a tokenless socket open but inert: it gets a
// connection acknowledgement, and every frame it sends is answered with
// auth_required until it goes away.
func (h *Handler) serveUnauthenticated(sock *websocket.Conn) {
	defer sock.Close()
	log.Printf("Unauthenticated websocket connection from %s", sock.RemoteAddr())

	sock.SetReadLimit(maxMessageSize)
	sock.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sock.WriteJSON(statusMessage{Type: MsgConnectionEstablished, Message: "Connected. Authentication required for most operations."}); err != nil {
		return
	}

	for {
		sock.SetReadDeadline(time.Now().Add(pongWait))
		if _, _, err := sock.ReadMessage(); err != nil {
			return
		}
		sock.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sock.WriteJSON(statusMessage{Type: MsgAuthRequired, Message: "Authentication required"}); err != nil {
			return
		}
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
