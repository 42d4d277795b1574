package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"lastlap/internal/game"
	"lastlap/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// Inbound message budget per connection; floods are dropped without
	// closing the socket.
	inboundRate  = 20
	inboundBurst = 40
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler accepts realtime connections and attaches them to sessions.
type Handler struct {
	registry *game.Registry
}

func NewHandler(registry *game.Registry) *Handler {
	return &Handler{registry: registry}
}

// ServeSession handles GET /ws/{code}/{room}. Players declare a display
// name and team color as query parameters; spectators declare nothing.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]
	room := model.Room(vars["room"])
	name := r.URL.Query().Get("player")
	color := r.URL.Query().Get("color")

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	if room == "" {
		room = model.RoomLobby
	}
	if room != model.RoomLobby && room != model.RoomBattle && room != model.RoomSpectate {
		closeWithPolicyViolation(wsConn, "unknown room")
		return
	}

	if room == model.RoomSpectate {
		h.serveSpectator(wsConn, code)
		return
	}

	if name == "" {
		closeWithPolicyViolation(wsConn, "player name required")
		return
	}

	session := h.registry.GetOrCreate(code)
	c := newConn()
	playerID, err := session.AttachPlayer(c, name, color, room)
	if err != nil {
		// Every rejection carries a readable close reason; ErrSessionFull
		// reads as "session full".
		closeWithPolicyViolation(wsConn, err.Error())
		return
	}

	go h.writePump(wsConn, c)
	h.readPump(wsConn, session, playerID)
}

// ServeMissingCode answers realtime paths without a game code: the
// connection is upgraded and immediately closed with a policy
// violation, never touching any session.
func (h *Handler) ServeMissingCode(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	closeWithPolicyViolation(wsConn, "game code required")
}

func (h *Handler) serveSpectator(wsConn *websocket.Conn, code string) {
	session := h.registry.GetOrCreate(code)
	c := newConn()
	spectatorID := session.AttachSpectator(c)

	go h.writePump(wsConn, c)

	defer func() {
		session.DetachSpectator(spectatorID)
		c.Close()
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Spectators only receive; inbound frames are drained and dropped.
	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, session *game.Session, playerID string) {
	defer func() {
		session.DetachPlayer(playerID)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(inboundRate, inboundBurst)

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			return
		}
		if !limiter.Allow() {
			continue
		}

		act, err := model.DecodeAction(data)
		if err != nil {
			log.Printf("ignoring inbound message: %v", err)
			continue
		}
		session.HandleAction(playerID, act)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func closeWithPolicyViolation(wsConn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	wsConn.WriteMessage(websocket.CloseMessage, msg)
	wsConn.Close()
}
