package handlers

import (
	"net/http"
	"time"

	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/auth"
	"lab-inventory-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Maximum wait for a message from the client before the connection is
// considered dead.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub *socket.Hub
	Cfg config.Config
}

// ServeWs upgrades the connection and registers the client with the hub.
// Browsers cannot set headers on WebSocket handshakes, so the token rides in
// a query parameter.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := auth.ParseJWT(h.Cfg.JWT.Secret, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	h.Hub.Register(claims.UserID, claims.Role, conn)

	defer func() {
		h.Hub.Unregister(claims.UserID)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("userId", claims.UserID).Msg("unexpected websocket close")
			}
			break
		}
	}
}
