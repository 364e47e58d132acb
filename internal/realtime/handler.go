package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/crestapp/crest/backend/internal/auth"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests to WebSocket connections.
type Handler struct {
	hub         *Hub
	authService *auth.Service
}

// NewHandler creates a WebSocket upgrade handler.
func NewHandler(hub *Hub, authService *auth.Service) *Handler {
	return &Handler{hub: hub, authService: authService}
}

// HandleWebSocket authenticates and upgrades a connection. The token comes
// from the ?token= query param or the Authorization header; browsers cannot
// set headers on WebSocket dials, so the query param is the common path.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	user, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": err.Error(),
		})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, user.ID, user.Username)
	client.RemoteAddr = c.ClientIP()

	h.hub.Register(client)

	_ = client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event: "connected",
		Data: map[string]interface{}{
			"user_id":     user.ID,
			"username":    user.Username,
			"server_time": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

func (h *Handler) authenticate(c *gin.Context) (*models.User, error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if header := c.GetHeader("Authorization"); header != "" {
			tokenString = header
			if len(header) > 7 && header[:7] == "Bearer " {
				tokenString = header[7:]
			}
		}
	}
	if tokenString == "" {
		return nil, auth.ErrInvalidToken
	}

	return h.authService.ValidateToken(tokenString)
}

// HandleMetrics exposes hub counters for monitoring.
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket": h.hub.GetMetrics(),
		"timestamp": time.Now().UTC(),
	})
}

// Pusher adapts the hub to notification fan-out delivery.
type Pusher struct {
	hub *Hub
}

// NewPusher wraps a hub for use as a notification push channel.
func NewPusher(hub *Hub) *Pusher {
	return &Pusher{hub: hub}
}

// Push sends a persisted notification to all of the recipient's connections.
// Offline recipients simply miss the live frame; the row remains.
func (p *Pusher) Push(userID string, notification *models.Notification) error {
	p.hub.SendToUser(userID, NewMessage(MessageTypeNotification, notification))
	return nil
}

// BroadcastCountUpdate announces a fresh engagement counter to every
// connected client.
func (h *Handler) BroadcastCountUpdate(msgType, targetID, targetKind string, count int64) {
	h.hub.Broadcast(NewMessage(msgType, CountUpdatePayload{
		TargetID:   targetID,
		TargetKind: targetKind,
		Count:      count,
		Timestamp:  time.Now().UnixMilli(),
	}))
}

// Shutdown stops the hub.
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.hub.Shutdown(ctx)
}

// GetHub returns the underlying hub.
func (h *Handler) GetHub() *Hub {
	return h.hub
}
