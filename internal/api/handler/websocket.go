package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/studyhive/study_go_server/internal/pkg/jwt"
	"github.com/studyhive/study_go_server/internal/pkg/presence"
	"github.com/studyhive/study_go_server/internal/pkg/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要验证 Origin
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	hub       *ws.Hub
	presence  *presence.Tracker
	jwtSecret string
}

func NewWebSocketHandler(hub *ws.Hub, tracker *presence.Tracker, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		presence:  tracker,
		jwtSecret: jwtSecret,
	}
}

// Handle WebSocket 连接处理
// GET /api/v1/ws?token=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := jwt.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &ws.Client{
		UserID: claims.UserID,
		Conn:   conn,
	}

	h.hub.Register(client)
	h.markOnline(claims.UserID)

	// 保持连接，读取消息（主要用于检测断开）
	go func() {
		defer func() {
			h.hub.Unregister(client)
			h.markOffline(claims.UserID)
		}()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

// 在线状态记在 Redis，worker 据此判断是否给离线用户补发邮件
func (h *WebSocketHandler) markOnline(userID int64) {
	if h.presence == nil {
		return
	}
	if err := h.presence.SetOnline(context.Background(), userID); err != nil {
		log.Printf("Failed to mark user %d online: %v", userID, err)
	}
}

func (h *WebSocketHandler) markOffline(userID int64) {
	if h.presence == nil {
		return
	}
	// 同一用户可能有多个连接，全部断开后才算离线
	if h.hub.IsOnline(userID) {
		return
	}
	if err := h.presence.SetOffline(context.Background(), userID); err != nil {
		log.Printf("Failed to mark user %d offline: %v", userID, err)
	}
}
