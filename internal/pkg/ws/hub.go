package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub 按用户维护 WebSocket 连接，一个用户可同时持有多条连接（多标签页、重连）。
// 实时通知和私信提醒都经由 SendToUser 推送。
type Hub struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Client]struct{}
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	mu     sync.Mutex // gorilla 的 Conn 不允许并发写
}

// Message 推送帧，Type 取值 notification / message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.sessions[client.UserID] = set
	}
	set[client] = struct{}{}
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(client)
}

// drop 调用方必须持有写锁
func (h *Hub) drop(client *Client) {
	set, ok := h.sessions[client.UserID]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.sessions, client.UserID)
	}
}

// SendToUser 向用户的全部连接推送一帧；用户不在线时静默成功。
// 写失败的连接视为已断开，直接从 Hub 摘除并关闭。
func (h *Hub) SendToUser(userID int64, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	set, ok := h.sessions[userID]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	targets := make([]*Client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var dead []*Client
	for _, c := range targets {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Printf("ws push to user %d failed: %v", userID, err)
			dead = append(dead, c)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, c := range dead {
			h.drop(c)
		}
		h.mu.Unlock()
		for _, c := range dead {
			c.Conn.Close()
		}
	}
	return nil
}

// IsOnline 该用户当前是否至少有一条连接
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.sessions[userID]
	return ok && len(set) > 0
}

// ConnectionCount 全部在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.sessions {
		total += len(set)
	}
	return total
}
