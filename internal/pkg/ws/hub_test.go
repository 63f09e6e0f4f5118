package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dialTestClient 起一个测试服务端并建立一条注册到 hub 的连接
func dialTestClient(t *testing.T, hub *Hub, userID int64) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(&Client{UserID: userID, Conn: conn})
	}))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// 等注册完成
	deadline := time.Now().Add(time.Second)
	for !hub.IsOnline(userID) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cleanup := func() {
		conn.Close()
		server.Close()
	}
	return conn, cleanup
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.sessions)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_IsOnline_NoConnections(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.IsOnline(123))
}

func TestHub_SendToUser_UserNotOnline(t *testing.T) {
	hub := NewHub()

	msg := &Message{
		Type: "notification",
		Data: map[string]string{"key": "value"},
	}

	// 离线用户不报错，静默丢弃
	err := hub.SendToUser(123, msg)
	assert.NoError(t, err)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 42}

	hub.Register(client)
	assert.True(t, hub.IsOnline(42))
	assert.Equal(t, 1, hub.ConnectionCount())

	hub.Unregister(client)
	assert.False(t, hub.IsOnline(42))
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub()
	c1 := &Client{UserID: 42}
	c2 := &Client{UserID: 42}

	hub.Register(c1)
	hub.Register(c2)
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.Unregister(c1)
	assert.True(t, hub.IsOnline(42))

	hub.Unregister(c2)
	assert.False(t, hub.IsOnline(42))
}

func TestHub_SendToUser_Delivers(t *testing.T) {
	hub := NewHub()

	conn, cleanup := dialTestClient(t, hub, 7)
	defer cleanup()

	msg := &Message{
		Type: "notification",
		Data: map[string]interface{}{"id": 1},
	}
	require.NoError(t, hub.SendToUser(7, msg))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "notification", got.Type)
}

func TestHub_SendToUser_OtherUserNotDelivered(t *testing.T) {
	hub := NewHub()

	conn, cleanup := dialTestClient(t, hub, 7)
	defer cleanup()

	require.NoError(t, hub.SendToUser(8, &Message{Type: "notification"}))

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err) // 超时，无消息
}
