// server/internal/socket/hub.go
package socket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Thời gian chờ tối đa cho một lần ghi xuống client.
const writeWait = 10 * time.Second

// client gói một kết nối cùng mutex ghi riêng. gorilla/websocket chỉ cho
// phép một goroutine ghi tại một thời điểm trên mỗi kết nối.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// write ghi một tin nhắn với deadline, client chậm không giữ cả Hub.
func (c *client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Hub quản lý tất cả các client WebSocket đang theo dõi kho.
type Hub struct {
	// clients lưu các kết nối, key là email của user.
	clients map[string]*client
	// mu bảo vệ map clients khi truy cập từ nhiều goroutine.
	mu sync.RWMutex
}

// NewHub tạo một Hub mới.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register thêm một client mới vào Hub.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = &client{conn: conn}
	log.Printf("WebSocket client registered: %s", userID)
}

// Unregister xóa một client khỏi Hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Send gửi một tin nhắn đến một client cụ thể.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		// Client có thể đã offline, không coi đây là lỗi nghiêm trọng.
		log.Printf("WebSocket client not found, could not send message: %s", userID)
		return nil
	}

	return c.write(message)
}

// Broadcast gửi một tin nhắn đến tất cả client đang kết nối, dùng cho các
// cảnh báo tồn kho và sự kiện đặt hàng. Client nào ghi lỗi sẽ bị gỡ khỏi
// Hub và đóng kết nối.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for userID, c := range h.clients {
		targets[userID] = c
	}
	h.mu.RUnlock()

	var failed []string
	for userID, c := range targets {
		if err := c.write(message); err != nil {
			log.Printf("Failed to broadcast to %s: %v", userID, err)
			failed = append(failed, userID)
		}
	}

	for _, userID := range failed {
		h.Unregister(userID)
	}
}
