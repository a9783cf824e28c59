// server/internal/socket/hub_test.go
package socket

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialTestClient mở một cặp kết nối websocket thật qua httptest, đăng ký
// phía server vào Hub và cho phía client đọc liên tục để không nghẽn buffer.
func dialTestClient(t *testing.T, hub *Hub, userID string) func() {
	t.Helper()

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(userID, conn)
		close(registered)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	select {
	case <-registered:
	case <-time.After(5 * time.Second):
		t.Fatal("client was not registered in time")
	}

	go func() {
		for {
			if _, _, err := clientConn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return func() {
		clientConn.Close()
		srv.Close()
	}
}

func TestHubConcurrentBroadcastsComplete(t *testing.T) {
	hub := NewHub()
	cleanup := dialTestClient(t, hub, "keeper@example.com")
	defer cleanup()

	const writers = 8
	const messagesPerWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < messagesPerWriter; i++ {
				hub.Broadcast([]byte(fmt.Sprintf(`{"event":"stock_alert","writer":%d,"seq":%d}`, w, i)))
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("concurrent broadcasts did not complete")
	}
}

func TestHubConcurrentSendAndBroadcast(t *testing.T) {
	hub := NewHub()
	cleanup := dialTestClient(t, hub, "keeper@example.com")
	defer cleanup()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				hub.Broadcast([]byte(`{"event":"order_placed"}`))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, hub.Send("keeper@example.com", []byte(`{"event":"order_received"}`)))
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("concurrent sends and broadcasts did not complete")
	}
}

func TestHubBroadcastDropsFailedClient(t *testing.T) {
	hub := NewHub()

	registered := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register("gone@example.com", conn)
		registered <- conn
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer clientConn.Close()

	var serverConn *websocket.Conn
	select {
	case serverConn = <-registered:
	case <-time.After(5 * time.Second):
		t.Fatal("client was not registered in time")
	}

	// Đóng kết nối phía server để lần ghi kế tiếp thất bại.
	require.NoError(t, serverConn.Close())

	hub.Broadcast([]byte(`{"event":"stock_alert"}`))

	// Client lỗi đã bị gỡ: Send coi user vắng mặt là no-op thay vì trả lỗi ghi.
	assert.NoError(t, hub.Send("gone@example.com", []byte(`{"event":"stock_alert"}`)))
}

func TestHubSendToUnknownClientIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Send("nobody@example.com", []byte(`{"event":"stock_alert"}`)))
}
