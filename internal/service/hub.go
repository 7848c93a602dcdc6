package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pingit_web/internal/broadcast"
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn     *websocket.Conn      // WebSocket 連接
	SendChan chan broadcast.Event // 事件發送通道，用於異步傳送事件
}

// Hub 是廣播閘道：把訂閱到的廣播事件扇出給所有連線中的客戶端
// 頻道不做伺服器端過濾，客戶端自行依 roomId 篩選
type Hub struct {
	clients    map[*Client]bool
	clientsMux sync.RWMutex // 用於保護 clients map 的讀寫鎖
}

// NewHub 創建並初始化新的廣播閘道
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Run 持續消費廣播事件並扇出，事件流關閉時結束
// 訂閱不會自動重建，即時更新自此失效直到程序重啟
func (h *Hub) Run(ctx context.Context, events <-chan broadcast.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				log.Printf("broadcast subscription closed, live updates degraded")
				return
			}
			h.Broadcast(event)
		}
	}
}

// HandleConnection 處理新的 WebSocket 連接請求
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	client := &Client{
		Conn:     conn,
		SendChan: make(chan broadcast.Event, 256), // 設置緩衝大小為 256 的事件通道
	}

	h.addClient(client)

	// 確保連接關閉時清理資源
	// SendChan 只由 removeClient 關閉，這裡不能直接 close
	defer func() {
		h.removeClient(client)
		conn.Close()
	}()

	// 啟動讀寫處理
	go h.writePump(client)
	h.readPump(client)
}

// readPump 持續讀取客戶端訊息以偵測斷線，內容本身不做處理
// 客戶端只透過 HTTP API 發送消息，WebSocket 僅為接收端
func (h *Hub) readPump(client *Client) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (h *Hub) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast 向所有連線中的客戶端扇出一則事件
// 發送在持讀鎖時進行，與 removeClient 持寫鎖的通道關閉互斥，
// 斷線中的客戶端不會收到對已關閉通道的發送
func (h *Hub) Broadcast(event broadcast.Event) {
	var slow []*Client

	h.clientsMux.RLock()
	for client := range h.clients {
		select {
		case client.SendChan <- event:
			// 事件成功加入發送隊列
		default:
			// 客戶端事件隊列已滿，稍後關閉連接
			slow = append(slow, client)
		}
	}
	h.clientsMux.RUnlock()

	for _, client := range slow {
		h.removeClient(client)
		client.Conn.Close()
	}
}

// addClient 安全地添加新的客戶端連接
func (h *Hub) addClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	h.clients[client] = true
}

// removeClient 安全地移除客戶端連接並關閉其發送通道
// 通道只在這裡、持寫鎖時關閉，移除是冪等的，重複呼叫不會重複關閉
func (h *Hub) removeClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.SendChan)
	}
}

// ClientCount 獲取目前連線中的客戶端數量
func (h *Hub) ClientCount() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}
