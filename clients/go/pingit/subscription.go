package pingit

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"pingit_web/internal/broadcast"
)

// Subscription 是對廣播頻道的一條 WebSocket 訂閱
// 切換房間時必須先 Close 舊訂閱再建立新訂閱，避免殘留訂閱重複投遞
type Subscription struct {
	conn *websocket.Conn
	done chan struct{}
}

// Subscribe 連上廣播頻道並把事件投遞給指定管線
// 頻道不做伺服器端過濾，事件是否屬於本房間由管線自行判斷
func Subscribe(ctx context.Context, wsURL string, pipeline *RoomPipeline) (*Subscription, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		conn: conn,
		done: make(chan struct{}),
	}

	go s.readLoop(pipeline)
	return s, nil
}

// readLoop 持續讀取廣播事件直到連線關閉
// 連線中斷不會自動重連，即時更新自此失效，靠重新拉取補齊
func (s *Subscription) readLoop(pipeline *RoomPipeline) {
	defer close(s.done)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var event broadcast.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		pipeline.HandleEvent(event)
	}
}

// Close 關閉訂閱並等待讀取迴圈完全結束
// 回傳後保證不會再有事件投遞進管線
func (s *Subscription) Close() error {
	err := s.conn.Close()
	<-s.done
	return err
}
