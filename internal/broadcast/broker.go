package broadcast

import (
	"context"
	"encoding/json"
)

// 廣播主題沿用既有的線上命名："room" 承載房間文件、"messages" 承載消息文件
const (
	TopicRoom     = "room"
	TopicMessages = "messages"

	EventInserted = "inserted"
)

// Event 是廣播頻道上的一則事件
// Data 為來源集合中完整的文件內容，原樣轉發、不做加工
type Event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// Broker 抽象託管的發佈/訂閱服務
// 送達不保證、跨主題不保證順序、可能重複送達，訂閱端需自行去重
type Broker interface {
	// Publish 把事件發佈到指定主題，發佈失敗由呼叫端決定是否在意
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe 訂閱一組主題，回傳事件通道與釋放函式
	// 底層連線中斷時通道會被關閉，訂閱不會自動重建
	Subscribe(ctx context.Context, topics ...string) (<-chan Event, func(), error)
}
