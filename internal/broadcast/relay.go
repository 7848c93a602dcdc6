package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"

	"pingit_web/internal/storage"
)

// collectionTopics 把來源集合對應到廣播主題
var collectionTopics = map[string]string{
	"rooms":    TopicRoom,
	"messages": TopicMessages,
}

// Relay 監看儲存層的異動事件流，把新寫入的文件原樣轉發到廣播頻道
// 轉發是射後不理：發佈失敗只記錄、不重試，掉了的廣播等客戶端
// 下次直接拉取時補齊
type Relay struct {
	events <-chan storage.ChangeEvent
	broker Broker
	logger *slog.Logger
}

// NewRelay 建立一個異動中繼
func NewRelay(events <-chan storage.ChangeEvent, broker Broker) *Relay {
	return &Relay{
		events: events,
		broker: broker,
		logger: slog.With("component", "relay"),
	}
}

// Run 持續轉發異動事件，直到事件流關閉或 ctx 取消
// 事件流關閉代表即時更新已失效，中繼不會自行重建，需重啟程序恢復
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopped", "reason", ctx.Err())
			return
		case event, ok := <-r.events:
			if !ok {
				r.logger.Error("change stream closed, live updates degraded until restart")
				return
			}
			r.handle(ctx, event)
		}
	}
}

func (r *Relay) handle(ctx context.Context, event storage.ChangeEvent) {
	if event.Op != storage.OpInsert {
		r.logger.Info("not an expected event to trigger",
			"collection", event.Collection, "op", string(event.Op))
		return
	}

	topic, ok := collectionTopics[event.Collection]
	if !ok {
		r.logger.Warn("change event from unknown collection", "collection", event.Collection)
		return
	}

	data, err := json.Marshal(event.Document)
	if err != nil {
		r.logger.Error("change document encode failed", "topic", topic, "err", err)
		return
	}

	if err := r.broker.Publish(ctx, topic, Event{Event: EventInserted, Data: data}); err != nil {
		// 射後不理：只記錄，不重試
		r.logger.Error("broadcast publish failed", "topic", topic, "err", err)
	}
}
