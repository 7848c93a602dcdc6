package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBroker 以 Redis 的 PUBLISH/SUBSCRIBE 實作廣播頻道
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker 建立並驗證 Redis 連線
func NewRedisBroker(ctx context.Context, addr, password string, db int) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisBroker{client: client}, nil
}

// Close 關閉 Redis 連線
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

// Publish 把事件序列化後發佈到對應的 Redis 頻道
func (b *RedisBroker) Publish(ctx context.Context, topic string, event Event) error {
	event.Channel = topic
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, topic, payload).Err()
}

// Subscribe 訂閱一組 Redis 頻道並把訊息轉成事件流
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...string) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, topics...)

	// 先確認訂閱成功，避免默默漏掉事件
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("broadcast payload decode failed", "topic", msg.Channel, "err", err)
				continue
			}
			event.Channel = msg.Channel
			events <- event
		}
	}()

	release := func() {
		pubsub.Close()
	}
	return events, release, nil
}
