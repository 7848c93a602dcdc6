package storage

import (
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

// ChangeOp 表示一次資料異動的種類
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent 表示某個集合上發生的一次資料異動
// Document 為異動完成後的完整文件（insert 時即為新寫入的模型）
type ChangeEvent struct {
	Collection string
	Op         ChangeOp
	Document   interface{}
}

// ChangeFeed 把 gorm 的寫入回呼轉成異動事件流，
// 作為資料庫變更通知的來源，供中繼服務訂閱
// 事件通道有固定緩衝，滿了就丟棄（盡力而為，不保證送達）
type ChangeFeed struct {
	events chan ChangeEvent

	mu     sync.Mutex
	closed bool
}

// NewChangeFeed 創建一個新的異動事件流
func NewChangeFeed(buffer int) *ChangeFeed {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChangeFeed{
		events: make(chan ChangeEvent, buffer),
	}
}

// Events 回傳只讀的事件通道，Close 之後通道會被關閉
func (f *ChangeFeed) Events() <-chan ChangeEvent {
	return f.events
}

// Close 關閉事件流，之後的異動不再發佈
func (f *ChangeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.events)
}

// Watch 在資料庫連線上註冊寫入回呼，開始發佈異動事件
func (f *ChangeFeed) Watch(db *PostgresDB) error {
	if err := db.Callback().Create().After("gorm:create").Register("pingit:changefeed_create", f.callback(OpInsert)); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("pingit:changefeed_update", f.callback(OpUpdate)); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("pingit:changefeed_delete", f.callback(OpDelete)); err != nil {
		return err
	}
	return nil
}

func (f *ChangeFeed) callback(op ChangeOp) func(tx *gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Schema == nil {
			return
		}
		if tx.RowsAffected == 0 {
			return
		}
		f.emit(ChangeEvent{
			Collection: tx.Statement.Table,
			Op:         op,
			Document:   tx.Statement.Dest,
		})
	}
}

func (f *ChangeFeed) emit(event ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	select {
	case f.events <- event:
	default:
		// 緩衝已滿，直接丟棄，客戶端下次重新拉取時自然補齊
		slog.Warn("change feed buffer full, event dropped",
			"collection", event.Collection, "op", string(event.Op))
	}
}
