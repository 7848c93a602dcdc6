package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message 表示一條聊天消息
// Body 可能是純文字，也可能是語音消息封包（以固定前綴區分，仍是單一字串）
// Timestamp 由發送端裝置時鐘決定，伺服器不做校正
type Message struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:uuid"`
	RoomID    string    `json:"roomId" gorm:"type:uuid;index;not null"`
	UID       string    `json:"uid" gorm:"not null"`
	Name      string    `json:"name" gorm:"not null"`
	Body      string    `json:"message" gorm:"column:message;type:text;not null"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"-"`
}

// BeforeCreate 在寫入前分配不透明的唯一識別碼
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// TableName 指定資料表名稱
func (Message) TableName() string {
	return "messages"
}
