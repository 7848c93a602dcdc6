package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room 表示一個聊天房間（一對一聊天與群組聊天共用同一結構）
// JSON 欄位名稱沿用前端既有的線上格式，_id 為字串型的唯一識別碼
type Room struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"not null"`
	Photo     string    `json:"photo,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 在寫入前分配不透明的唯一識別碼
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// TableName 指定資料表名稱
func (Room) TableName() string {
	return "rooms"
}
