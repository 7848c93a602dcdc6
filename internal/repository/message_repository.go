package repository

import (
	"pingit_web/internal/models"
	"pingit_web/internal/storage"
)

type MessageRepository interface {
	Create(message *models.Message) error
	FindByRoomID(roomID string) ([]models.Message, error)
	DeleteByRoomID(roomID string) (int64, error)
}

type messageRepository struct {
	db *storage.PostgresDB
}

func NewMessageRepository(db *storage.PostgresDB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// FindByRoomID 依寫入順序回傳房間內的所有消息
func (r *messageRepository) FindByRoomID(roomID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("room_id = ?", roomID).Order("created_at asc").Find(&messages).Error
	return messages, err
}

// DeleteByRoomID 刪除房間內的所有消息並回傳刪除筆數，刪除零筆不算錯誤
func (r *messageRepository) DeleteByRoomID(roomID string) (int64, error) {
	result := r.db.Where("room_id = ?", roomID).Delete(&models.Message{})
	return result.RowsAffected, result.Error
}
