package service

import (
	"errors"
	"strings"
	"time"

	"pingit_web/internal/models"
	"pingit_web/internal/repository"
)

var (
	// ErrEmptyMessage 表示消息內容為空白
	ErrEmptyMessage = errors.New("message body is required")
	// ErrSenderRequired 表示缺少發送者身份
	ErrSenderRequired = errors.New("sender identity is required")
	// ErrRoomRequired 表示缺少房間識別碼
	ErrRoomRequired = errors.New("room id is required")
)

type MessageService struct {
	messageRepo repository.MessageRepository
}

func NewMessageService(messageRepo repository.MessageRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// SendMessage 驗證並寫入一條新消息，回傳含識別碼的完整文件
// 時間戳沿用發送端裝置時鐘，伺服器不做校正
func (s *MessageService) SendMessage(message *models.Message) (*models.Message, error) {
	if strings.TrimSpace(message.Body) == "" {
		return nil, ErrEmptyMessage
	}
	if message.UID == "" || message.Name == "" {
		return nil, ErrSenderRequired
	}
	if message.RoomID == "" {
		return nil, ErrRoomRequired
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetRoomMessages 依寫入順序回傳房間內所有消息
// 空房間回傳空列表而非 nil，序列化成 JSON 時保持 [] 而不是 null
func (s *MessageService) GetRoomMessages(roomID string) ([]models.Message, error) {
	messages, err := s.messageRepo.FindByRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// ClearMessages 清空房間內所有消息，回傳刪除筆數，刪除零筆不算錯誤
func (s *MessageService) ClearMessages(roomID string) (int64, error) {
	return s.messageRepo.DeleteByRoomID(roomID)
}
