package service

import (
	"errors"
	"log/slog"

	"pingit_web/internal/models"
	"pingit_web/internal/repository"
)

// ErrRoomNameRequired 表示建立房間時缺少名稱
var ErrRoomNameRequired = errors.New("room name is required")

type RoomService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
}

func NewRoomService(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
	}
}

// CreateRoom 建立一個新的聊天房間
func (s *RoomService) CreateRoom(name string) (*models.Room, error) {
	if name == "" {
		return nil, ErrRoomNameRequired
	}

	room := &models.Room{Name: name}
	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom 查詢單一房間，查無時回傳 repository.ErrRoomNotFound
// 呼叫端應把查無視為「未知聯絡人」的空狀態，而非致命錯誤
func (s *RoomService) GetRoom(id string) (*models.Room, error) {
	return s.roomRepo.FindByID(id)
}

// ListRooms 查詢所有房間，排序交由客戶端的本地偏好決定
func (s *RoomService) ListRooms() ([]models.Room, error) {
	return s.roomRepo.FindAll()
}

// DeleteRoom 刪除房間並連帶刪除房間內所有消息
// 回傳被刪除的房間文件；連帶刪除失敗只記錄，不影響房間刪除的結果
func (s *RoomService) DeleteRoom(id string) (*models.Room, error) {
	room, err := s.roomRepo.Delete(id)
	if err != nil {
		return nil, err
	}

	count, err := s.messageRepo.DeleteByRoomID(id)
	if err != nil {
		slog.Error("cascade message delete failed", "roomId", id, "err", err)
	} else {
		slog.Info("room deleted", "roomId", id, "deletedMessages", count)
	}

	return room, nil
}
