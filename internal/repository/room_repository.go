package repository

import (
	"errors"

	"gorm.io/gorm"

	"pingit_web/internal/models"
	"pingit_web/internal/storage"
)

// ErrRoomNotFound 表示查無此房間
var ErrRoomNotFound = errors.New("room not found")

type RoomRepository interface {
	Create(room *models.Room) error
	FindByID(id string) (*models.Room, error)
	FindAll() ([]models.Room, error)
	Delete(id string) (*models.Room, error)
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

// FindByID 查詢單一房間，查無時回傳 ErrRoomNotFound
func (r *roomRepository) FindByID(id string) (*models.Room, error) {
	var room models.Room
	err := r.db.First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindAll 查詢所有房間，排序由客戶端依本地偏好自行決定
func (r *roomRepository) FindAll() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Find(&rooms).Error
	return rooms, err
}

// Delete 刪除房間並回傳被刪除的文件，查無時回傳 ErrRoomNotFound
func (r *roomRepository) Delete(id string) (*models.Room, error) {
	room, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(&models.Room{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return room, nil
}
