package repository

import "pingit_web/internal/storage"

type Repositories struct {
	Room    RoomRepository
	Message MessageRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Room:    NewRoomRepository(db),
		Message: NewMessageRepository(db),
	}
}
