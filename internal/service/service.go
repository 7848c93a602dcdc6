package service

import (
	"pingit_web/internal/repository"
)

type Services struct {
	Room    *RoomService
	Message *MessageService
	Hub     *Hub
}

func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Room:    NewRoomService(repos.Room, repos.Message),
		Message: NewMessageService(repos.Message),
		Hub:     NewHub(),
	}
}
