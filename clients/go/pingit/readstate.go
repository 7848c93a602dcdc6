package pingit

import (
	"sync"
	"time"

	"pingit_web/internal/models"
)

// ReadState 維護每個房間的已讀游標與未讀計數
// 未讀數由廣播事件增量維護，不重新拉取任何房間的歷史
type ReadState struct {
	mu       sync.Mutex
	lastRead map[string]time.Time
	unread   map[string]int
}

// NewReadState 建立一個空的已讀狀態
func NewReadState() *ReadState {
	return &ReadState{
		lastRead: make(map[string]time.Time),
		unread:   make(map[string]int),
	}
}

// MarkRead 把房間的已讀游標推進到指定時間並歸零未讀數
// 游標只往前走，較舊的時間不會倒退游標
func (s *ReadState) MarkRead(roomID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.After(s.lastRead[roomID]) {
		s.lastRead[roomID] = at
	}
	s.unread[roomID] = 0
}

// Observe 根據一條新到的廣播消息更新未讀狀態
// 自己發的消息與目前開著的房間不計未讀，直接推進游標
func (s *ReadState) Observe(message models.Message, activeRoomID, selfUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.RoomID == activeRoomID || message.UID == selfUID {
		if message.Timestamp.After(s.lastRead[message.RoomID]) {
			s.lastRead[message.RoomID] = message.Timestamp
		}
		s.unread[message.RoomID] = 0
		return
	}

	if message.Timestamp.After(s.lastRead[message.RoomID]) {
		s.unread[message.RoomID]++
	}
}

// Unread 回傳房間目前的未讀數
func (s *ReadState) Unread(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[roomID]
}

// LastRead 回傳房間的已讀游標
func (s *ReadState) LastRead(roomID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.lastRead[roomID]
	return at, ok
}
