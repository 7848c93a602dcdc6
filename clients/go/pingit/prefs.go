package pingit

import (
	"sort"
	"sync"

	"pingit_web/internal/models"
)

// RoomPrefs 是單一房間的本地偏好旗標
// 裝置範圍、非權威狀態，只影響列表呈現，與消息管線無關
type RoomPrefs struct {
	Pinned   bool
	Favorite bool
	Muted    bool
	Hidden   bool
}

// PrefStore 是以房間識別碼為鍵的本地偏好儲存
type PrefStore struct {
	mu    sync.RWMutex
	prefs map[string]RoomPrefs
}

// NewPrefStore 建立一個空的偏好儲存
func NewPrefStore() *PrefStore {
	return &PrefStore{prefs: make(map[string]RoomPrefs)}
}

// Get 取得房間的偏好，未設定時回傳零值
func (s *PrefStore) Get(roomID string) RoomPrefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs[roomID]
}

// Set 設定房間的偏好
func (s *PrefStore) Set(roomID string, prefs RoomPrefs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[roomID] = prefs
}

// ShouldNotify 回傳房間的新消息是否應該提示（靜音房間不提示）
func (s *PrefStore) ShouldNotify(roomID string) bool {
	return !s.Get(roomID).Muted
}

// SortRooms 依本地偏好排序房間列表：釘選優先、其次常用，
// 同層級按更新時間由新到舊；隱藏的房間不出現在結果中
// 純函式，不更動傳入的切片
func SortRooms(rooms []models.Room, store *PrefStore) []models.Room {
	sorted := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if !store.Get(room.ID).Hidden {
			sorted = append(sorted, room)
		}
	}

	rank := func(room models.Room) int {
		p := store.Get(room.ID)
		switch {
		case p.Pinned:
			return 0
		case p.Favorite:
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i]), rank(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	return sorted
}
