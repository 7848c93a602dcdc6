package pingit_test

import (
	"testing"
	"time"

	"pingit_web/clients/go/pingit"
	"pingit_web/internal/models"
)

func TestReadStateCountsInactiveRooms(t *testing.T) {
	state := pingit.NewReadState()
	now := time.Now()

	state.Observe(models.Message{RoomID: "r2", UID: "u2", Timestamp: now}, "r1", "u1")
	state.Observe(models.Message{RoomID: "r2", UID: "u2", Timestamp: now.Add(time.Second)}, "r1", "u1")

	if got := state.Unread("r2"); got != 2 {
		t.Fatalf("unread: got %d want 2", got)
	}
	if got := state.Unread("r1"); got != 0 {
		t.Fatalf("active room unread: got %d want 0", got)
	}
}

func TestReadStateActiveRoomAdvancesCursor(t *testing.T) {
	state := pingit.NewReadState()
	now := time.Now()

	state.Observe(models.Message{RoomID: "r1", UID: "u2", Timestamp: now}, "r1", "u1")

	if got := state.Unread("r1"); got != 0 {
		t.Fatalf("unread: got %d want 0", got)
	}
	at, ok := state.LastRead("r1")
	if !ok || !at.Equal(now) {
		t.Fatalf("cursor not advanced: %v %v", at, ok)
	}
}

func TestReadStateOwnMessagesDoNotCount(t *testing.T) {
	state := pingit.NewReadState()

	state.Observe(models.Message{RoomID: "r2", UID: "u1", Timestamp: time.Now()}, "r1", "u1")

	if got := state.Unread("r2"); got != 0 {
		t.Fatalf("own message counted as unread: %d", got)
	}
}

func TestReadStateMarkReadResets(t *testing.T) {
	state := pingit.NewReadState()
	now := time.Now()

	state.Observe(models.Message{RoomID: "r2", UID: "u2", Timestamp: now}, "r1", "u1")
	state.MarkRead("r2", now)

	if got := state.Unread("r2"); got != 0 {
		t.Fatalf("unread after mark read: got %d want 0", got)
	}

	// 游標只往前走，舊的時間不會倒退
	state.MarkRead("r2", now.Add(-time.Hour))
	at, _ := state.LastRead("r2")
	if !at.Equal(now) {
		t.Fatalf("cursor moved backwards: %v", at)
	}

	// 游標之前的消息不再計入未讀（重複投遞的舊廣播）
	state.Observe(models.Message{RoomID: "r2", UID: "u2", Timestamp: now.Add(-time.Minute)}, "r1", "u1")
	if got := state.Unread("r2"); got != 0 {
		t.Fatalf("stale message counted as unread: %d", got)
	}
}
