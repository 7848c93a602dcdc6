package pingit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pingit_web/clients/go/pingit"
	"pingit_web/internal/broadcast"
	"pingit_web/internal/models"
)

var testIdentity = pingit.Identity{UID: "u1", DisplayName: "Alice"}

// newMessageServer 模擬伺服器的發送端點，回傳寫入後的文件
// beforeReply 在回應前被呼叫，用來模擬廣播回聲先到的交錯
func newMessageServer(t *testing.T, nextID string, beforeReply func(models.Message)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/messages/new", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var req struct {
			Message   string    `json:"message"`
			Name      string    `json:"name"`
			UID       string    `json:"uid"`
			RoomID    string    `json:"roomId"`
			Timestamp time.Time `json:"timestamp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		created := models.Message{
			ID:        nextID,
			RoomID:    req.RoomID,
			UID:       req.UID,
			Name:      req.Name,
			Body:      req.Message,
			Timestamp: req.Timestamp,
		}
		if beforeReply != nil {
			beforeReply(created)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &calls
}

func messageEvent(t *testing.T, message models.Message) broadcast.Event {
	t.Helper()
	data, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	return broadcast.Event{Channel: broadcast.TopicMessages, Event: broadcast.EventInserted, Data: data}
}

func TestSendConfirmedByResponseThenEcho(t *testing.T) {
	server, _ := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	if err := pipeline.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	// 自己的廣播回聲在直接回應之後抵達
	messages := pipeline.Messages()
	pipeline.HandleEvent(messageEvent(t, messages[0]))

	messages = pipeline.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(messages))
	}
	if messages[0].ID != "m1" || messages[0].Body != "hi" {
		t.Fatalf("unexpected entry: %+v", messages[0])
	}
}

func TestSendEchoArrivesBeforeResponse(t *testing.T) {
	var pipeline *pingit.RoomPipeline
	server, _ := newMessageServer(t, "m1", func(created models.Message) {
		// 模擬廣播回聲比直接回應先一步抵達
		pipeline.HandleEvent(messageEvent(t, created))
	})
	pipeline = pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	if err := pipeline.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	messages := pipeline.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(messages))
	}
	if messages[0].ID != "m1" {
		t.Fatalf("unexpected id: %s", messages[0].ID)
	}
}

func TestSendPreservesListOrder(t *testing.T) {
	server, _ := newMessageServer(t, "m9", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	earlier := models.Message{ID: "m1", RoomID: "r1", UID: "u2", Name: "Bob", Body: "first", Timestamp: time.Now()}
	pipeline.HandleEvent(messageEvent(t, earlier))

	if err := pipeline.Send(context.Background(), "second"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	messages := pipeline.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected two entries, got %d", len(messages))
	}
	if messages[0].ID != "m1" || messages[1].ID != "m9" {
		t.Fatalf("order changed: %s, %s", messages[0].ID, messages[1].ID)
	}
}

func TestSendRejectsEmptyInput(t *testing.T) {
	server, calls := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	if err := pipeline.Send(context.Background(), "   "); err != pingit.ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatal("no network call should be made for empty input")
	}
	if len(pipeline.Messages()) != 0 {
		t.Fatal("list should stay empty")
	}
}

func TestSendRequiresIdentity(t *testing.T) {
	server, calls := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", pingit.Identity{})

	if err := pipeline.Send(context.Background(), "hi"); err != pingit.ErrSignInRequired {
		t.Fatalf("expected ErrSignInRequired, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatal("no network call should be made without identity")
	}
}

func TestSendFailureRollsBackOptimisticEntry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)
	var notice string
	pipeline.OnNotice(func(n string) { notice = n })

	if err := pipeline.Send(context.Background(), "hi"); err == nil {
		t.Fatal("expected an error")
	}

	if len(pipeline.Messages()) != 0 {
		t.Fatal("optimistic entry should be rolled back on failure")
	}
	for _, m := range pipeline.Messages() {
		if strings.HasPrefix(m.ID, "temp-") {
			t.Fatalf("temp entry left behind: %s", m.ID)
		}
	}
	if notice == "" {
		t.Fatal("a failure notice should be surfaced")
	}
}

func TestBroadcastCrossRoomIgnored(t *testing.T) {
	server, _ := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	other := models.Message{ID: "x1", RoomID: "r2", UID: "u2", Name: "Bob", Body: "elsewhere", Timestamp: time.Now()}
	pipeline.HandleEvent(messageEvent(t, other))

	if len(pipeline.Messages()) != 0 {
		t.Fatal("event for another room must never appear in the list")
	}
}

func TestBroadcastIgnoresOtherTopics(t *testing.T) {
	server, _ := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	msg := models.Message{ID: "m1", RoomID: "r1", UID: "u2", Name: "Bob", Body: "hi", Timestamp: time.Now()}
	data, _ := json.Marshal(msg)
	pipeline.HandleEvent(broadcast.Event{Channel: broadcast.TopicRoom, Event: broadcast.EventInserted, Data: data})

	if len(pipeline.Messages()) != 0 {
		t.Fatal("room topic events must not enter the message list")
	}
}

func TestDuplicateBroadcastIsIdempotent(t *testing.T) {
	server, _ := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	msg := models.Message{ID: "m1", RoomID: "r1", UID: "u2", Name: "Bob", Body: "hi", Timestamp: time.Now()}
	event := messageEvent(t, msg)
	pipeline.HandleEvent(event)
	pipeline.HandleEvent(event)

	if got := len(pipeline.Messages()); got != 1 {
		t.Fatalf("duplicate delivery produced %d entries", got)
	}
}

func TestLoadReplacesListWholesale(t *testing.T) {
	history := []models.Message{
		{ID: "m1", RoomID: "r1", UID: "u2", Name: "Bob", Body: "old", Timestamp: time.Now()},
		{ID: "m2", RoomID: "r1", UID: "u1", Name: "Alice", Body: "older", Timestamp: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/messages/r1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(history)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)
	stale := models.Message{ID: "zzz", RoomID: "r1", UID: "u3", Name: "Eve", Body: "stale", Timestamp: time.Now()}
	pipeline.HandleEvent(messageEvent(t, stale))

	if err := pipeline.Load(context.Background()); err != nil {
		t.Fatalf("Load err: %v", err)
	}

	messages := pipeline.Messages()
	if len(messages) != 2 || messages[0].ID != "m1" || messages[1].ID != "m2" {
		t.Fatalf("list was not replaced wholesale: %+v", messages)
	}
}

func TestFilteredIsPure(t *testing.T) {
	server, _ := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	now := time.Now()
	pipeline.HandleEvent(messageEvent(t, models.Message{ID: "m1", RoomID: "r1", UID: "u2", Name: "Bob", Body: "Hello world", Timestamp: now}))
	pipeline.HandleEvent(messageEvent(t, models.Message{ID: "m2", RoomID: "r1", UID: "u2", Name: "Bob", Body: "goodbye", Timestamp: now}))
	pipeline.HandleEvent(messageEvent(t, models.Message{ID: "m3", RoomID: "r1", UID: "u2", Name: "Bob", Body: pingit.EncodeVoiceMessage(2, "data:audio/webm;base64,AA"), Timestamp: now}))

	filtered := pipeline.Filtered("HELLO")
	if len(filtered) != 1 || filtered[0].ID != "m1" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}

	// 語音消息以占位文字參與比對，不比對音訊內容
	filtered = pipeline.Filtered("voice")
	if len(filtered) != 1 || filtered[0].ID != "m3" {
		t.Fatalf("voice placeholder did not match: %+v", filtered)
	}
	if got := pipeline.Filtered("base64"); len(got) != 0 {
		t.Fatal("binary content must not participate in search")
	}

	// 清空查詢要還原完整列表與原本順序
	full := pipeline.Filtered("")
	if len(full) != 3 || full[0].ID != "m1" || full[1].ID != "m2" || full[2].ID != "m3" {
		t.Fatalf("clearing the query must restore the full list: %+v", full)
	}
}

func TestSendVoiceGoesThroughSamePath(t *testing.T) {
	server, calls := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	clip := pingit.Clip{DataURL: "data:audio/webm;base64,AAAA", Duration: 5}
	if err := pipeline.SendVoice(context.Background(), clip); err != nil {
		t.Fatalf("SendVoice err: %v", err)
	}

	messages := pipeline.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one entry, got %d", len(messages))
	}
	want := "__PINGIT_VOICE__5|data:audio/webm;base64,AAAA"
	if messages[0].Body != want {
		t.Fatalf("unexpected body: %q", messages[0].Body)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected one network call, got %d", *calls)
	}
}

func TestSendVoiceEmptyClipIsNoop(t *testing.T) {
	server, calls := newMessageServer(t, "m1", nil)
	pipeline := pingit.NewRoomPipeline(pingit.NewClient(server.URL), "r1", testIdentity)

	if err := pipeline.SendVoice(context.Background(), pingit.Clip{}); err != nil {
		t.Fatalf("SendVoice err: %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatal("empty clip must not produce a network call")
	}
	if len(pipeline.Messages()) != 0 {
		t.Fatal("empty clip must not produce a message")
	}
}
