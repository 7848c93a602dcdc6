package pingit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pingit_web/internal/broadcast"
	"pingit_web/internal/models"
)

var (
	// ErrSignInRequired 表示尚未登入，無法發送消息
	ErrSignInRequired = errors.New("sign in required to send messages")
	// ErrEmptyMessage 表示消息內容為空白
	ErrEmptyMessage = errors.New("message is empty")
)

// tempIDPrefix 是樂觀條目的臨時識別碼前綴，和伺服器分配的 UUID 不會相撞
const tempIDPrefix = "temp-"

// echoTolerance 是廣播回聲與樂觀條目視為同一條消息的時間容差
const echoTolerance = 5 * time.Second

// Identity 是發送消息所需的使用者身份，由外部的身份提供者取得
type Identity struct {
	UID         string
	DisplayName string
}

func (id Identity) valid() bool {
	return id.UID != "" && id.DisplayName != ""
}

// RoomPipeline 維護單一房間的有序消息列表：
// 發送端先插入樂觀條目再呼叫伺服器，直接回應與廣播回聲
// 走同一個冪等的對帳函式，保證每條邏輯消息最終只留下一個條目
type RoomPipeline struct {
	client   *Client
	roomID   string
	identity Identity
	notify   func(notice string)

	mu       sync.Mutex
	messages []models.Message
}

// NewRoomPipeline 為指定房間建立消息管線
func NewRoomPipeline(client *Client, roomID string, identity Identity) *RoomPipeline {
	return &RoomPipeline{
		client:   client,
		roomID:   roomID,
		identity: identity,
	}
}

// RoomID 回傳管線綁定的房間識別碼
func (p *RoomPipeline) RoomID() string {
	return p.roomID
}

// OnNotice 設定失敗提示的回呼，提示一次性出現、不自動重試
func (p *RoomPipeline) OnNotice(fn func(notice string)) {
	p.notify = fn
}

func (p *RoomPipeline) noticef(notice string) {
	if p.notify != nil {
		p.notify(notice)
	}
}

// Load 拉取房間完整歷史並整批取代本地列表，拉取結果是事實來源
func (p *RoomPipeline) Load(ctx context.Context) error {
	messages, err := p.client.GetMessages(ctx, p.roomID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.messages = messages
	p.mu.Unlock()
	return nil
}

// Send 發送一條文字消息：先插入樂觀條目，成功後原地換成伺服器文件，
// 失敗則整條移除並發出提示，不自動重試
func (p *RoomPipeline) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}
	return p.send(ctx, trimmed)
}

// SendVoice 把定稿的錄音包成語音封包後走與文字消息完全相同的發送路徑
// 空的錄音結果視為「沒有東西可發」，直接略過
func (p *RoomPipeline) SendVoice(ctx context.Context, clip Clip) error {
	if clip.DataURL == "" {
		return nil
	}
	return p.send(ctx, EncodeVoiceMessage(clip.Duration, clip.DataURL))
}

func (p *RoomPipeline) send(ctx context.Context, body string) error {
	if !p.identity.valid() {
		return ErrSignInRequired
	}

	tempID := tempIDPrefix + uuid.NewString()
	timestamp := time.Now()

	optimistic := models.Message{
		ID:        tempID,
		RoomID:    p.roomID,
		UID:       p.identity.UID,
		Name:      p.identity.DisplayName,
		Body:      body,
		Timestamp: timestamp,
	}

	p.mu.Lock()
	p.messages = append(p.messages, optimistic)
	p.mu.Unlock()

	created, err := p.client.SendMessage(ctx, NewMessageRequest{
		Message:   body,
		Name:      p.identity.DisplayName,
		UID:       p.identity.UID,
		RoomID:    p.roomID,
		Timestamp: timestamp,
	})
	if err != nil {
		p.removeByID(tempID)
		p.noticef("Failed to send message. Make sure the server is running.")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.indexByID(tempID); i >= 0 {
		// 列表順序不變，原地以伺服器文件取代樂觀條目
		p.messages[i] = *created
	} else {
		// 廣播回聲先到一步、臨時條目已被取代，對帳保證不會重複
		p.reconcileLocked(*created)
	}
	return nil
}

// HandleEvent 處理一則廣播事件
// 非本房間的事件整個忽略，不做跨房間緩存；roomId 檢查是唯一的防護
func (p *RoomPipeline) HandleEvent(event broadcast.Event) {
	if event.Channel != broadcast.TopicMessages || event.Event != broadcast.EventInserted {
		return
	}

	var message models.Message
	if err := json.Unmarshal(event.Data, &message); err != nil {
		return
	}
	if message.RoomID != p.roomID {
		return
	}

	p.mu.Lock()
	p.reconcileLocked(message)
	p.mu.Unlock()
}

// reconcileLocked 是兩條入站路徑（直接回應、廣播回聲）共用的冪等合併：
// 識別碼完全相同者原地取代；其次，臨時條目若內容與發送者相同、
// 時間戳在容差內，視為同一條邏輯消息並原地取代；否則追加到尾端
func (p *RoomPipeline) reconcileLocked(incoming models.Message) {
	if i := p.indexByID(incoming.ID); i >= 0 {
		p.messages[i] = incoming
		return
	}

	for i, m := range p.messages {
		if strings.HasPrefix(m.ID, tempIDPrefix) &&
			m.Body == incoming.Body &&
			m.UID == incoming.UID &&
			absDuration(m.Timestamp.Sub(incoming.Timestamp)) <= echoTolerance {
			p.messages[i] = incoming
			return
		}
	}

	p.messages = append(p.messages, incoming)
}

func (p *RoomPipeline) indexByID(id string) int {
	for i, m := range p.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (p *RoomPipeline) removeByID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, m := range p.messages {
		if m.ID == id {
			p.messages = append(p.messages[:i], p.messages[i+1:]...)
			return
		}
	}
}

// Messages 回傳目前列表的快照
func (p *RoomPipeline) Messages() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := make([]models.Message, len(p.messages))
	copy(snapshot, p.messages)
	return snapshot
}

// Filtered 以子字串比對過濾消息列表，純函式、不動原列表
// 語音消息以占位文字參與比對；空白查詢回傳完整列表
func (p *RoomPipeline) Filtered(query string) []models.Message {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return p.Messages()
	}

	needle := strings.ToLower(trimmed)

	p.mu.Lock()
	defer p.mu.Unlock()
	filtered := make([]models.Message, 0, len(p.messages))
	for _, m := range p.messages {
		if strings.Contains(strings.ToLower(MessageSearchText(m)), needle) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
