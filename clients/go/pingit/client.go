package pingit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pingit_web/internal/models"
)

// ErrRoomNotFound 表示伺服器查無此房間（僅刪除房間時視為錯誤）
var ErrRoomNotFound = errors.New("room not found")

// Client 是 PingIt 伺服器的 REST 客戶端
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient 創建一個新的 REST 客戶端
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest 發出 HTTP 請求並回傳回應內容
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return respBody, resp.StatusCode, fmt.Errorf("pingit error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, resp.StatusCode, nil
}

// GetRoom 查詢單一房間，伺服器回空內容時回傳 (nil, nil)，視為未知聯絡人
func (c *Client) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	respBody, _, err := c.doRequest(ctx, http.MethodGet, "/room/"+roomID, nil)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		return nil, nil
	}

	var room models.Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetMessages 查詢房間內所有消息，依寫入順序回傳
func (c *Client) GetMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	respBody, _, err := c.doRequest(ctx, http.MethodGet, "/messages/"+roomID, nil)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := json.Unmarshal(respBody, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// NewMessageRequest 是發送新消息的請求內容
type NewMessageRequest struct {
	Message   string    `json:"message"`
	Name      string    `json:"name"`
	UID       string    `json:"uid"`
	RoomID    string    `json:"roomId"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessage 發送新消息，回傳伺服器寫入後的完整文件
func (c *Client) SendMessage(ctx context.Context, req NewMessageRequest) (*models.Message, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	respBody, _, err := c.doRequest(ctx, http.MethodPost, "/messages/new", body)
	if err != nil {
		return nil, err
	}

	var message models.Message
	if err := json.Unmarshal(respBody, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// CreateGroup 創建一個新的聊天房間
func (c *Client) CreateGroup(ctx context.Context, name string) (*models.Room, error) {
	body, err := json.Marshal(map[string]string{"groupName": name})
	if err != nil {
		return nil, err
	}

	respBody, _, err := c.doRequest(ctx, http.MethodPost, "/group/create", body)
	if err != nil {
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms 查詢所有房間
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	respBody, _, err := c.doRequest(ctx, http.MethodGet, "/all/rooms", nil)
	if err != nil {
		return nil, err
	}

	var rooms []models.Room
	if err := json.Unmarshal(respBody, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// DeleteRoom 刪除房間並連帶刪除其消息，查無房間時回傳 ErrRoomNotFound
func (c *Client) DeleteRoom(ctx context.Context, roomID string) (*models.Room, error) {
	respBody, status, err := c.doRequest(ctx, http.MethodDelete, "/room/"+roomID, nil)
	if status == http.StatusNotFound {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var resp struct {
		DeletedRoom *models.Room `json:"deletedRoom"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return resp.DeletedRoom, nil
}

// ClearMessages 清空房間內所有消息，回傳刪除筆數
func (c *Client) ClearMessages(ctx context.Context, roomID string) (int64, error) {
	respBody, _, err := c.doRequest(ctx, http.MethodDelete, "/messages/"+roomID, nil)
	if err != nil {
		return 0, err
	}

	var resp struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}
