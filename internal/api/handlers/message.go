package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pingit_web/internal/models"
	"pingit_web/internal/service"
)

// MessageHandler 處理與聊天消息相關的請求
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 創建一個新的 MessageHandler 實例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetMessages 處理獲取房間內所有消息的請求，依寫入順序回傳
func (h *MessageHandler) GetMessages(c *gin.Context) {
	messages, err := h.messageService.GetRoomMessages(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢消息"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// NewMessage 處理發送新消息的請求，回傳含識別碼的完整文件
func (h *MessageHandler) NewMessage(c *gin.Context) {
	var input struct {
		Message   string    `json:"message" binding:"required"`
		Name      string    `json:"name" binding:"required"`
		UID       string    `json:"uid" binding:"required"`
		RoomID    string    `json:"roomId" binding:"required"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messageService.SendMessage(&models.Message{
		Body:      input.Message,
		Name:      input.Name,
		UID:       input.UID,
		RoomID:    input.RoomID,
		Timestamp: input.Timestamp,
	})
	if errors.Is(err, service.ErrEmptyMessage) || errors.Is(err, service.ErrSenderRequired) || errors.Is(err, service.ErrRoomRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "發送消息失敗"})
		return
	}

	c.JSON(http.StatusCreated, message)
}

// ClearMessages 處理清空房間消息的請求，刪除零筆也算成功
func (h *MessageHandler) ClearMessages(c *gin.Context) {
	count, err := h.messageService.ClearMessages(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "清空消息失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Messages cleared successfully",
		"deletedCount": count,
	})
}
