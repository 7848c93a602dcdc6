package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pingit_web/internal/repository"
	"pingit_web/internal/service"
)

// RoomHandler 處理與聊天房間相關的請求
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// GetRoom 處理獲取單一房間的請求
// 查無房間回傳空內容而非錯誤，呼叫端視為「未知聯絡人」
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Param("id"))
	if errors.Is(err, repository.ErrRoomNotFound) {
		c.Status(http.StatusOK)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢房間"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListRooms 處理獲取房間列表的請求
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.ListRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢房間列表"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// CreateGroup 處理創建新房間的請求
func (h *RoomHandler) CreateGroup(c *gin.Context) {
	var input struct {
		GroupName string `json:"groupName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(input.GroupName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// DeleteRoom 處理刪除房間的請求，連帶刪除房間內所有消息
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.roomService.DeleteRoom(roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在", "roomId": roomID})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除房間失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Room deleted successfully",
		"roomId":      roomID,
		"deletedRoom": room,
	})
}
