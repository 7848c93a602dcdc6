package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pingit_web/internal/api/handlers"
	"pingit_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	roomHandler := handlers.NewRoomHandler(services.Room)
	messageHandler := handlers.NewMessageHandler(services.Message)
	wsHandler := handlers.NewWebSocketHandler(services.Hub)

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 基本的健康檢查
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Api is working")
	})

	// 房間相關
	r.GET("/room/:id", roomHandler.GetRoom)          // 獲取單一房間
	r.GET("/all/rooms", roomHandler.ListRooms)       // 獲取房間列表
	r.POST("/group/create", roomHandler.CreateGroup) // 創建房間
	r.DELETE("/room/:id", roomHandler.DeleteRoom)    // 刪除房間（連帶刪除消息）

	// 消息相關
	r.GET("/messages/:id", messageHandler.GetMessages)      // 獲取房間內所有消息
	r.POST("/messages/new", messageHandler.NewMessage)      // 發送新消息
	r.DELETE("/messages/:id", messageHandler.ClearMessages) // 清空房間消息

	// WebSocket 連接點（廣播頻道）
	r.GET("/ws", wsHandler.HandleWebSocket)
}
