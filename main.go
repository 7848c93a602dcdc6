package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"pingit_web/internal/api"
	"pingit_web/internal/broadcast"
	"pingit_web/internal/models"
	"pingit_web/internal/repository"
	"pingit_web/internal/service"
	"pingit_web/internal/storage"
	"pingit_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(&models.Room{}, &models.Message{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	ctx := context.Background()

	// 初始化廣播頻道（Redis pub/sub）
	broker, err := broadcast.NewRedisBroker(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer broker.Close()

	// 監看資料庫異動並轉發到廣播頻道
	feed := storage.NewChangeFeed(256)
	if err := feed.Watch(db); err != nil {
		log.Fatalf("Failed to watch database changes: %v", err)
	}
	relay := broadcast.NewRelay(feed.Events(), broker)
	go relay.Run(ctx)

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos)

	// 訂閱廣播頻道並扇出給 WebSocket 客戶端
	events, release, err := broker.Subscribe(ctx, broadcast.TopicRoom, broadcast.TopicMessages)
	if err != nil {
		log.Fatalf("Failed to subscribe broadcast topics: %v", err)
	}
	defer release()
	go services.Hub.Run(ctx, events)

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
