// PingIt CLI - 操作 PingIt 聊天伺服器的命令列客戶端
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"pingit_web/clients/go/pingit"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("PINGIT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	wsURL := os.Getenv("PINGIT_WS_URL")
	if wsURL == "" {
		wsURL = "ws://localhost:5000/ws"
	}

	identity := pingit.Identity{
		UID:         os.Getenv("PINGIT_UID"),
		DisplayName: os.Getenv("PINGIT_NAME"),
	}

	client := pingit.NewClient(baseURL)
	ctx := context.Background()
	cmd := os.Args[1]

	switch cmd {
	case "rooms":
		rooms, err := client.ListRooms(ctx)
		exitOnError(err)
		for _, room := range rooms {
			fmt.Printf("  %s  %s\n", room.ID, room.Name)
		}

	case "create":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pingit create <name>")
			os.Exit(1)
		}
		room, err := client.CreateGroup(ctx, os.Args[2])
		exitOnError(err)
		fmt.Printf("Created room: %s\n", room.ID)

	case "history":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pingit history <room_id>")
			os.Exit(1)
		}
		messages, err := client.GetMessages(ctx, os.Args[2])
		exitOnError(err)
		for _, msg := range messages {
			printMessage(msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Name, pingit.MessageSearchText(msg))
		}

	case "send":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: pingit send <room_id> <text>")
			os.Exit(1)
		}
		pipeline := pingit.NewRoomPipeline(client, os.Args[2], identity)
		pipeline.OnNotice(func(notice string) {
			fmt.Fprintln(os.Stderr, notice)
		})
		err := pipeline.Send(ctx, os.Args[3])
		exitOnError(err)
		fmt.Println("Sent")

	case "watch":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pingit watch <room_id>")
			os.Exit(1)
		}
		watch(ctx, client, wsURL, os.Args[2], identity)

	case "delete":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pingit delete <room_id>")
			os.Exit(1)
		}
		room, err := client.DeleteRoom(ctx, os.Args[2])
		exitOnError(err)
		fmt.Printf("Deleted room: %s\n", room.Name)

	default:
		usage()
		os.Exit(1)
	}
}

// watch 訂閱廣播並即時列印本房間的新消息，Ctrl-C 結束
func watch(ctx context.Context, client *pingit.Client, wsURL, roomID string, identity pingit.Identity) {
	pipeline := pingit.NewRoomPipeline(client, roomID, identity)
	err := pipeline.Load(ctx)
	exitOnError(err)

	seen := len(pipeline.Messages())
	for _, msg := range pipeline.Messages() {
		printMessage(msg.Timestamp.Format("15:04:05"), msg.Name, pingit.MessageSearchText(msg))
	}

	sub, err := pingit.Subscribe(ctx, wsURL, pipeline)
	exitOnError(err)
	defer sub.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// 廣播事件由訂閱的讀取迴圈送進管線，這裡定期把新條目印出來
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			return
		case <-ticker.C:
		}
		messages := pipeline.Messages()
		for ; seen < len(messages); seen++ {
			msg := messages[seen]
			printMessage(msg.Timestamp.Format("15:04:05"), msg.Name, pingit.MessageSearchText(msg))
		}
	}
}

func printMessage(ts, name, body string) {
	fmt.Printf("[%s] %s: %s\n", ts, name, body)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: pingit <command> [args]

Commands:
  rooms                列出所有房間
  create <name>        創建房間
  history <room_id>    列出房間歷史消息
  send <room_id> <text>  發送消息（需設定 PINGIT_UID / PINGIT_NAME）
  watch <room_id>      即時追蹤房間消息
  delete <room_id>     刪除房間

Environment:
  PINGIT_URL     伺服器位址（預設 http://localhost:5000）
  PINGIT_WS_URL  廣播頻道位址（預設 ws://localhost:5000/ws）
  PINGIT_UID     發送者識別碼
  PINGIT_NAME    發送者顯示名稱`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
