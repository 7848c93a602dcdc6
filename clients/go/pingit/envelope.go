// Package pingit 提供 PingIt 聊天伺服器的 Go 客戶端：
// REST 呼叫、樂觀發送與廣播回聲的對帳管線、語音消息的錄製與編碼
package pingit

import (
	"strconv"
	"strings"

	"pingit_web/internal/models"
)

// VoiceMessagePrefix 是語音消息封包的固定前綴，用來和純文字消息區分
const VoiceMessagePrefix = "__PINGIT_VOICE__"

// voiceSearchText 是語音消息在搜尋時對應的占位文字
const voiceSearchText = "voice message"

// VoicePayload 是從語音消息封包解出的內容
// DataURL 為空代表錄音已損毀或被丟棄，消息沒有可播放的音訊
type VoicePayload struct {
	Duration int
	DataURL  string
}

// EncodeVoiceMessage 把錄音時長與音訊資料編成單一字串封包：
// <前綴><秒數>|<自含的音訊 data URI>
func EncodeVoiceMessage(durationSeconds int, dataURL string) string {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return VoiceMessagePrefix + strconv.Itoa(durationSeconds) + "|" + dataURL
}

// ParseVoiceMessage 解析語音消息封包，非語音消息回傳 ok=false
// 封包內找不到分隔符時，整段內容視為音訊資料、時長歸零（防禦性解析）
func ParseVoiceMessage(body string) (VoicePayload, bool) {
	if !strings.HasPrefix(body, VoiceMessagePrefix) {
		return VoicePayload{}, false
	}

	payload := body[len(VoiceMessagePrefix):]
	sep := strings.Index(payload, "|")
	if sep == -1 {
		return VoicePayload{Duration: 0, DataURL: payload}, true
	}

	duration, err := strconv.Atoi(payload[:sep])
	if err != nil || duration < 0 {
		duration = 0
	}
	return VoicePayload{Duration: duration, DataURL: payload[sep+1:]}, true
}

// MessageSearchText 回傳消息參與搜尋比對的文字
// 語音消息以占位文字參與比對，不比對音訊內容本身
func MessageSearchText(message models.Message) string {
	if strings.HasPrefix(message.Body, VoiceMessagePrefix) {
		return voiceSearchText
	}
	return message.Body
}
