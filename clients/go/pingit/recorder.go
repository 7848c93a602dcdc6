package pingit

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// AudioInput 抽象音訊輸入裝置（麥克風），Open 取得一條獨占的擷取串流
type AudioInput interface {
	Open(ctx context.Context) (AudioStream, error)
}

// AudioStream 是一條進行中的音訊擷取串流
// Chunks 依序送出編碼後的音訊分塊，Close 之後通道會被關閉；
// Pause/Resume 之間不產生分塊，暫停邊界上不丟資料
type AudioStream interface {
	Chunks() <-chan []byte
	Pause() error
	Resume() error
	Close() error
}

// RecordingState 表示錄音管線的狀態
type RecordingState string

const (
	StateIdle      RecordingState = "idle"
	StateRecording RecordingState = "recording"
	StatePaused    RecordingState = "paused"
)

// audioMIMEPrefix 是定稿音訊的 data URI 前綴（裝置原生壓縮容器）
const audioMIMEPrefix = "data:audio/webm;base64,"

// Clip 是一段定稿的錄音
// DataURL 為空代表沒有擷取到任何音訊，呼叫端應視為「沒有東西可發」
type Clip struct {
	DataURL  string
	Duration int
}

// Recorder 管理一段語音消息的錄製：開始、暫停/恢復、丟棄、定稿
// 擷取裝置是獨占資源，一個 Recorder 同時間只開一條串流，
// 錄音中再呼叫 Start 是空操作
type Recorder struct {
	input AudioInput
	now   func() time.Time // 可注入時鐘，測試用

	mu          sync.Mutex
	state       RecordingState
	stream      AudioStream
	chunks      [][]byte
	startedAt   time.Time
	accumulated time.Duration
	pumpDone    chan struct{}
}

// NewRecorder 建立一個錄音管線
func NewRecorder(input AudioInput) *Recorder {
	return &Recorder{
		input: input,
		now:   time.Now,
		state: StateIdle,
	}
}

// State 回傳目前的錄音狀態
func (r *Recorder) State() RecordingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start 開始錄音；非 idle 狀態下是空操作
// 裝置開啟失敗時回到 idle，不留下任何半套狀態
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	stream, err := r.input.Open(ctx)
	if err != nil {
		return fmt.Errorf("open audio input: %w", err)
	}

	r.mu.Lock()
	if r.state != StateIdle {
		// 開啟裝置期間已有別的錄音搶先開始，收回這一條串流
		r.mu.Unlock()
		return stream.Close()
	}
	r.stream = stream
	r.chunks = nil
	r.state = StateRecording
	r.startedAt = r.now()
	r.accumulated = 0
	r.pumpDone = make(chan struct{})
	done := r.pumpDone
	r.mu.Unlock()

	go r.pump(stream, done)
	return nil
}

// pump 持續收取音訊分塊直到串流關閉
func (r *Recorder) pump(stream AudioStream, done chan struct{}) {
	defer close(done)
	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
	}
}

// Pause 暫停錄音，擷取與計時同時暫停
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return nil
	}
	if err := r.stream.Pause(); err != nil {
		return err
	}
	r.accumulated += r.now().Sub(r.startedAt)
	r.state = StatePaused
	return nil
}

// Resume 恢復錄音，擷取與計時同時恢復
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused {
		return nil
	}
	if err := r.stream.Resume(); err != nil {
		return err
	}
	r.startedAt = r.now()
	r.state = StateRecording
	return nil
}

// Elapsed 回傳已錄製的秒數，只在錄音進行中累計
func (r *Recorder) Elapsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.elapsedLocked().Seconds())
}

func (r *Recorder) elapsedLocked() time.Duration {
	total := r.accumulated
	if r.state == StateRecording {
		total += r.now().Sub(r.startedAt)
	}
	return total
}

// Discard 停止錄音並丟棄所有已緩衝的音訊，不產生任何消息
func (r *Recorder) Discard() error {
	return r.stop(false, nil)
}

// Finalize 停止錄音並把緩衝的分塊串成單一自含的 data URI
// 沒有擷取到任何音訊時回傳空的 Clip，呼叫端應視為沒有東西可發
func (r *Recorder) Finalize() (Clip, error) {
	var clip Clip
	err := r.stop(true, &clip)
	return clip, err
}

// Close 在任何狀態下強制停止錄音並釋放擷取裝置
// 元件收尾時必須呼叫，洩漏的裝置把柄會讓麥克風一直處於占用狀態
func (r *Recorder) Close() error {
	return r.stop(false, nil)
}

// stop 停止串流、等收取迴圈結束，依 keep 決定定稿或丟棄，最後回到 idle
func (r *Recorder) stop(keep bool, clip *Clip) error {
	r.mu.Lock()
	if r.state == StateIdle {
		r.mu.Unlock()
		return nil
	}
	stream := r.stream
	done := r.pumpDone
	duration := int(r.elapsedLocked().Seconds())
	r.mu.Unlock()

	closeErr := stream.Close()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()

	if keep && len(r.chunks) > 0 {
		var buf bytes.Buffer
		for _, chunk := range r.chunks {
			buf.Write(chunk)
		}
		clip.DataURL = audioMIMEPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
		clip.Duration = duration
	}

	r.stream = nil
	r.chunks = nil
	r.accumulated = 0
	r.state = StateIdle
	r.pumpDone = nil

	return closeErr
}
