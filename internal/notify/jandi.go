package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 알림 색상
const (
	ColorSuccess = "#27ae60"
	ColorError   = "#e74c3c"
	ColorHint    = "#f39c12"
	ColorInfo    = "#3498db"
)

// Message 채팅방으로 보낼 알림 한 건
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Color string `json:"colorHint"`
}

// Sender 알림 전송
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type connectInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type jandiPayload struct {
	Body         string        `json:"body"`
	ConnectColor string        `json:"connectColor"`
	ConnectInfo  []connectInfo `json:"connectInfo"`
}

// JandiSender JANDI Incoming Webhook 으로 전송
type JandiSender struct {
	url    string
	client *http.Client
}

// NewJandiSender JANDI 전송기 생성
func NewJandiSender(url string, timeout time.Duration) *JandiSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JandiSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *JandiSender) Send(ctx context.Context, msg Message) error {
	color := msg.Color
	if color == "" {
		color = ColorInfo
	}
	payload, err := json.Marshal(jandiPayload{
		Body:         msg.Body,
		ConnectColor: color,
		ConnectInfo:  []connectInfo{{Title: msg.Title, Description: msg.Body}},
	})
	if err != nil {
		return fmt.Errorf("encode jandi payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.tosslab.jandi-v2+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("jandi call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jandi status %d: %s", resp.StatusCode, data)
	}
	return nil
}

// NopSender 아무것도 보내지 않는다 (웹훅 URL 미설정 시)
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }
