package dto

import (
	"strings"

	"github.com/seunghochoi2018/soslab/internal/courier"
)

// WebhookPayload 채팅 웹훅 수신 본문.
// JANDI Outgoing Webhook(data/writerName)과 일반 형식(message/senderIdentity)을 모두 받는다.
type WebhookPayload struct {
	Message         string `json:"message"`
	Data            string `json:"data"`
	Text            string `json:"text"`
	SenderIdentity  string `json:"senderIdentity"`
	WriterName      string `json:"writerName"`
	WriterNameSnake string `json:"writer_name"`
	Sender          string `json:"sender"`
	Timestamp       string `json:"timestamp"`
	ThreadID        string `json:"threadId"`
	ThreadIDSnake   string `json:"thread_id"`
	MessageID       string `json:"message_id"`
	ReplyToThreadID string `json:"replyToThreadId"`
	ReplyTo         string `json:"reply_to"`
	Token           string `json:"token"`
}

// GetMessage 메시지 본문
func (p *WebhookPayload) GetMessage() string {
	return firstNonEmpty(p.Message, p.Data, p.Text)
}

// GetSender 보낸 사람 핸들 (Paul(윤희선) → Paul)
func (p *WebhookPayload) GetSender() string {
	return courier.ResolveIdentity(firstNonEmpty(p.SenderIdentity, p.WriterName, p.WriterNameSnake, p.Sender))
}

// GetThreadID 메시지/스레드 ID
func (p *WebhookPayload) GetThreadID() string {
	return firstNonEmpty(p.ThreadID, p.ThreadIDSnake, p.MessageID)
}

// GetReplyTo 댓글 대상 메시지 ID
func (p *WebhookPayload) GetReplyTo() string {
	return firstNonEmpty(p.ReplyToThreadID, p.ReplyTo)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// 웹훅 처리 결과 action
const (
	ActionRequestCreated      = "request_created"
	ActionTransporterAssigned = "transporter_assigned"
	ActionCompleted           = "completed"
	ActionDuplicate           = "duplicate"
)

// WebhookResult 웹훅 처리 결과
type WebhookResult struct {
	Action  string               `json:"action"`
	Record  *RecordResponse      `json:"record,omitempty"`
	Credits *courier.CreditEvent `json:"credits,omitempty"`
}
