package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
	"github.com/seunghochoi2018/soslab/pkg/redis"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

// WebhookHandler 채팅 웹훅 수신 처리기
type WebhookHandler struct {
	webhookSvc service.WebhookService
}

// NewWebhookHandler WebhookHandler 생성
func NewWebhookHandler(webhookSvc service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Receive 채팅 메시지 한 건 처리
// POST /api/v1/webhook/jandi
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload dto.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "JSON 본문이 올바르지 않습니다")
		return
	}

	result, err := h.webhookSvc.Handle(c.Request.Context(), &payload)
	if err != nil {
		handleWebhookError(c, err)
		return
	}

	response.OK(c, result)
}

func handleWebhookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWebhookToken):
		response.Unauthorized(c, response.CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrEmptySender),
		errors.Is(err, courier.ErrEmptyApplicant):
		response.BadRequest(c, response.CodeInvalidParam, err.Error())
	case errors.Is(err, courier.ErrMalformedRequest):
		response.BadRequest(c, response.CodeMalformedRequest, err.Error())
	case errors.Is(err, courier.ErrNoPendingRequest):
		response.NotFound(c, response.CodeNoPendingRequest, err.Error())
	case errors.Is(err, courier.ErrNoInProgressRequest):
		response.NotFound(c, response.CodeNoInProgressRequest, err.Error())
	case errors.Is(err, courier.ErrUnrecognizedMessage):
		response.BadRequest(c, response.CodeUnrecognizedMessage, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock),
		errors.Is(err, redis.ErrLockTimeout):
		response.Busy(c, response.CodeWebhookBusy)
	default:
		response.InternalError(c)
	}
}
