package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/redis"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

// ChatImportHandler 대화 내용 가져오기 처리기
type ChatImportHandler struct {
	chatImportSvc service.ChatImportService
}

// NewChatImportHandler ChatImportHandler 생성
func NewChatImportHandler(chatImportSvc service.ChatImportService) *ChatImportHandler {
	return &ChatImportHandler{chatImportSvc: chatImportSvc}
}

// Import 붙여넣은 대화를 순서대로 재생한다
// POST /api/v1/chat-import
func (h *ChatImportHandler) Import(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.ChatImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	result, err := h.chatImportSvc.Import(c.Request.Context(), &req, username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyChatText):
			response.BadRequest(c, response.CodeEmptyChatText, err.Error())
		case errors.Is(err, redis.ErrLockTimeout):
			response.Conflict(c, response.CodeChatImportBusy, "")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
