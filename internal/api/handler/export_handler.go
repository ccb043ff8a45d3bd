package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

// ExportHandler 내보내기 HTTP 처리기
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler ExportHandler 생성
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRecords 조회 조건에 맞는 기록을 엑셀로 내보낸다
// GET /api/v1/export/records?status=완료&date_from=2025-03-01
func (h *ExportHandler) ExportRecords(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	buf, filename, err := h.exportSvc.ExportRecords(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// DeadlineCalendar 미완료 기록의 마감일 iCalendar 구독
// GET /api/v1/export/deadlines.ics
func (h *ExportHandler) DeadlineCalendar(c *gin.Context) {
	body, err := h.exportSvc.DeadlineCalendar(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=deadlines.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, response.CodeExportEmpty, err.Error())
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, response.CodeExportInvalid, err.Error())
	default:
		response.InternalError(c)
	}
}
