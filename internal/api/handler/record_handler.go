package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
	"github.com/seunghochoi2018/soslab/pkg/redis"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

// RecordHandler 운송 기록 HTTP 처리기
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler RecordHandler 생성
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

// List 기록 목록 (검색/기간/상태/페이지)
// GET /api/v1/records
func (h *RecordHandler) List(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	list, total, err := h.recordSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 기록 상세
// GET /api/v1/records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// Create 기록 수동 등록
// POST /api/v1/records
func (h *RecordHandler) Create(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	record, err := h.recordSvc.Create(c.Request.Context(), &req, username)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.Created(c, record)
}

// Update 기록 수정
// PUT /api/v1/records/:id
func (h *RecordHandler) Update(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	record, err := h.recordSvc.Update(c.Request.Context(), id, &req, username)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// Delete 기록 삭제 (ID 는 재사용하지 않는다)
// DELETE /api/v1/records/:id
func (h *RecordHandler) Delete(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	if err := h.recordSvc.Delete(c.Request.Context(), id, username); err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, nil)
}

// Stats 조회 조건에 맞는 포인트 합계
// GET /api/v1/stats
func (h *RecordHandler) Stats(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	stats, err := h.recordSvc.Stats(c.Request.Context(), &req)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, stats)
}

func parseRecordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, response.CodeInvalidParam, "기록 ID 가 올바르지 않습니다")
		return 0, false
	}
	return id, true
}

func handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, response.CodeRecordNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, response.CodeInvalidStatus, err.Error())
	case errors.Is(err, service.ErrStatusRegression):
		response.BadRequest(c, response.CodeStatusRegression, err.Error())
	case errors.Is(err, service.ErrAmountImmutable):
		response.BadRequest(c, response.CodeAmountImmutable, err.Error())
	case errors.Is(err, service.ErrUnknownLocation):
		response.BadRequest(c, response.CodeUnknownLocation, err.Error())
	case errors.Is(err, service.ErrPendingTransporter):
		response.BadRequest(c, response.CodePendingTransporter, err.Error())
	case errors.Is(err, service.ErrAccumulateDate):
		response.BadRequest(c, response.CodeAccumulateDate, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, response.CodeInvalidDate, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeRecordConflict, err.Error())
	case errors.Is(err, redis.ErrLockTimeout):
		response.Conflict(c, response.CodeRecordLockTimeout, "")
	default:
		response.InternalError(c)
	}
}
